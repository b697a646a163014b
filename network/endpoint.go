package network

import "maps"

// Endpoint describes one logical request. Implementations must be immutable:
// the builder may be called for the same Endpoint from several goroutines.
type Endpoint interface {
	// Path is appended to the base URL as a literal suffix.
	Path() string
	Method() Method
	// Parameters become query items for GET and are ignored otherwise.
	Parameters() map[string]any
	// Headers override the default headers key by key.
	Headers() map[string]string
	// Body is sent verbatim for POST and PUT.
	Body() []byte
}

// DynamicEndpoint is an Endpoint assembled from raw call arguments.
type DynamicEndpoint struct {
	path       string
	method     Method
	parameters map[string]any
	headers    map[string]string
	body       []byte
}

var _ Endpoint = DynamicEndpoint{}

// EndpointOption customizes a DynamicEndpoint.
type EndpointOption func(*DynamicEndpoint)

// WithParameters sets the endpoint parameters. The map is copied.
func WithParameters(params map[string]any) EndpointOption {
	return func(e *DynamicEndpoint) {
		if params == nil {
			return
		}
		if e.parameters == nil {
			e.parameters = make(map[string]any, len(params))
		}
		maps.Copy(e.parameters, params)
	}
}

// WithParameter adds a single parameter.
func WithParameter(key string, value any) EndpointOption {
	return func(e *DynamicEndpoint) {
		if e.parameters == nil {
			e.parameters = make(map[string]any)
		}
		e.parameters[key] = value
	}
}

// WithHeaders sets endpoint-specific headers. The map is copied.
func WithHeaders(headers map[string]string) EndpointOption {
	return func(e *DynamicEndpoint) {
		if headers == nil {
			return
		}
		if e.headers == nil {
			e.headers = make(map[string]string, len(headers))
		}
		maps.Copy(e.headers, headers)
	}
}

// WithHeader adds a single endpoint header.
func WithHeader(key, value string) EndpointOption {
	return func(e *DynamicEndpoint) {
		if e.headers == nil {
			e.headers = make(map[string]string)
		}
		e.headers[key] = value
	}
}

// WithBody sets the raw payload. The slice is copied.
func WithBody(body []byte) EndpointOption {
	return func(e *DynamicEndpoint) {
		if body == nil {
			e.body = nil
			return
		}
		e.body = append([]byte(nil), body...)
	}
}

// NewDynamicEndpoint builds an Endpoint from a path, a method and options.
func NewDynamicEndpoint(path string, method Method, opts ...EndpointOption) DynamicEndpoint {
	e := DynamicEndpoint{path: path, method: method}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func (e DynamicEndpoint) Path() string {
	return e.path
}

func (e DynamicEndpoint) Method() Method {
	return e.method
}

// Parameters returns a copy of the parameters, or nil when there are none.
func (e DynamicEndpoint) Parameters() map[string]any {
	if e.parameters == nil {
		return nil
	}
	return maps.Clone(e.parameters)
}

// Headers returns a copy of the endpoint headers, or nil when there are none.
func (e DynamicEndpoint) Headers() map[string]string {
	if e.headers == nil {
		return nil
	}
	return maps.Clone(e.headers)
}

// Body returns a copy of the payload, or nil when there is none.
func (e DynamicEndpoint) Body() []byte {
	if e.body == nil {
		return nil
	}
	return append([]byte(nil), e.body...)
}
