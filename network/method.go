package network

import nethttp "net/http"

// Method is an HTTP method supported by the dispatcher.
type Method string

const (
	MethodGet    Method = nethttp.MethodGet
	MethodPost   Method = nethttp.MethodPost
	MethodPut    Method = nethttp.MethodPut
	MethodDelete Method = nethttp.MethodDelete
)

// Valid reports whether m is one of GET, POST, PUT or DELETE.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete:
		return true
	default:
		return false
	}
}

// CarriesBody reports whether the endpoint body is attached for m.
func (m Method) CarriesBody() bool {
	return m == MethodPost || m == MethodPut
}

func (m Method) String() string {
	return string(m)
}
