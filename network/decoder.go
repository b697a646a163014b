package network

import (
	"bytes"
	"encoding/json"
)

// Decoder converts a raw 2xx body into target, which is always a non-nil pointer.
type Decoder interface {
	Decode(data []byte, target any) error
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(data []byte, target any) error

// Decode calls f.
func (f DecoderFunc) Decode(data []byte, target any) error {
	return f(data, target)
}

// JSONDecoder decodes JSON bodies.
type JSONDecoder struct {
	// DisallowUnknownFields rejects objects with fields the target does not declare.
	DisallowUnknownFields bool
}

// Decode unmarshals data into target.
func (d JSONDecoder) Decode(data []byte, target any) error {
	if !d.DisallowUnknownFields {
		return json.Unmarshal(data, target)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}
