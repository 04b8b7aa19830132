package pgml

import (
	"encoding/json"
	"fmt"
)

// Parameters is the JSON object handed to the embed function as its third
// argument. The mapping is encoded once at construction; a Parameters value
// never shares state with the map it was built from or with its callers.
type Parameters struct {
	encoded string
}

// NewParameters encodes values as a JSON object. A nil or empty map yields
// the empty object.
func NewParameters(values map[string]any) (Parameters, error) {
	if len(values) == 0 {
		return Parameters{}, nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return Parameters{}, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	return Parameters{encoded: string(b)}, nil
}

// MustParameters is like NewParameters but panics on error.
func MustParameters(values map[string]any) Parameters {
	p, err := NewParameters(values)
	if err != nil {
		panic(err)
	}
	return p
}

// JSON returns the encoded object. Keys are sorted.
func (p Parameters) JSON() string {
	if p.encoded == "" {
		return "{}"
	}
	return p.encoded
}

// Map decodes a fresh copy of the parameters. Numbers decode as float64.
func (p Parameters) Map() map[string]any {
	out := map[string]any{}
	if p.encoded == "" {
		return out
	}
	// encoded was produced by json.Marshal of a map, so it always decodes.
	_ = json.Unmarshal([]byte(p.encoded), &out)
	return out
}

// IsEmpty reports whether no parameters were set.
func (p Parameters) IsEmpty() bool {
	return p.encoded == ""
}

// String returns the JSON encoding.
func (p Parameters) String() string {
	return p.JSON()
}
