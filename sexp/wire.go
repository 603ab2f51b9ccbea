package sexp

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Binary form: an atom is a CBOR text string, a list is a CBOR array.

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("sexp: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes s to CBOR bytes.
func Marshal(s Sexp) ([]byte, error) {
	return cborEncMode.Marshal(toWire(s))
}

// Unmarshal deserializes a value written by Marshal.
func Unmarshal(data []byte) (Sexp, error) {
	var v any
	if err := cbor.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("sexp: unmarshal: %w", err)
	}
	return fromWire(v)
}

func toWire(s Sexp) any {
	switch v := s.(type) {
	case Atom:
		return string(v)
	case List:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = toWire(item)
		}
		return out
	}
	return []any{}
}

func fromWire(v any) (Sexp, error) {
	switch x := v.(type) {
	case string:
		return Atom(x), nil
	case []any:
		out := make(List, len(x))
		for i, item := range x {
			s, err := fromWire(item)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("sexp: unmarshal: unexpected CBOR item of type %T", v)
}
