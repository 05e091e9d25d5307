package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"estates_console/internal/domain"
)

// Shape tells which envelope a list response used.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeBareArray
	ShapeWrapped
)

func (s Shape) String() string {
	switch s {
	case ShapeBareArray:
		return "bare_array"
	case ShapeWrapped:
		return "wrapped"
	default:
		return "unknown"
	}
}

// WrappedField is the object key the list webhook nests listings under.
const WrappedField = "properties"

var ErrUnrecognizedShape = errors.New("webhook: unrecognized list response shape")

type Decoded struct {
	Shape    Shape
	Listings []domain.Listing
}

// DecodeListings accepts either a bare JSON array of listings or an
// object holding that array under WrappedField. Anything else is
// ErrUnrecognizedShape.
func DecodeListings(body []byte) (Decoded, error) {
	b := bytes.TrimSpace(body)
	if len(b) == 0 {
		return Decoded{}, fmt.Errorf("%w: empty body", ErrUnrecognizedShape)
	}

	switch b[0] {
	case '[':
		var ls []domain.Listing
		if err := json.Unmarshal(b, &ls); err != nil {
			return Decoded{}, fmt.Errorf("%w: bare array: %v", ErrUnrecognizedShape, err)
		}
		return Decoded{Shape: ShapeBareArray, Listings: nonNil(ls)}, nil

	case '{':
		var env map[string]json.RawMessage
		if err := json.Unmarshal(b, &env); err != nil {
			return Decoded{}, fmt.Errorf("%w: object: %v", ErrUnrecognizedShape, err)
		}
		raw, ok := env[WrappedField]
		raw = bytes.TrimSpace(raw)
		if !ok || len(raw) == 0 || raw[0] != '[' {
			return Decoded{}, fmt.Errorf("%w: object without %q array", ErrUnrecognizedShape, WrappedField)
		}
		var ls []domain.Listing
		if err := json.Unmarshal(raw, &ls); err != nil {
			return Decoded{}, fmt.Errorf("%w: %s: %v", ErrUnrecognizedShape, WrappedField, err)
		}
		return Decoded{Shape: ShapeWrapped, Listings: nonNil(ls)}, nil
	}

	return Decoded{}, fmt.Errorf("%w: leading %q", ErrUnrecognizedShape, b[0])
}

func nonNil(ls []domain.Listing) []domain.Listing {
	if ls == nil {
		return []domain.Listing{}
	}
	return ls
}
