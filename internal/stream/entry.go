package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rzbill/xstream/pkg/id"
)

// Fields is the caller-supplied field bag of an entry. Values are either
// string or json.Number so that numbers keep their exact textual form.
type Fields map[string]any

// ErrInvalidFields is returned by Validate and DecodeFields.
var ErrInvalidFields = errors.New("invalid fields")

// Validate checks that f is non-empty and flat: every value must be a string
// or a number.
func (f Fields) Validate() error {
	if len(f) == 0 {
		return fmt.Errorf("%w: at least one field is required", ErrInvalidFields)
	}
	for k, v := range f {
		switch v.(type) {
		case string, json.Number:
		case float64, float32, int, int64, int32, uint, uint64, uint32:
		default:
			return fmt.Errorf("%w: field %q must be a string or a number, got %T", ErrInvalidFields, k, v)
		}
	}
	return nil
}

// Clone returns a shallow copy; values are immutable scalars.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// DecodeFields parses a JSON object into Fields, keeping numbers as
// json.Number. The body must hold exactly one JSON object.
func DecodeFields(b []byte) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFields, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrInvalidFields)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON object", ErrInvalidFields)
	}
	f := Fields(raw)
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Entry is one immutable record of a stream.
type Entry struct {
	ID     id.ID  `json:"id"`
	Fields Fields `json:"fields"`
}
