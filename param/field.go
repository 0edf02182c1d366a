// Package param holds the tri-state field type used by every request
// params struct.
//
// A Field is in exactly one of three states:
//
//   - omitted: the zero value; the key is left out of the request entirely
//   - null: built with [Null]; the key is sent with a JSON null
//   - set: built with [F]; the key is sent with the value
//
// Omitted and null are different on the wire. Update endpoints treat an
// omitted key as "leave unchanged" and a null key as "clear".
package param

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field wraps a request value with explicit presence and nullness.
type Field[T any] struct {
	Value   T
	Null    bool
	Present bool
}

// F returns a set field holding v.
func F[T any](v T) Field[T] {
	return Field[T]{Value: v, Present: true}
}

// Null returns a field that serializes as JSON null.
func Null[T any]() Field[T] {
	return Field[T]{Null: true, Present: true}
}

// IsOmitted reports whether the field should be left out of the request.
func (f Field[T]) IsOmitted() bool {
	return !f.Present
}

// IsNull reports whether the field was explicitly set to null.
func (f Field[T]) IsNull() bool {
	return f.Present && f.Null
}

// IsZero lets encoding/json drop omitted fields under the omitzero option.
func (f Field[T]) IsZero() bool {
	return !f.Present
}

// Get returns the value and whether it is set to a non-null value.
func (f Field[T]) Get() (T, bool) {
	return f.Value, f.Present && !f.Null
}

// Interface returns the held value as an any, regardless of state.
func (f Field[T]) Interface() any {
	return f.Value
}

func (f Field[T]) String() string {
	switch {
	case !f.Present:
		return "<omitted>"
	case f.Null:
		return "null"
	default:
		return fmt.Sprintf("%v", f.Value)
	}
}

// MarshalJSON writes the value, or null for null and omitted fields.
// Params structs drop omitted fields before this is reached.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Present || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// UnmarshalJSON marks the field present; a JSON null marks it null.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = Null[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = F(v)
	return nil
}
