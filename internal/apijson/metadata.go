// Package apijson is the codec behind every Orb model: it records which
// wire fields a response actually carried, encodes tri-state params,
// validates decoded models, and resolves discriminated unions.
package apijson

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/tidwall/gjson"
)

// Status is the presence of a single wire field in a decoded object.
type Status uint8

const (
	StatusMissing Status = iota
	StatusNull
	StatusPresent
)

func (s Status) String() string {
	switch s {
	case StatusNull:
		return "null"
	case StatusPresent:
		return "present"
	default:
		return "missing"
	}
}

// Field describes one wire field of a decoded object.
type Field struct {
	status Status
	raw    string
}

func (f Field) Status() Status { return f.status }
func (f Field) IsMissing() bool { return f.status == StatusMissing }
func (f Field) IsNull() bool { return f.status == StatusNull }
func (f Field) IsPresent() bool { return f.status == StatusPresent }
func (f Field) Raw() string { return f.raw }
func (f Field) String() string { return f.status.String() }

// Metadata is attached to every response model as its JSON field. It is
// filled by UnmarshalRoot; a hand-built model carries empty Metadata.
type Metadata struct {
	raw    string
	fields map[string]Field
	extra  map[string]Field
}

// RawJSON returns the exact object text the model was decoded from.
func (m Metadata) RawJSON() string {
	return m.raw
}

// Field returns the presence of a known wire field by name.
func (m Metadata) Field(name string) Field {
	return m.fields[name]
}

// ExtraFields returns keys the server sent that the model does not declare.
func (m Metadata) ExtraFields() map[string]Field {
	return m.extra
}

// Decoded reports whether the metadata came from UnmarshalRoot.
func (m Metadata) Decoded() bool {
	return m.fields != nil
}

var metadataType = reflect.TypeOf(Metadata{})

// UnmarshalRoot decodes data into v with encoding/json and then fills the
// Metadata field named JSON, if v has one. v must be a pointer to a type
// without its own UnmarshalJSON (a local shadow type of the model).
func UnmarshalRoot(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("apijson: UnmarshalRoot needs a non-nil pointer, got %T", v)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return nil
	}
	meta := rv.FieldByName("JSON")
	if !meta.IsValid() || meta.Type() != metadataType || !meta.CanSet() {
		return nil
	}
	meta.Set(reflect.ValueOf(scan(data, rv.Type())))
	return nil
}

func scan(data []byte, t reflect.Type) Metadata {
	m := Metadata{raw: string(data), fields: map[string]Field{}}
	parsed := gjson.ParseBytes(data)
	if !parsed.IsObject() {
		return m
	}
	known := make(map[string]struct{})
	for _, fi := range fieldsOf(t) {
		known[fi.name] = struct{}{}
	}
	parsed.ForEach(func(key, value gjson.Result) bool {
		f := Field{status: StatusPresent, raw: value.Raw}
		if value.Type == gjson.Null {
			f.status = StatusNull
		}
		name := key.String()
		if _, ok := known[name]; ok {
			m.fields[name] = f
			return true
		}
		if m.extra == nil {
			m.extra = make(map[string]Field)
		}
		m.extra[name] = f
		return true
	})
	return m
}

func metadataOf(rv reflect.Value) (Metadata, bool) {
	meta := rv.FieldByName("JSON")
	if !meta.IsValid() || meta.Type() != metadataType {
		return Metadata{}, false
	}
	m, _ := meta.Interface().(Metadata)
	return m, m.Decoded()
}
