package apijson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

type omittable interface {
	IsOmitted() bool
}

type nullish interface {
	IsNull() bool
}

// MarshalParams encodes a params struct whose fields are param.Field
// values. Omitted fields are dropped, null fields are written as null,
// and a required field that is omitted (or null without the nullable
// option) fails with a ValidationError before anything is sent.
func MarshalParams(v any) ([]byte, error) {
	return marshalParams(v, "", "")
}

// MarshalTaggedParams is MarshalParams for a union params variant: the
// discriminator key is written first with the variant's tag value.
func MarshalTaggedParams(v any, tagKey, tag string) ([]byte, error) {
	return marshalParams(v, tagKey, tag)
}

func marshalParams(v any, tagKey, tag string) ([]byte, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return []byte("null"), nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("apijson: cannot marshal %T as params", v)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	writeKey := func(name string) error {
		key, err := json.Marshal(name)
		if err != nil {
			return err
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(key)
		buf.WriteByte(':')
		return nil
	}

	if tagKey != "" {
		encoded, err := json.Marshal(tag)
		if err != nil {
			return nil, err
		}
		if err := writeKey(tagKey); err != nil {
			return nil, err
		}
		buf.Write(encoded)
	}

	for _, fi := range fieldsOf(rv.Type()) {
		if fi.name == tagKey {
			continue
		}
		fv := rv.FieldByIndex(fi.index)
		if isOmitted(fv) {
			if fi.required {
				return nil, &ValidationError{Kind: KindMissing, Path: fi.name}
			}
			continue
		}
		if fi.required && !fi.nullable && isNull(fv) {
			return nil, &ValidationError{Kind: KindNull, Path: fi.name}
		}
		encoded, err := json.Marshal(fv.Interface())
		if err != nil {
			return nil, Prefix(err, fi.name)
		}
		if err := writeKey(fi.name); err != nil {
			return nil, err
		}
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func isOmitted(fv reflect.Value) bool {
	if o, ok := fv.Interface().(omittable); ok {
		return o.IsOmitted()
	}
	switch fv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return fv.IsNil()
	}
	return false
}

func isNull(fv reflect.Value) bool {
	if n, ok := fv.Interface().(nullish); ok {
		return n.IsNull()
	}
	return false
}
