package apijson

import (
	"fmt"
	"reflect"
)

// Validator is implemented by every response model.
type Validator interface {
	Validate() error
}

type knowable interface {
	IsKnown() bool
}

var validatorType = reflect.TypeOf((*Validator)(nil)).Elem()

// Validate checks a decoded model against its field tags and cascades
// into nested models. Presence checks need the Metadata that
// UnmarshalRoot fills; a hand-built model only gets the nested and enum
// checks. v itself is walked field by field, so a model's own Validate
// method can call Validate(r) without recursing.
func Validate(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	return validateStruct(rv, "")
}

func validateStruct(rv reflect.Value, path string) error {
	meta, decoded := metadataOf(rv)
	for _, fi := range fieldsOf(rv.Type()) {
		fpath := joinPath(path, fi.name)
		fv := rv.FieldByIndex(fi.index)
		if decoded {
			f := meta.Field(fi.name)
			switch {
			case f.IsMissing() && fi.required:
				return &ValidationError{Kind: KindMissing, Path: fpath}
			case f.IsNull() && !fi.nullable && fi.required:
				return &ValidationError{Kind: KindNull, Path: fpath}
			case !f.IsPresent():
				continue
			}
		} else if fv.IsZero() {
			continue
		}
		if err := validateValue(fv, fpath); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(v reflect.Value, path string) error {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return nil
		}
	}
	if v.Type().Implements(validatorType) {
		return Prefix(v.Interface().(Validator).Validate(), path)
	}
	if k, ok := v.Interface().(knowable); ok && !k.IsKnown() {
		return &ValidationError{
			Kind:   KindUnknownEnum,
			Path:   path,
			Detail: fmt.Sprintf("unknown value %v", reflect.Indirect(v).Interface()),
		}
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return validateValue(v.Elem(), path)
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := validateValue(v.Index(i), fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil
		}
		iter := v.MapRange()
		for iter.Next() {
			if err := validateValue(iter.Value(), joinPath(path, iter.Key().String())); err != nil {
				return err
			}
		}
	case reflect.Struct:
		if _, ok := v.Type().FieldByName("JSON"); ok {
			return validateStruct(v, path)
		}
	}
	return nil
}

// ValidateAny runs Validate on v when it implements Validator.
func ValidateAny(v any) error {
	if val, ok := v.(Validator); ok {
		return val.Validate()
	}
	return nil
}
