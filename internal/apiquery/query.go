// Package apiquery builds request URLs: query strings from tagged params
// structs and paths from route templates.
package apiquery

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/modelrelay/orb-go/internal/apijson"
)

type omittable interface {
	IsOmitted() bool
}

type nullish interface {
	IsNull() bool
}

type valuer interface {
	Interface() any
}

// Values encodes a params struct into query values. Fields are read
// from `query:"name"` tags and styled as form/explode parameters, so a
// slice becomes a repeated key. Omitted and null fields are skipped; a
// `query:"name,required"` field that is omitted fails with a
// ValidationError.
func Values(v any) (url.Values, error) {
	out := url.Values{}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return out, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("apiquery: cannot encode %T as query", v)
	}
	for _, sf := range reflect.VisibleFields(rv.Type()) {
		tag, ok := sf.Tag.Lookup("query")
		if !ok || tag == "-" || !sf.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		required := opts == "required"
		value, present := fieldValue(rv.FieldByIndex(sf.Index))
		if !present {
			if required {
				return nil, &apijson.ValidationError{Kind: apijson.KindMissing, Path: name}
			}
			continue
		}
		styled, err := runtime.StyleParamWithLocation("form", true, name, runtime.ParamLocationQuery, value)
		if err != nil {
			return nil, fmt.Errorf("apiquery: %s: %w", name, err)
		}
		parsed, err := url.ParseQuery(styled)
		if err != nil {
			return nil, fmt.Errorf("apiquery: %s: %w", name, err)
		}
		for key, vals := range parsed {
			for _, val := range vals {
				out.Add(key, val)
			}
		}
	}
	return out, nil
}

func fieldValue(fv reflect.Value) (any, bool) {
	iface := fv.Interface()
	if o, ok := iface.(omittable); ok && o.IsOmitted() {
		return nil, false
	}
	if n, ok := iface.(nullish); ok && n.IsNull() {
		return nil, false
	}
	if val, ok := iface.(valuer); ok {
		iface = val.Interface()
		fv = reflect.ValueOf(iface)
	}
	switch fv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if fv.IsNil() {
			return nil, false
		}
	case reflect.Invalid:
		return nil, false
	}
	if fv.Kind() == reflect.Slice && fv.Len() == 0 {
		return nil, false
	}
	return iface, true
}

// PathParam binds a value to a `{name}` placeholder of a route template.
type PathParam struct {
	Name  string
	Value string
}

// Param is shorthand for a PathParam.
func Param(name, value string) PathParam {
	return PathParam{Name: name, Value: value}
}

// Path fills the placeholders of template with escaped values. An empty
// value fails before any request is built, as does a placeholder left
// unbound.
func Path(template string, params ...PathParam) (string, error) {
	out := template
	for _, p := range params {
		if strings.TrimSpace(p.Value) == "" {
			return "", &apijson.ValidationError{
				Kind:   apijson.KindMissing,
				Path:   p.Name,
				Detail: "path parameter must not be empty",
			}
		}
		styled, err := runtime.StyleParamWithLocation("simple", false, p.Name, runtime.ParamLocationPath, p.Value)
		if err != nil {
			return "", fmt.Errorf("apiquery: %s: %w", p.Name, err)
		}
		placeholder := "{" + p.Name + "}"
		if !strings.Contains(out, placeholder) {
			return "", fmt.Errorf("apiquery: template %q has no placeholder %s", template, placeholder)
		}
		out = strings.ReplaceAll(out, placeholder, styled)
	}
	if strings.Contains(out, "{") {
		return "", fmt.Errorf("apiquery: unbound placeholder in %q", template)
	}
	return out, nil
}
