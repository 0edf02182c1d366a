package apijson

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Variant is one member of a union of type U. Tag is the discriminator
// value that selects it directly; untagged unions leave it empty.
type Variant[U any] struct {
	Tag    string
	Decode func(data []byte) (U, error)
}

// As builds a Variant decoder that unmarshals into T and converts to U.
func As[T, U any](conv func(T) U) func([]byte) (U, error) {
	return func(data []byte) (U, error) {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			var zero U
			return zero, err
		}
		return conv(v), nil
	}
}

// UnmarshalUnion resolves data to one member of a union.
//
// When tagKey is set, data must be an object; if its tag names a
// variant, that variant is decoded directly. Otherwise every variant is
// tried in order and the first one that both decodes and validates
// wins. If nothing matches, unknown (when non-nil) wraps the raw bytes;
// with a nil unknown the call fails with KindUnmatchedUnion.
func UnmarshalUnion[U any](data []byte, tagKey string, unknown func(raw []byte) U, variants ...Variant[U]) (U, error) {
	var zero U
	data = bytes.TrimSpace(data)
	tag := ""
	if tagKey != "" {
		parsed := gjson.ParseBytes(data)
		if !parsed.IsObject() {
			return zero, &ValidationError{
				Kind:   KindUnmatchedUnion,
				Detail: fmt.Sprintf("expected an object carrying %q", tagKey),
			}
		}
		if t := parsed.Get(gjson.Escape(tagKey)); t.Type == gjson.String {
			tag = t.Str
		}
	}
	if tag != "" {
		for _, variant := range variants {
			if variant.Tag != tag {
				continue
			}
			if v, err := variant.Decode(data); err == nil {
				return v, nil
			}
			break
		}
	}
	for _, variant := range variants {
		v, err := variant.Decode(data)
		if err != nil {
			continue
		}
		if err := ValidateAny(v); err != nil {
			continue
		}
		return v, nil
	}
	if unknown != nil {
		return unknown(append([]byte(nil), data...)), nil
	}
	detail := "no union variant matched"
	if tag != "" {
		detail = fmt.Sprintf("no union variant matched %s %q", tagKey, tag)
	}
	return zero, &ValidationError{Kind: KindUnmatchedUnion, Detail: detail}
}
