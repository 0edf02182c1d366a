package apijson

import (
	"reflect"
	"strings"
	"sync"
)

type fieldInfo struct {
	index    []int
	name     string
	required bool
	nullable bool
}

var fieldCache sync.Map // map[reflect.Type][]fieldInfo

// fieldsOf lists the exported, JSON-visible fields of a struct type,
// including fields promoted from embedded structs.
func fieldsOf(t reflect.Type) []fieldInfo {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]fieldInfo)
	}
	var out []fieldInfo
	for _, sf := range reflect.VisibleFields(t) {
		if !sf.IsExported() {
			continue
		}
		tag, hasTag := sf.Tag.Lookup("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if sf.Anonymous && name == "" {
			// Promoted fields of the embedded struct are listed separately.
			continue
		}
		if !hasTag || name == "" {
			name = sf.Name
		}
		fi := fieldInfo{index: sf.Index, name: name}
		for opt := range strings.SplitSeq(opts, ",") {
			switch opt {
			case "required":
				fi.required = true
			case "nullable":
				fi.nullable = true
			}
		}
		out = append(out, fi)
	}
	fieldCache.Store(t, out)
	return out
}
