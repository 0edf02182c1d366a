package apijson

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationErrorKind classifies a local validation failure.
type ValidationErrorKind string

const (
	KindMissing        ValidationErrorKind = "missing"
	KindNull           ValidationErrorKind = "null"
	KindUnknownEnum    ValidationErrorKind = "unknown_enum"
	KindUnmatchedUnion ValidationErrorKind = "unmatched_union"
	KindConstant       ValidationErrorKind = "constant"
	KindInvalid        ValidationErrorKind = "invalid"
)

// ValidationError reports a model or params value that does not satisfy
// its wire contract. Path is the dotted wire path of the offending field.
type ValidationError struct {
	Kind   ValidationErrorKind
	Path   string
	Detail string
}

func (e *ValidationError) Error() string {
	msg := e.Detail
	if msg == "" {
		switch e.Kind {
		case KindMissing:
			msg = "required field missing"
		case KindNull:
			msg = "field must not be null"
		case KindUnknownEnum:
			msg = "unknown enum value"
		case KindUnmatchedUnion:
			msg = "no union variant matched"
		case KindConstant:
			msg = "unexpected constant value"
		default:
			msg = "invalid value"
		}
	}
	if e.Path == "" {
		return "orb: " + msg
	}
	return fmt.Sprintf("orb: %s: %s", e.Path, msg)
}

// ExpectConstant fails when a tag field does not hold the variant's constant.
func ExpectConstant[T comparable](path string, got, want T) error {
	if got == want {
		return nil
	}
	return &ValidationError{
		Kind:   KindConstant,
		Path:   path,
		Detail: fmt.Sprintf("expected %v, got %v", want, got),
	}
}

// Prefix re-roots a nested error under path.
func Prefix(err error, path string) error {
	if err == nil || path == "" {
		return err
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		cp := *verr
		cp.Path = joinPath(path, verr.Path)
		return &cp
	}
	return fmt.Errorf("%s: %w", path, err)
}

func joinPath(parent, child string) string {
	switch {
	case parent == "":
		return child
	case child == "":
		return parent
	case strings.HasPrefix(child, "["):
		return parent + child
	default:
		return parent + "." + child
	}
}
