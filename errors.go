package orb

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/modelrelay/orb-go/headers"
	"github.com/modelrelay/orb-go/internal/apijson"
)

// ValidationError reports a params or response value that breaks its
// wire contract: a missing required field, a null where none is allowed,
// an unknown enum value, or a union no variant matched.
type ValidationError = apijson.ValidationError

// ValidationErrorKind classifies a ValidationError.
type ValidationErrorKind = apijson.ValidationErrorKind

const (
	ValidationMissing        = apijson.KindMissing
	ValidationNull           = apijson.KindNull
	ValidationUnknownEnum    = apijson.KindUnknownEnum
	ValidationUnmatchedUnion = apijson.KindUnmatchedUnion
	ValidationConstant       = apijson.KindConstant
	ValidationInvalid        = apijson.KindInvalid
)

// ConfigError indicates invalid or missing client configuration.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "orb: configuration error: " + e.Message
}

// APIError captures an Orb error response. Orb returns a problem document
// with type, status, title and detail, plus validation_errors on 400s.
type APIError struct {
	Status           int
	Type             string
	Title            string
	Detail           string
	ValidationErrors []string
	RequestID        string
	Method           string
	URL              string
	Body             string
	Retry            RetryMetadata
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Title
	if e.Detail != "" {
		if msg != "" {
			msg += ": "
		}
		msg += e.Detail
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if len(e.ValidationErrors) > 0 {
		msg += " (" + strings.Join(e.ValidationErrors, "; ") + ")"
	}
	if e.Method == "" {
		return fmt.Sprintf("orb: %d %s", e.Status, msg)
	}
	return fmt.Sprintf("orb: %s %s: %d %s", e.Method, e.URL, e.Status, msg)
}

// Orb problem types, matched against the suffix of APIError.Type.
const (
	problemValidation        = "request-validation-error"
	problemDuplicateResource = "duplicate-resource-creation"
	problemNotFound          = "resource-not-found"
	problemTooManyRequests   = "too-many-requests"
)

func (e *APIError) hasType(suffix string) bool {
	return e.Type != "" && strings.HasSuffix(e.Type, suffix)
}

// maxErrorBody caps how much of an error response APIError.Body keeps.
const maxErrorBody = 64 << 10

// limitedBuffer keeps the first limit bytes written and discards the rest,
// so the body is still drained.
type limitedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (lb *limitedBuffer) Write(p []byte) (int, error) {
	remaining := lb.limit - lb.buf.Len()
	if len(p) > remaining {
		lb.truncated = true
		if remaining > 0 {
			lb.buf.Write(p[:remaining])
		}
		return len(p), nil
	}
	lb.buf.Write(p)
	return len(p), nil
}

func decodeAPIError(resp *http.Response) *APIError {
	body := &limitedBuffer{limit: maxErrorBody}
	_, _ = io.Copy(body, resp.Body)
	data := body.buf.Bytes()
	apiErr := &APIError{
		Status:    resp.StatusCode,
		RequestID: resp.Header.Get(headers.RequestID),
		Body:      string(data),
	}
	if resp.Request != nil {
		apiErr.Method = resp.Request.Method
		apiErr.URL = resp.Request.URL.String()
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		apiErr.Detail = strings.TrimSpace(string(data))
		return apiErr
	}
	apiErr.Type = doc.Get("type").String()
	apiErr.Title = doc.Get("title").String()
	apiErr.Detail = doc.Get("detail").String()
	if status := doc.Get("status"); status.Type == gjson.Number && status.Int() != 0 {
		apiErr.Status = int(status.Int())
	}
	doc.Get("validation_errors").ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.String {
			apiErr.ValidationErrors = append(apiErr.ValidationErrors, v.Str)
		} else {
			apiErr.ValidationErrors = append(apiErr.ValidationErrors, v.Raw)
		}
		return true
	})
	return apiErr
}

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is an Orb 404.
func IsNotFound(err error) bool {
	apiErr, ok := asAPIError(err)
	return ok && (apiErr.Status == http.StatusNotFound || apiErr.hasType(problemNotFound))
}

// IsConflict reports whether err is an Orb 409, such as a duplicate
// external_customer_id or a resource locked by a concurrent request.
func IsConflict(err error) bool {
	apiErr, ok := asAPIError(err)
	return ok && (apiErr.Status == http.StatusConflict || apiErr.hasType(problemDuplicateResource))
}

// IsRateLimited reports whether err is an Orb 429.
func IsRateLimited(err error) bool {
	apiErr, ok := asAPIError(err)
	return ok && (apiErr.Status == http.StatusTooManyRequests || apiErr.hasType(problemTooManyRequests))
}

// IsValidationError reports whether err is a local ValidationError or an
// Orb request validation failure.
func IsValidationError(err error) bool {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return true
	}
	apiErr, ok := asAPIError(err)
	if !ok {
		return false
	}
	return apiErr.hasType(problemValidation) ||
		(apiErr.Status == http.StatusBadRequest && len(apiErr.ValidationErrors) > 0)
}
