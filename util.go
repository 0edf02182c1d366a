package orb

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/modelrelay/orb-go/param"
)

// F is shorthand for param.F.
func F[T any](v T) param.Field[T] { return param.F(v) }

// Null is shorthand for param.Null.
func Null[T any]() param.Field[T] { return param.Null[T]() }

// String is a convenience helper for string params.
func String(s string) param.Field[string] { return param.F(s) }

// Int is a convenience helper for integer params.
func Int(v int64) param.Field[int64] { return param.F(v) }

// Float is a convenience helper for amount params.
func Float(v float64) param.Field[float64] { return param.F(v) }

// Bool is a convenience helper for boolean params.
func Bool(b bool) param.Field[bool] { return param.F(b) }

// Time is a convenience helper for date-time params.
func Time(t time.Time) param.Field[time.Time] { return param.F(t) }

// Date is a convenience helper for calendar-date params.
func Date(year int, month time.Month, day int) param.Field[openapi_types.Date] {
	return param.F(openapi_types.Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)})
}

// Metadata is the free-form key/value map Orb attaches to most resources.
// Setting a key to "" on update removes it.
type Metadata map[string]string
