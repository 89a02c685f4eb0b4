package ginmw

import (
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"

	"github.com/gin-gonic/gin"

	"apierrmw/pkg/apierr"
)

// forwarded carries non-error values through gin's error list.
type forwarded struct {
	value any
}

func (f *forwarded) Error() string { return fmt.Sprint(f.value) }

// Forward hands v to the error middleware and aborts the chain.
//
// Falsy values (nil, false, "", zero numbers, NaN, nil pointers) are not
// errors: the chain simply continues. Values that are not errors are wrapped
// and unwrapped again by RawValue, so the normalizer sees them as they were.
func Forward(c *gin.Context, v any) {
	if isFalsy(v) {
		return
	}
	err, ok := v.(error)
	if !ok {
		err = &forwarded{value: v}
	}
	_ = c.Error(err)
	c.Abort()
}

// RawValue returns the value originally passed to Forward.
func RawValue(err error) any {
	if f, ok := err.(*forwarded); ok {
		return f.value
	}
	return err
}

// BindJSON decodes the body into dst with gin binding. Empty and truncated
// bodies are reported as parse failures instead of bare io errors.
func BindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &apierr.SyntaxError{Type: apierr.TypeParseFailed, Err: err}
	}
	return err
}

func isFalsy(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return !rv.Bool()
	case reflect.String:
		return rv.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f == 0 || math.IsNaN(f)
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
