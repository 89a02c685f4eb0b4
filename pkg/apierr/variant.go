package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Variant is the classified shape of a raw error. It is one of
// *ErrorResponse, *ValidationError, *SyntaxError or GenericError; Classify
// returns nil for values that are not actionable.
type Variant interface {
	variant()
}

// ValidationError is a schema or contract validation failure.
type ValidationError struct {
	Status  int
	Message string
	Errors  []Issue
	Headers map[string]string
}

func (*ValidationError) variant() {}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("validation failed (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("validation failed (%d)", e.Status)
}

// SyntaxError is a request parsing failure tagged with a Type such as
// TypeParseFailed. A zero Status means the type table decides.
type SyntaxError struct {
	Status int
	Type   string
	Err    error
}

func (*SyntaxError) variant() {}

func (e *SyntaxError) Error() string {
	if e.Err != nil {
		return e.Type + ": " + e.Err.Error()
	}
	return e.Type
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// GenericError holds the fields read from an error-like object. Nil pointers
// mark absent fields. Native is the Error() text of error values.
type GenericError struct {
	Status  *int
	Code    *string
	Message *string
	Native  string
}

func (GenericError) variant() {}

// FromValidationErrors converts validator field errors into a 400 validation error.
func FromValidationErrors(errs validator.ValidationErrors) *ValidationError {
	ve := &ValidationError{Status: http.StatusBadRequest}
	for _, fe := range errs {
		ve.Errors = append(ve.Errors, Issue{
			Path:      fieldPath(fe),
			Message:   describeRule(fe),
			ErrorCode: fe.Tag(),
		})
	}
	return ve
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describeRule(fe validator.FieldError) string {
	if p := fe.Param(); p != "" {
		return fmt.Sprintf("failed on the '%s=%s' rule", fe.Tag(), p)
	}
	return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
}

// Classify returns the variant of raw, or nil when raw is not actionable.
//
// A forwarded *ErrorResponse is used as built. Error values are matched by
// type first; errors and plain objects alike are then inspected field by
// field: a numeric status together with a path or errors field is a
// validation error, a string type field is a parse failure, and anything
// else is read as a generic error.
func Classify(raw any) Variant {
	if !isObject(raw) {
		return nil
	}
	if err, ok := raw.(error); ok {
		if v := classifyError(err); v != nil {
			return v
		}
		fields := errorFields(err)
		if v := classifyFields(fields); v != nil {
			if se, ok := v.(*SyntaxError); ok {
				se.Err = err
			}
			return v
		}
		return genericFromError(err)
	}
	fields := fieldsOf(raw)
	if v := classifyFields(fields); v != nil {
		return v
	}
	return genericFromFields(fields)
}

// classifyFields recognizes the validation and parse failure shapes of an
// untyped object.
func classifyFields(fields map[string]any) Variant {
	status, hasStatus := toStatus(lookup(fields, "status"))
	if hasStatus && (lookup(fields, "path") != nil || lookup(fields, "errors") != nil) {
		ve := &ValidationError{
			Status:  status,
			Errors:  issuesOf(lookup(fields, "errors")),
			Headers: headersOf(lookup(fields, "headers")),
		}
		if m, ok := lookup(fields, "message").(string); ok {
			ve.Message = m
		}
		return ve
	}
	if t, ok := lookup(fields, "type").(string); ok {
		se := &SyntaxError{Type: t}
		if hasStatus {
			se.Status = status
		}
		return se
	}
	return nil
}

func issuesOf(v any) []Issue {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []Issue
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		var is Issue
		if p := lookup(m, "path"); p != nil {
			is.Path = fmt.Sprint(p)
		}
		if msg, ok := lookup(m, "message").(string); ok {
			is.Message = msg
		}
		if c, ok := lookup(m, "error_code").(string); ok {
			is.ErrorCode = c
		} else if c, ok := lookup(m, "errorCode").(string); ok {
			is.ErrorCode = c
		}
		out = append(out, is)
	}
	return out
}

func headersOf(v any) map[string]string {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		out[k] = fmt.Sprint(val)
	}
	return out
}

func isObject(raw any) bool {
	if raw == nil {
		return false
	}
	v := reflect.ValueOf(raw)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface:
		if v.IsNil() {
			return false
		}
	}
	if _, ok := raw.(error); ok {
		return true
	}
	switch v.Kind() {
	case reflect.Struct, reflect.Map:
		return true
	case reflect.Pointer:
		k := v.Elem().Kind()
		return k == reflect.Struct || k == reflect.Map
	default:
		return false
	}
}

func classifyError(err error) Variant {
	var resp *ErrorResponse
	if errors.As(err, &resp) && resp != nil {
		return resp
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return FromValidationErrors(fieldErrs)
	}
	var se *SyntaxError
	if errors.As(err, &se) {
		return se
	}
	var jsonSyntax *json.SyntaxError
	var jsonType *json.UnmarshalTypeError
	if errors.As(err, &jsonSyntax) || errors.As(err, &jsonType) {
		return &SyntaxError{Status: http.StatusBadRequest, Type: TypeParseFailed, Err: err}
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &SyntaxError{Status: http.StatusRequestEntityTooLarge, Type: TypeTooLarge, Err: err}
	}
	return nil
}

func genericFromError(err error) GenericError {
	g := genericFromFields(errorFields(err))
	g.Native = err.Error()

	var sc interface{ StatusCode() int }
	var hs interface{ HTTPStatus() int }
	var st interface{ Status() int }
	switch {
	case errors.As(err, &sc):
		g.Status = ptr(sc.StatusCode())
	case errors.As(err, &hs):
		g.Status = ptr(hs.HTTPStatus())
	case errors.As(err, &st):
		g.Status = ptr(st.Status())
	}

	var ec interface{ ErrorCode() string }
	var cc interface{ Code() string }
	switch {
	case errors.As(err, &ec):
		g.Code = ptr(ec.ErrorCode())
	case errors.As(err, &cc):
		g.Code = ptr(cc.Code())
	}

	var mc interface{ ErrorMessage() string }
	if errors.As(err, &mc) {
		g.Message = ptr(mc.ErrorMessage())
	}
	return g
}

func genericFromFields(fields map[string]any) GenericError {
	var g GenericError
	if v := lookup(fields, "status"); v != nil {
		if s, ok := toStatus(v); ok {
			g.Status = ptr(s)
		}
	}
	if v := lookup(fields, "code"); v != nil {
		g.Code = ptr(fmt.Sprint(v))
	}
	if v := lookup(fields, "message"); v != nil {
		g.Message = ptr(fmt.Sprint(v))
	}
	return g
}

// fieldsOf returns the object fields of raw as seen through its JSON form.
func fieldsOf(raw any) map[string]any {
	if m, ok := raw.(map[string]any); ok {
		return m
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}

// errorFields returns the fields of the first error in the chain that
// exposes any.
func errorFields(err error) map[string]any {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if f := fieldsOf(e); len(f) > 0 {
			return f
		}
	}
	return nil
}

func lookup(fields map[string]any, key string) any {
	if v, ok := fields[key]; ok {
		return v
	}
	for k, v := range fields {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}

// toStatus converts numbers and numeric strings to a status code.
func toStatus(v any) (int, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case float32:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		p, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

func ptr[T any](v T) *T { return &v }
