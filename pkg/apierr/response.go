package apierr

import (
	"fmt"
	"net/http"
)

// Common codes.
const (
	CodeBadRequest           = "BAD_REQUEST"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeNotFound             = "NOT_FOUND"
	CodeMethodNotAllowed     = "METHOD_NOT_ALLOWED"
	CodeRequestTooLarge      = "REQUEST_TOO_LARGE"
	CodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	CodeBadGateway           = "BAD_GATEWAY"
	CodeUnknown              = "UNKNOWN_ERROR"
)

// MessageUnknown is the message used when nothing better is known.
const MessageUnknown = "Unknown error"

// Issue is a single field-level validation problem.
type Issue struct {
	Path      string `json:"path"`
	Message   string `json:"message,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// ErrorResponse is the JSON error payload written to clients.
//
// AdditionalHeaders are copied onto the response by the transport adapter and
// never serialized.
type ErrorResponse struct {
	Success           bool              `json:"success"`
	Status            int               `json:"status"`
	Code              string            `json:"code"`
	Message           string            `json:"message"`
	Errors            []Issue           `json:"errors,omitempty"`
	AdditionalHeaders map[string]string `json:"-"`
}

// Error implements error so a response can travel through error channels.
func (e *ErrorResponse) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// StatusCode returns the HTTP status carried by the response.
func (e *ErrorResponse) StatusCode() int { return e.Status }

// ErrorCode returns the machine-readable code.
func (e *ErrorResponse) ErrorCode() string { return e.Code }

// ErrorMessage returns the human-readable message.
func (e *ErrorResponse) ErrorMessage() string { return e.Message }

// WithHeader adds a response header and returns the receiver for chaining.
func (e *ErrorResponse) WithHeader(key, value string) *ErrorResponse {
	if e.AdditionalHeaders == nil {
		e.AdditionalHeaders = make(map[string]string)
	}
	e.AdditionalHeaders[key] = value
	return e
}

// A forwarded response is already normalized and is written as built.
func (*ErrorResponse) variant() {}

func (e *ErrorResponse) clone() *ErrorResponse {
	c := *e
	if e.Errors != nil {
		c.Errors = append([]Issue(nil), e.Errors...)
	}
	if e.AdditionalHeaders != nil {
		c.AdditionalHeaders = make(map[string]string, len(e.AdditionalHeaders))
		for k, v := range e.AdditionalHeaders {
			c.AdditionalHeaders[k] = v
		}
	}
	return &c
}

// New creates a response with the given status, code and message.
func New(status int, code, message string) *ErrorResponse {
	return &ErrorResponse{Status: status, Code: code, Message: message}
}

// NotFound returns the payload used for unmatched routes.
func NotFound() *ErrorResponse {
	return New(http.StatusNotFound, CodeNotFound, "Not found")
}

// MethodNotAllowed returns the payload used when a path exists for other methods.
func MethodNotAllowed() *ErrorResponse {
	return New(http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method not allowed")
}

// BadGatewayFromError reports a failed upstream call.
func BadGatewayFromError(err error) *ErrorResponse {
	msg := MessageUnknown
	if err != nil {
		msg = err.Error()
	}
	return New(http.StatusBadGateway, CodeBadGateway, msg)
}
