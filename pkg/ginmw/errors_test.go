package ginmw_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apierrmw/pkg/apierr"
	"apierrmw/pkg/ginmw"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func buildServer(h gin.HandlerFunc, opts ...ginmw.Option) *gin.Engine {
	r := gin.New()
	r.Use(ginmw.Errors(opts...))
	r.GET("/", h, func(c *gin.Context) {
		c.String(http.StatusOK, "next")
	})
	return r
}

func handlerFactory(v any) gin.HandlerFunc {
	return func(c *gin.Context) { ginmw.Forward(c, v) }
}

func do(t *testing.T, h http.Handler, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), "body: %s", rec.Body.String())
	return m
}

func TestErrors_NonObjectUsesFallback(t *testing.T) {
	for _, v := range []any{123, "string", []any{}, math.Inf(1), math.Inf(-1)} {
		t.Run(fmt.Sprintf("%T %v", v, v), func(t *testing.T) {
			rec := do(t, buildServer(handlerFactory(v)), http.MethodGet, "/", nil)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
			assert.Equal(t, "Internal Server Error", rec.Body.String())
		})
	}
}

func TestErrors_FalsyValuesContinue(t *testing.T) {
	for _, v := range []any{nil, false, "", 0, math.NaN(), (*apierr.ErrorResponse)(nil)} {
		t.Run(fmt.Sprintf("%T %v", v, v), func(t *testing.T) {
			rec := do(t, buildServer(handlerFactory(v)), http.MethodGet, "/", nil)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "next", rec.Body.String())
		})
	}
}

func TestErrors_NativeError(t *testing.T) {
	rec := do(t, buildServer(handlerFactory(errors.New("some error"))), http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"success":false,"status":500,"code":"UNKNOWN_ERROR","message":"some error"}`, rec.Body.String())
}

func TestErrors_PlainObject(t *testing.T) {
	rec := do(t, buildServer(handlerFactory(map[string]any{})), http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"status":500,"code":"UNKNOWN_ERROR","message":"Unknown error"}`, rec.Body.String())
}

func TestErrors_ErrorLikeObjects(t *testing.T) {
	tests := []struct {
		raw        map[string]any
		wantStatus int
		wantBody   string
	}{
		{map[string]any{"status": "400", "code": "CODE", "message": "MESSAGE"}, 400, `{"success":false,"status":400,"code":"CODE","message":"MESSAGE"}`},
		{map[string]any{"status": 400, "code": "CODE", "message": "MESSAGE"}, 400, `{"success":false,"status":400,"code":"CODE","message":"MESSAGE"}`},
		{map[string]any{"status": 500}, 500, `{"success":false,"status":500,"code":"UNKNOWN_ERROR","message":"Unknown error"}`},
		{map[string]any{"status": nil}, 500, `{"success":false,"status":500,"code":"UNKNOWN_ERROR","message":"Unknown error"}`},
		{map[string]any{"status": 300}, 500, `{"success":false,"status":500,"code":"UNKNOWN_ERROR","message":"Unknown error"}`},
		{map[string]any{"status": 600}, 500, `{"success":false,"status":500,"code":"UNKNOWN_ERROR","message":"Unknown error"}`},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.raw), func(t *testing.T) {
			rec := do(t, buildServer(handlerFactory(tt.raw)), http.MethodGet, "/", nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestErrors_Override(t *testing.T) {
	var leftover *apierr.ErrorResponse
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		leftover = ginmw.State(c).Override
	})
	r.Use(ginmw.Errors())
	r.GET("/", func(c *gin.Context) {
		ginmw.SetOverride(c, &apierr.ErrorResponse{
			Status:            401,
			Code:              "Unauthorized",
			Message:           "Unauthorized",
			AdditionalHeaders: map[string]string{"WWW-Authenticate": "Bearer"},
		})
		ginmw.Forward(c, errors.New("some error"))
	})

	rec := do(t, r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"success":false,"status":401,"code":"Unauthorized","message":"Unauthorized"}`, rec.Body.String())
	assert.Nil(t, leftover, "override must be consumed")
}

func TestErrors_ValidationStatusTable(t *testing.T) {
	tests := []struct {
		status  int
		code    string
		message string
	}{
		{400, "BAD_REQUEST", "Request validation failed"},
		{401, "UNAUTHORIZED", "You are not authorized to perform this request"},
		{403, "FORBIDDEN", "Access denied"},
		{404, "NOT_FOUND", "Not found"},
		{405, "METHOD_NOT_ALLOWED", "Method not allowed"},
		{413, "REQUEST_TOO_LARGE", "Request entity too large"},
		{415, "UNSUPPORTED_MEDIA_TYPE", "Unsupported media type"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			raw := &apierr.ValidationError{Status: tt.status, Errors: []apierr.Issue{{Path: "/"}}}
			rec := do(t, buildServer(handlerFactory(raw)), http.MethodGet, "/", nil)
			assert.Equal(t, tt.status, rec.Code)
			want := fmt.Sprintf(`{"success":false,"status":%d,"code":%q,"message":%q,"errors":[{"path":"/"}]}`,
				tt.status, tt.code, tt.message)
			assert.JSONEq(t, want, rec.Body.String())
		})
	}
}

func TestErrors_HeadersNotSerialized(t *testing.T) {
	raw := &apierr.ValidationError{
		Status:  401,
		Headers: map[string]string{"WWW-Authenticate": "Bearer", "X-Reason": "token"},
	}
	rec := do(t, buildServer(handlerFactory(raw)), http.MethodGet, "/", nil)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "token", rec.Header().Get("X-Reason"))

	body := decode(t, rec)
	assert.NotContains(t, body, "additionalHeaders")
	assert.NotContains(t, body, "AdditionalHeaders")
	assert.Len(t, body, 4)
}

func TestErrors_GatewayMask(t *testing.T) {
	raw := apierr.BadGatewayFromError(errors.New("upstream down"))

	t.Run("masked by default", func(t *testing.T) {
		rec := do(t, buildServer(handlerFactory(raw)), http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"success":false,"status":502,"code":"BAD_GATEWAY","message":"upstream down"}`, rec.Body.String())
	})

	t.Run("unmasked", func(t *testing.T) {
		rec := do(t, buildServer(handlerFactory(raw), ginmw.WithPolicy(apierr.Policy{})), http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, float64(502), decode(t, rec)["status"])
	})

	for _, status := range []int{503, 504} {
		t.Run(fmt.Sprint(status), func(t *testing.T) {
			rec := do(t, buildServer(handlerFactory(map[string]any{"status": status})), http.MethodGet, "/", nil)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, float64(status), decode(t, rec)["status"])
		})
	}
}

func TestErrors_AlreadyWritten(t *testing.T) {
	var calls int
	var seen *apierr.ErrorResponse
	r := buildServer(func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		ginmw.Forward(c, errors.New("late"))
	}, ginmw.WithInterceptor(func(resp *apierr.ErrorResponse, raw any, c *gin.Context) bool {
		calls++
		seen = resp
		return true
	}))

	rec := do(t, r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
	assert.Equal(t, 1, calls)
	assert.Nil(t, seen)
}

func TestErrors_Interceptor(t *testing.T) {
	t.Run("called once and proceeds", func(t *testing.T) {
		var calls int
		var gotRaw any
		boom := errors.New("boom")
		r := buildServer(handlerFactory(boom), ginmw.WithInterceptor(func(resp *apierr.ErrorResponse, raw any, c *gin.Context) bool {
			calls++
			gotRaw = raw
			require.NotNil(t, resp)
			assert.Equal(t, "boom", resp.Message)
			return true
		}))

		rec := do(t, r, http.MethodGet, "/", nil)
		assert.Equal(t, 1, calls)
		assert.Same(t, boom, gotRaw)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "boom", decode(t, rec)["message"])
	})

	t.Run("false hands over the response", func(t *testing.T) {
		r := buildServer(handlerFactory(errors.New("boom")), ginmw.WithInterceptor(func(resp *apierr.ErrorResponse, raw any, c *gin.Context) bool {
			c.String(http.StatusTeapot, "custom")
			return false
		}))

		rec := do(t, r, http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, "custom", rec.Body.String())
	})

	t.Run("not actionable gets nil", func(t *testing.T) {
		var calls int
		r := buildServer(handlerFactory(42), ginmw.WithInterceptor(func(resp *apierr.ErrorResponse, raw any, c *gin.Context) bool {
			calls++
			assert.Nil(t, resp)
			assert.Equal(t, 42, raw)
			c.String(http.StatusServiceUnavailable, "handled")
			return false
		}))

		rec := do(t, r, http.MethodGet, "/", nil)
		assert.Equal(t, 1, calls)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "handled", rec.Body.String())
	})
}

func TestErrors_CustomFallback(t *testing.T) {
	r := buildServer(handlerFactory("oops"), ginmw.WithFallback(func(c *gin.Context, raw any) {
		c.String(http.StatusBadGateway, fmt.Sprint(raw))
	}))

	rec := do(t, r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "oops", rec.Body.String())
}

func TestErrors_NoErrorPassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(ginmw.Errors())
	r.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"success": true}) })

	rec := do(t, r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestErrors_ForwardedResponseKeepsHeadersAndIssues(t *testing.T) {
	resp := apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized, "nope").
		WithHeader("WWW-Authenticate", "Bearer")
	resp.Errors = []apierr.Issue{{Path: "token"}}

	rec := do(t, buildServer(handlerFactory(resp)), http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"success":false,"status":401,"code":"UNAUTHORIZED","message":"nope","errors":[{"path":"token"}]}`,
		rec.Body.String())
	assert.Len(t, resp.AdditionalHeaders, 1)
}

func TestErrors_ValidationShapedObject(t *testing.T) {
	raw := map[string]any{"status": 404, "path": "/"}
	rec := do(t, buildServer(handlerFactory(raw)), http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"status":404,"code":"NOT_FOUND","message":"Not found"}`, rec.Body.String())
}
