package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"apierrmw/pkg/apierr"
)

// Interceptor observes every error handled by the Errors middleware before
// anything is written. resp is nil when the error is not actionable.
// Returning false stops further processing; the interceptor then owns the
// response.
type Interceptor func(resp *apierr.ErrorResponse, raw any, c *gin.Context) bool

// Fallback handles errors the normalizer does not act on.
type Fallback func(c *gin.Context, raw any)

type options struct {
	policy    apierr.Policy
	intercept Interceptor
	fallback  Fallback
}

// Option configures the Errors middleware.
type Option func(*options)

// WithPolicy sets the status policy.
func WithPolicy(p apierr.Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithInterceptor sets the interception hook.
func WithInterceptor(f Interceptor) Option {
	return func(o *options) { o.intercept = f }
}

// WithFallback replaces DefaultFallback.
func WithFallback(f Fallback) Option {
	return func(o *options) {
		if f != nil {
			o.fallback = f
		}
	}
}

// DefaultFallback writes a plain-text 500 unless a response was already sent.
func DefaultFallback(c *gin.Context, _ any) {
	if c.Writer.Written() {
		return
	}
	c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// Errors returns the error-normalizing middleware.
func Errors(opts ...Option) gin.HandlerFunc {
	o := options{
		policy:   apierr.DefaultPolicy(),
		fallback: DefaultFallback,
	}
	for _, opt := range opts {
		opt(&o)
	}
	n := apierr.NewNormalizer(o.policy)

	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}
		handle(c, n, &o, RawValue(last.Err))
	}
}

func handle(c *gin.Context, n *apierr.Normalizer, o *options, raw any) {
	var (
		resp *apierr.ErrorResponse
		ok   bool
	)
	if !c.Writer.Written() {
		resp, ok = n.Normalize(State(c), raw)
	}

	if o.intercept != nil && !o.intercept(resp, raw, c) {
		return
	}
	if !ok {
		o.fallback(c, raw)
		return
	}

	for k, v := range resp.AdditionalHeaders {
		c.Header(k, v)
	}
	resp.AdditionalHeaders = nil
	c.JSON(n.WireStatus(resp), resp)
}
