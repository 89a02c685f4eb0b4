package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	stdhttp "net/http"
	"net/url"
	"os"
	"strconv"
	"syscall"
	"time"
)

// Client wraps http.Client with logging and retries of idempotent requests.
type Client struct {
	hc           *stdhttp.Client
	log          *slog.Logger
	retries      int
	baseBackoff  time.Duration
	maxBackoff   time.Duration
	headers      map[string]string
	retryMethods map[string]struct{}
	retryPolicy  func(*stdhttp.Response, error) (time.Duration, bool)
}

// Option configures Client.
type Option func(*Client)

// WithTimeout sets request timeout.
func WithTimeout(t time.Duration) Option {
	return func(c *Client) { c.hc.Timeout = t }
}

// WithLogger sets logger used by client.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRetries enables retries with exponential backoff and jitter.
func WithRetries(n int, backoff time.Duration) Option {
	return func(c *Client) {
		c.retries = n
		if backoff > 0 {
			c.baseBackoff = backoff
		}
	}
}

// WithMaxBackoff limits exponential backoff growth.
func WithMaxBackoff(d time.Duration) Option {
	return func(c *Client) { c.maxBackoff = d }
}

// WithHeaders adds default headers to each request.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) {
		if c.headers == nil {
			c.headers = make(map[string]string, len(h))
		}
		for k, v := range h {
			c.headers[k] = v
		}
	}
}

// WithTransport sets custom transport.
func WithTransport(rt stdhttp.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.hc.Transport = rt
		}
	}
}

// WithRetryPolicy sets custom retry policy.
func WithRetryPolicy(f func(*stdhttp.Response, error) (time.Duration, bool)) Option {
	return func(c *Client) {
		if f != nil {
			c.retryPolicy = f
		}
	}
}

// New creates configured Client.
func New(opts ...Option) *Client {
	tr := stdhttp.DefaultTransport.(*stdhttp.Transport).Clone()
	tr.MaxIdleConnsPerHost = 16
	tr.IdleConnTimeout = 90 * time.Second
	tr.TLSHandshakeTimeout = 10 * time.Second
	tr.ResponseHeaderTimeout = 10 * time.Second

	c := &Client{
		hc: &stdhttp.Client{
			Timeout:   15 * time.Second,
			Transport: tr,
		},
		log:         slog.Default(),
		baseBackoff: 200 * time.Millisecond,
		retryPolicy: retryInfo,
		retryMethods: map[string]struct{}{
			stdhttp.MethodGet:     {},
			stdhttp.MethodHead:    {},
			stdhttp.MethodOptions: {},
			stdhttp.MethodPut:     {},
			stdhttp.MethodDelete:  {},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// StatusError reports a final response outside the 2xx range.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// GetBody performs a GET request and returns at most limit bytes of a 2xx
// response body. Other statuses yield *StatusError.
func (c *Client) GetBody(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	req, err := stdhttp.NewRequestWithContext(ctx, stdhttp.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: req.Method, URL: req.URL.Redacted(), StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// retryAfter parses Retry-After header value.
func retryAfter(h string) time.Duration {
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil {
		return max(time.Duration(secs)*time.Second, 0)
	}
	if t, err := stdhttp.ParseTime(h); err == nil {
		return max(time.Until(t), 0)
	}
	return 0
}

// drainAndClose drains up to 512KB from body and closes it.
func drainAndClose(b io.ReadCloser) {
	if b == nil {
		return
	}
	_, _ = io.CopyN(io.Discard, b, 512<<10)
	_ = b.Close()
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var ue *url.Error
	if !errors.As(err, &ue) {
		return false
	}
	if ne, ok := ue.Err.(net.Error); ok && ne.Timeout() {
		return true
	}
	var se *os.SyscallError
	if errors.As(ue.Err, &se) {
		switch se.Err {
		case syscall.ECONNRESET, syscall.ECONNREFUSED, syscall.ECONNABORTED,
			syscall.ENETDOWN, syscall.ENETUNREACH, syscall.EPIPE,
			syscall.EHOSTUNREACH, syscall.ETIMEDOUT:
			return true
		}
	}
	var dnsErr *net.DNSError
	return errors.As(ue.Err, &dnsErr) && dnsErr.IsTemporary
}

// retryInfo determines if request should be retried and returns optional delay.
func retryInfo(resp *stdhttp.Response, err error) (time.Duration, bool) {
	if err != nil {
		return 0, isRetryableError(err)
	}
	switch {
	case resp.StatusCode == 408 || resp.StatusCode == 425:
		drainAndClose(resp.Body)
		return 0, true
	case resp.StatusCode == 429 || resp.StatusCode >= 500:
		delay := retryAfter(resp.Header.Get("Retry-After"))
		drainAndClose(resp.Body)
		return delay, true
	default:
		return 0, false
	}
}

// Do sends HTTP request with context, logging and retries. Requests with a
// body are sent once.
func (c *Client) Do(ctx context.Context, req *stdhttp.Request) (*stdhttp.Response, error) {
	retries := c.retries
	if _, ok := c.retryMethods[req.Method]; !ok || (req.Body != nil && req.GetBody == nil) {
		retries = 0
	}

	var lastErr error
	for attempt := 1; attempt <= retries+1; attempt++ {
		r := req.Clone(ctx)
		for k, v := range c.headers {
			if r.Header.Get(k) == "" {
				r.Header.Set(k, v)
			}
		}
		if attempt > 1 && r.GetBody != nil {
			rc, err := r.GetBody()
			if err != nil {
				return nil, err
			}
			r.Body = rc
		}

		u := r.URL.Redacted()
		st := time.Now()
		resp, err := c.hc.Do(r)
		dur := time.Since(st)

		delay, retry := c.retryPolicy(resp, err)
		if !retry || attempt > retries {
			if err != nil {
				c.log.Warn("http request error", slog.String("method", r.Method), slog.String("url", u), slog.Int("attempt", attempt), slog.Any("error", err))
				return nil, err
			}
			if retry {
				// policy consumed the body of the final response
				return nil, &StatusError{Method: r.Method, URL: u, StatusCode: resp.StatusCode}
			}
			c.log.Info("http request", slog.String("method", r.Method), slog.String("url", u), slog.Int("status", resp.StatusCode), slog.Duration("dur", dur), slog.Int("attempt", attempt))
			return resp, nil
		}

		wait := c.backoff(attempt, delay)
		if deadline, ok := ctx.Deadline(); ok {
			if rem := time.Until(deadline); rem <= wait {
				return nil, context.DeadlineExceeded
			}
		}

		if err != nil {
			lastErr = err
			c.log.Warn("http request error", slog.String("method", r.Method), slog.String("url", u), slog.Int("attempt", attempt), slog.Duration("wait", wait), slog.Any("error", err))
		} else {
			lastErr = &StatusError{Method: r.Method, URL: u, StatusCode: resp.StatusCode}
			c.log.Warn("http request status", slog.String("method", r.Method), slog.String("url", u), slog.Int("attempt", attempt), slog.Duration("wait", wait), slog.Int("status", resp.StatusCode))
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// backoff returns the wait before the next attempt: the server-provided delay
// if any, otherwise exponential backoff with jitter, capped by maxBackoff.
func (c *Client) backoff(attempt int, delay time.Duration) time.Duration {
	wait := delay
	if wait <= 0 {
		wait = c.baseBackoff * time.Duration(1<<uint(attempt-1))
		if wait > 0 {
			wait += time.Duration(rand.Int63n(int64(wait)))
		}
	}
	if c.maxBackoff > 0 && wait > c.maxBackoff {
		wait = c.maxBackoff
	}
	return wait
}
