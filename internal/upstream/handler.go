// Package upstream relays a configured remote JSON document. Failures of the
// remote call surface as 502 responses through the error middleware.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"apierrmw/internal/platform/httpclient"
	"apierrmw/pkg/apierr"
	"apierrmw/pkg/ginmw"
)

// DefaultLimit caps the relayed body.
const DefaultLimit = 1 << 20

// Fetcher fetches a remote body.
type Fetcher interface {
	GetBody(ctx context.Context, rawURL string, limit int64) ([]byte, error)
}

var _ Fetcher = (*httpclient.Client)(nil)

// Handler serves GET /upstream.
type Handler struct {
	client Fetcher
	url    string
	limit  int64
	log    *slog.Logger
}

// NewHandler creates a Handler that relays url. A zero limit uses DefaultLimit.
func NewHandler(client Fetcher, url string, limit int64, log *slog.Logger) *Handler {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{client: client, url: url, limit: limit, log: log.With("component", "upstream")}
}

// Register mounts the route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/upstream", h.fetch)
}

func (h *Handler) fetch(c *gin.Context) {
	if h.url == "" {
		ginmw.Forward(c, apierr.New(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Upstream is not configured"))
		return
	}
	body, err := h.client.GetBody(c.Request.Context(), h.url, h.limit)
	if err == nil && !json.Valid(body) {
		err = errors.New("upstream returned invalid JSON")
	}
	if err != nil {
		h.log.Warn("upstream call failed", "error", err)
		ginmw.Forward(c, apierr.BadGatewayFromError(fmt.Errorf("upstream: %w", err)))
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}
