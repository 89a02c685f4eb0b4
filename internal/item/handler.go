package item

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"apierrmw/internal/shared"
	"apierrmw/pkg/apierr"
	"apierrmw/pkg/ginmw"
)

const (
	codeConflict           = "CONFLICT"
	codeServiceUnavailable = "SERVICE_UNAVAILABLE"
	codeGatewayTimeout     = "GATEWAY_TIMEOUT"
	codeRequestCanceled    = "REQUEST_CANCELED"
)

// Handler exposes the item service over HTTP.
type Handler struct {
	svc       *Service
	authToken string
	log       *slog.Logger
}

// NewHandler creates a Handler. An empty authToken leaves DELETE open.
func NewHandler(svc *Service, authToken string, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, authToken: authToken, log: log}
}

// Register mounts the item routes on r.
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/items")
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", ginmw.NumericParams("id"), h.get)
	g.DELETE("/:id", h.requireBearer, ginmw.NumericParams("id"), h.delete)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		ginmw.Forward(c, ToResponse(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}

func (h *Handler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	it, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		ginmw.Forward(c, ToResponse(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "item": it})
}

func (h *Handler) create(c *gin.Context) {
	var in CreateInput
	if err := ginmw.BindJSON(c, &in); err != nil {
		ginmw.Forward(c, err)
		return
	}
	it, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		ginmw.Forward(c, ToResponse(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "item": it})
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		ginmw.Forward(c, ToResponse(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// requireBearer rejects requests without the configured token. The 401
// payload is set as an override so the forwarded sentinel never reaches
// the client as-is.
func (h *Handler) requireBearer(c *gin.Context) {
	if h.authToken == "" {
		c.Next()
		return
	}
	const prefix = "Bearer "
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, prefix)
	if found && subtle.ConstantTimeCompare([]byte(token), []byte(h.authToken)) == 1 {
		c.Next()
		return
	}
	h.log.Warn("rejected unauthenticated request", "path", c.FullPath(), "has_header", header != "")
	ginmw.SetOverride(c, apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized,
		"You are not authorized to perform this request").WithHeader("WWW-Authenticate", "Bearer"))
	ginmw.Forward(c, shared.ErrUnauthorized)
}

// pathID reads the numeric id set by NumericParams. Non-integer or
// non-positive ids are forwarded as a validation failure.
func pathID(c *gin.Context) (int64, bool) {
	n, _ := ginmw.NumericParam(c, "id")
	if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) || n < 1 || n > math.MaxInt64 {
		ginmw.Forward(c, &apierr.ValidationError{
			Status: http.StatusBadRequest,
			Errors: []apierr.Issue{{
				Path:      "id",
				Message:   "must be a positive integer",
				ErrorCode: "positive_integer",
			}},
		})
		return 0, false
	}
	return int64(n), true
}

// ToResponse maps a domain error onto the payload sent to clients. Errors of
// unknown kind are returned unchanged and left to the normalizer.
func ToResponse(err error) any {
	switch {
	case shared.IsCanceled(err):
		return apierr.New(http.StatusBadRequest, codeRequestCanceled, "Request canceled")
	case shared.IsTimeout(err):
		return apierr.New(http.StatusGatewayTimeout, codeGatewayTimeout, "Upstream timed out")
	case shared.IsNotFound(err):
		return apierr.NotFound()
	case errors.Is(err, shared.SentinelOf(shared.KindValidation)):
		return &apierr.ValidationError{Status: http.StatusBadRequest, Message: err.Error()}
	case shared.IsUnauthorized(err):
		return apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized, "You are not authorized to perform this request")
	case shared.IsConflict(err):
		return apierr.New(http.StatusConflict, codeConflict, err.Error())
	case shared.KindOf(err) == shared.KindDependencyFailure:
		return apierr.New(http.StatusServiceUnavailable, codeServiceUnavailable, "Service temporarily unavailable")
	default:
		return err
	}
}
