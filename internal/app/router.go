package app

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"apierrmw/internal/config"
	"apierrmw/internal/item"
	"apierrmw/internal/stats"
	"apierrmw/internal/upstream"
	"apierrmw/pkg/apierr"
	"apierrmw/pkg/ginmw"
)

// Deps are the components the router serves.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Repo     item.Repository
	Upstream upstream.Fetcher
	Stats    *stats.Recorder
}

// NewRouter builds the gin engine. DebugLogger is registered after Errors so
// its post-phase runs first and sees the raw error.
func NewRouter(d Deps) *gin.Engine {
	ginmw.UseJSONFieldNames()

	log := d.Log
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	opts := []ginmw.Option{ginmw.WithPolicy(apierr.Policy{MaskGateway: d.Config.Errors.MaskGateway})}
	if d.Stats != nil {
		opts = append(opts, ginmw.WithInterceptor(d.Stats.Intercept))
	}
	r.Use(gin.Recovery(), ginmw.RequestID(), ginmw.Errors(opts...))
	if d.Config.Errors.Debug {
		r.Use(ginmw.DebugLogger(log.With("component", "http")))
	}
	if d.Config.HTTP.MaxBodyBytes > 0 {
		r.Use(ginmw.BodyLimit(d.Config.HTTP.MaxBodyBytes))
	}

	svc := item.NewService(d.Repo, log)
	r.GET("/healthz", healthz(svc))
	item.NewHandler(svc, d.Config.HTTP.AuthToken, log).Register(r)
	if d.Upstream != nil {
		upstream.NewHandler(d.Upstream, d.Config.Upstream.URL, 0, log).Register(r)
	}

	r.NoRoute(ginmw.NotFound())
	r.NoMethod(ginmw.MethodNotAllowed())
	return r
}

// NewHandler wraps the router with CORS handling for the configured origins.
func NewHandler(d Deps) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: d.Config.HTTP.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", ginmw.RequestIDHeader},
		ExposedHeaders: []string{ginmw.RequestIDHeader, "WWW-Authenticate"},
	})
	return c.Handler(NewRouter(d))
}

func healthz(svc *item.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Ping(c.Request.Context()); err != nil {
			ginmw.Forward(c, item.ToResponse(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
	}
}
