package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"apierrmw/internal/config"
	"apierrmw/internal/platform/httpclient"
	"apierrmw/internal/platform/logger"
	"apierrmw/internal/platform/scheduler"
	"apierrmw/internal/stats"
)

const shutdownTimeout = 10 * time.Second

// App wires application components.
type App struct {
	cfg config.Config
	log *slog.Logger
}

// New creates a new App instance and loads configuration.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(logger.Options{
		Env:          cfg.Env,
		ConsoleLevel: cfg.Log.ConsoleLevel,
		FileLevel:    cfg.Log.FileLevel,
		File:         cfg.Log.File,
		App:          "apierrmw",
	})
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	return &App{cfg: cfg, log: log}, nil
}

// Run serves HTTP until SIGINT or SIGTERM.
func (a *App) Run() error {
	defer func() { _ = logger.Close(a.log) }()
	a.log.Info("starting", "env", a.cfg.Env, "db_driver", a.cfg.DB.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, a.cfg, a.log)
	if err != nil {
		return err
	}
	defer st.close()

	rec := stats.NewRecorder()
	sched := scheduler.New(a.log)
	if err := rec.Schedule(sched, a.cfg.Stats.Schedule, a.log.With("component", "stats")); err != nil {
		return err
	}
	sched.Start()

	client := httpclient.New(
		httpclient.WithLogger(a.log),
		httpclient.WithRetries(2, 200*time.Millisecond),
		httpclient.WithMaxBackoff(2*time.Second),
	)

	h := NewHandler(Deps{
		Config:   a.cfg,
		Log:      a.log,
		Repo:     st.repo,
		Upstream: client,
		Stats:    rec,
	})

	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		a.log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			_ = sched.Stop(context.Background())
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	if serr := sched.Stop(shutdownCtx); serr != nil {
		a.log.Warn("scheduler stop", "error", serr)
	}
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.log.Info("stopped")
	return nil
}
