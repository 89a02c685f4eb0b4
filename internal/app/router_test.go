package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apierrmw/internal/config"
	"apierrmw/internal/item"
	"apierrmw/internal/platform/sqlite"
	"apierrmw/internal/stats"
	"apierrmw/migrations"
	"apierrmw/pkg/ginmw"
)

type stubFetcher struct {
	body []byte
	err  error
}

func (s stubFetcher) GetBody(context.Context, string, int64) ([]byte, error) {
	return s.body, s.err
}

type downRepo struct{ item.Repository }

func (downRepo) Ping(context.Context) error { return errors.New("database is closed") }

func testConfig() config.Config {
	var c config.Config
	c.Env = "dev"
	c.HTTP.MaxBodyBytes = 256
	c.HTTP.AuthToken = "token"
	c.Errors.MaskGateway = true
	c.Upstream.URL = "http://upstream.invalid/data"
	c.HTTP.CORSOrigins = []string{"https://app.example"}
	return c
}

func newTestRouter(t *testing.T, cfg config.Config, f stubFetcher) (*gin.Engine, *stats.Recorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := sqlite.NewTestDB(t, migrations.FS, migrations.SQLiteDir)
	rec := stats.NewRecorder()
	return NewRouter(Deps{
		Config:   cfg,
		Repo:     item.NewSQLiteRepository(db),
		Upstream: f,
		Stats:    rec,
	}), rec
}

func serve(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	var m map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	}
	return rec, m
}

func TestRouter_Healthz(t *testing.T) {
	r, _ := newTestRouter(t, testConfig(), stubFetcher{})
	rec, body := serve(t, r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_HealthzDown(t *testing.T) {
	cfg := testConfig()
	r := NewRouter(Deps{Config: cfg, Repo: downRepo{}})

	rec, body := serve(t, r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, float64(http.StatusServiceUnavailable), body["status"])
	assert.Equal(t, "SERVICE_UNAVAILABLE", body["code"])

	cfg.Errors.MaskGateway = false
	r = NewRouter(Deps{Config: cfg, Repo: downRepo{}})
	rec, _ = serve(t, r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_RouteMisses(t *testing.T) {
	r, rec := newTestRouter(t, testConfig(), stubFetcher{})

	resp, body := serve(t, r, http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", body["code"])

	resp, body = serve(t, r, http.MethodPatch, "/healthz", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
	assert.Equal(t, "METHOD_NOT_ALLOWED", body["code"])

	snap := rec.Snapshot()
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, 1, snap.ByCode["NOT_FOUND"])
	assert.Equal(t, 1, snap.ByCode["METHOD_NOT_ALLOWED"])
}

func TestRouter_BodyLimit(t *testing.T) {
	r, _ := newTestRouter(t, testConfig(), stubFetcher{})
	big := `{"name":"` + strings.Repeat("x", 512) + `","price":1}`

	resp, body := serve(t, r, http.MethodPost, "/items", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	assert.Equal(t, "REQUEST_TOO_LARGE", body["code"])
}

func TestRouter_Upstream(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		r, _ := newTestRouter(t, testConfig(), stubFetcher{body: []byte(`{"a":1}`)})
		resp, body := serve(t, r, http.MethodGet, "/upstream", "")
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, float64(1), body["a"])
	})

	t.Run("masked gateway", func(t *testing.T) {
		r, rec := newTestRouter(t, testConfig(), stubFetcher{err: errors.New("connection refused")})
		resp, body := serve(t, r, http.MethodGet, "/upstream", "")
		assert.Equal(t, http.StatusInternalServerError, resp.Code)
		assert.Equal(t, float64(http.StatusBadGateway), body["status"])
		assert.Equal(t, "upstream: connection refused", body["message"])
		assert.Equal(t, 1, rec.Snapshot().ByCode["BAD_GATEWAY"])
	})
}

func TestRouter_ItemsFlow(t *testing.T) {
	r, _ := newTestRouter(t, testConfig(), stubFetcher{})

	resp, _ := serve(t, r, http.MethodPost, "/items", `{"name":"lamp","price":12.5}`)
	require.Equal(t, http.StatusCreated, resp.Code)

	resp, body := serve(t, r, http.MethodGet, "/items/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "BAD_REQUEST", body["code"])

	resp, _ = serve(t, r, http.MethodGet, "/items/1", "")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestHandler_CORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := sqlite.NewTestDB(t, migrations.FS, migrations.SQLiteDir)
	h := NewHandler(Deps{Config: testConfig(), Repo: item.NewSQLiteRepository(db)})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/items", nil)
		req.Header.Set("Origin", "https://app.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("error response keeps cors headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
		req.Header.Set("Origin", "https://app.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.NotEmpty(t, rec.Header().Get(ginmw.RequestIDHeader))
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestNewRouter_LeavesGinModeAlone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.Env = "prod"

	NewRouter(Deps{Config: cfg, Repo: downRepo{}})
	assert.Equal(t, gin.TestMode, gin.Mode())
}
