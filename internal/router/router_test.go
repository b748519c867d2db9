package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/app"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/config"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(t *testing.T, mutate func(*config.Config)) (*gin.Engine, *app.App) {
	t.Helper()
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         time.Hour,
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Clinic: config.ClinicConfig{
			WorkdayStart:       "09:00",
			WorkdayEnd:         "17:00",
			DefaultSlotMinutes: 30,
			OnDelete:           domain.DeleteRetain,
			RecentActivity:     5,
		},
	}
	if mutate != nil {
		mutate(cfg)
	}

	db, err := database.Connect(cfg.Database, nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, zap.NewNop()))

	reg := prometheus.NewRegistry()
	a := app.New(cfg, db, metrics.NewCollectorWith("test", reg, reg), zap.NewNop())
	t.Cleanup(func() { _ = a.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return New(ctx, cfg, a), a
}

func TestHealthz(t *testing.T) {
	r, _ := newEngine(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealthz_UnavailableAfterClose(t *testing.T) {
	r, a := newEngine(t, nil)
	require.NoError(t, a.Store.Close())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newEngine(t, nil)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `test_http_requests_total{method="GET",path="/api/v1/patients",status="200"} 1`)
}

func TestMetricsEndpoint_Disabled(t *testing.T) {
	r, _ := newEngine(t, func(cfg *config.Config) { cfg.Metrics.Enabled = false })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newEngine(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/patients", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitAppliesToAPI(t *testing.T) {
	r, _ := newEngine(t, func(cfg *config.Config) {
		cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1}
	})

	codes := make([]int, 0, 2)
	for range 2 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/doctors", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
