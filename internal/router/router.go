package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/app"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/config"
	v1 "github.com/dmehra2102/prod-golang-projects/clinicsched/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/middleware"
)

const healthTimeout = 2 * time.Second

// New builds the HTTP engine. The rate limiter's sweeper stops when ctx is
// done.
func New(ctx context.Context, cfg *config.Config, a *app.App) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(a.Log),
		middleware.Tracing(),
		middleware.Logger(a.Log.Named("http")),
		middleware.Metrics(a.Metrics),
		middleware.CORS(cfg.CORS),
	)

	r.GET("/healthz", health(a))
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(a.Metrics.Handler()))
	}

	api := r.Group("/api/v1")
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter := middleware.NewRateLimiter(ctx, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize)
		api.Use(middleware.RateLimit(limiter, a.Metrics))
	}

	v1.NewPatientHandler(a.Patients, a.Appointments, a.Receipts).Register(api)
	v1.NewDoctorHandler(a.Doctors, a.Availability).Register(api)
	v1.NewAppointmentHandler(a.Appointments).Register(api)
	v1.NewDashboardHandler(a.Activity).Register(api)

	return r
}

func health(a *app.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := a.Store.Ping(ctx); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
