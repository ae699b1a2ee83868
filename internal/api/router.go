package api

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/job-application-tracker/internal/api/handlers"
	"github.com/welldanyogia/job-application-tracker/internal/api/middleware"
	"github.com/welldanyogia/job-application-tracker/internal/logger"
	"github.com/welldanyogia/job-application-tracker/internal/services"
	"github.com/welldanyogia/job-application-tracker/internal/websocket"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Defaults applied when RouterConfig leaves a limit unset
const (
	DefaultRateLimit      = 10
	DefaultRateBurst      = 20
	DefaultMaxUploadBytes = 10 << 20
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	DB        *gorm.DB
	Service   services.ApplicationService
	Hub       *websocket.Hub
	Logger    *slog.Logger
	SecLog    *logger.SecurityLogger
	UploadDir string
	StaticDir string

	AllowedOrigins []string
	Production     bool

	// RateLimiter is shared with the caller so it can run cleanup; when nil
	// one is built from RateLimit and RateBurst.
	RateLimiter    *middleware.IPRateLimiter
	RateLimit      float64
	RateBurst      int
	MaxUploadBytes int64
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	secLog := cfg.SecLog
	if secLog == nil {
		secLog = logger.FromLogger(log)
	}

	limiter := cfg.RateLimiter
	if limiter == nil {
		rps, burst := cfg.RateLimit, cfg.RateBurst
		if rps <= 0 {
			rps = DefaultRateLimit
		}
		if burst <= 0 {
			burst = DefaultRateBurst
		}
		limiter = middleware.NewIPRateLimiter(rate.Limit(rps), burst)
	}

	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}

	e.Use(middleware.Recover(log))
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.SecureHeaders())
	e.Use(middleware.SecureCORS(cfg.AllowedOrigins, cfg.Production))
	e.Use(middleware.RateLimiter(limiter, secLog))

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.UploadDir)
	applicationHandler := handlers.NewApplicationHandler(cfg.Service, log, secLog)
	pageHandler := handlers.NewPageHandler(cfg.StaticDir)

	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)

	if cfg.Hub != nil {
		upgrader := websocket.NewSecureUpgrader(cfg.AllowedOrigins, secLog)
		wsHandler := handlers.NewWebSocketHandler(cfg.Hub, upgrader, log)
		e.GET("/ws", wsHandler.Connect)
	}

	applications := e.Group("/api/applications")
	applications.GET("/candidate", pageHandler.Candidate)
	applications.GET("/hr", pageHandler.Recruiter)

	applications.POST("", applicationHandler.Create, middleware.UploadLimit(maxUpload, secLog))
	applications.GET("", applicationHandler.List)
	applications.GET("/statistics/total", applicationHandler.Total)
	applications.GET("/statistics/byStatus", applicationHandler.CountByStatus)
	applications.GET("/resume/:id", applicationHandler.DownloadResume)
	applications.GET("/:id", applicationHandler.Get)
	applications.PATCH("/:id/status", applicationHandler.UpdateStatus)
	applications.DELETE("/:id", applicationHandler.Delete)

	return e
}
