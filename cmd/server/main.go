package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/welldanyogia/job-application-tracker/internal/api"
	"github.com/welldanyogia/job-application-tracker/internal/api/middleware"
	"github.com/welldanyogia/job-application-tracker/internal/config"
	"github.com/welldanyogia/job-application-tracker/internal/database"
	"github.com/welldanyogia/job-application-tracker/internal/logger"
	"github.com/welldanyogia/job-application-tracker/internal/mailer"
	"github.com/welldanyogia/job-application-tracker/internal/repository"
	"github.com/welldanyogia/job-application-tracker/internal/services"
	"github.com/welldanyogia/job-application-tracker/internal/storage"
	"github.com/welldanyogia/job-application-tracker/internal/websocket"
	"golang.org/x/time/rate"
)

const (
	shutdownTimeout     = 15 * time.Second
	rateLimitSweepEvery = time.Minute
	rateLimitMaxIdle    = 10 * time.Minute
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	cfg, err := config.LoadWithValidation()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)
	secLog := logger.FromLogger(log)

	slog.Info("Starting job application tracker...")
	cfg.LogConfig(log)

	db, err := database.Connect(cfg.DatabaseURL, database.Options{
		Production: cfg.IsProduction(),
		LogLevel:   cfg.LogLevel,
	})
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return err
	}

	store, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return err
	}
	slog.Info("resume storage ready", slog.String("path", store.BasePath()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	svcCfg := services.ApplicationServiceConfig{
		Repo:      repository.NewApplicationRepository(db),
		Storage:   store,
		Publisher: hub,
		Logger:    log,
	}
	if cfg.SMTPAddr != "" {
		svcCfg.Notifier = mailer.New(mailer.Config{
			Addr:   cfg.SMTPAddr,
			From:   cfg.SMTPFrom,
			Logger: log,
		})
	}

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitRequests), cfg.RateLimitBurst)
	limiter.StartCleanup(ctx, rateLimitSweepEvery, rateLimitMaxIdle)

	e := api.NewRouter(&api.RouterConfig{
		DB:             db,
		Service:        services.NewApplicationService(svcCfg),
		Hub:            hub,
		Logger:         log,
		SecLog:         secLog,
		UploadDir:      store.BasePath(),
		StaticDir:      cfg.StaticDir,
		AllowedOrigins: cfg.Origins(),
		Production:     cfg.IsProduction(),
		RateLimiter:    limiter,
		MaxUploadBytes: cfg.MaxResumeBytes(),
	})

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("Server stopped")
	return nil
}
