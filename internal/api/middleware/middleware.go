package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/welldanyogia/job-application-tracker/internal/logger"
)

// RequestLogger returns a middleware that logs HTTP requests. Handler
// errors are resolved first so the logged status is the one sent.
func RequestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			level := slog.LevelInfo
			switch {
			case res.Status >= http.StatusInternalServerError:
				level = slog.LevelError
			case res.Status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			log.LogAttrs(req.Context(), level, "request",
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", res.Status),
				slog.Int64("bytes_out", res.Size),
				slog.Duration("latency", time.Since(start)),
				slog.String("remote_ip", c.RealIP()),
			)

			return nil
		}
	}
}

// Recover returns a middleware that turns panics into 500 responses and
// logs them
func Recover(log *slog.Logger) echo.MiddlewareFunc {
	return middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			if log != nil {
				log.Error("panic recovered",
					slog.String("path", c.Request().URL.Path),
					slog.Any("error", err),
					slog.String("stack", string(stack)))
			}
			return err
		},
	})
}

// UploadLimit caps request bodies at maxBytes and answers 413 beyond that.
// Oversized uploads are reported to secLog.
func UploadLimit(maxBytes int64, secLog *logger.SecurityLogger) echo.MiddlewareFunc {
	limit := middleware.BodyLimit(fmt.Sprintf("%dB", maxBytes))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		limited := limit(next)
		return func(c echo.Context) error {
			err := limited(c)

			var he *echo.HTTPError
			if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge && secLog != nil {
				secLog.RejectedUpload(c.RealIP(), "", "body_too_large")
			}
			return err
		}
	}
}
