package logger

import (
	"log/slog"
	"os"
	"time"
)

// SecurityLogger records events worth auditing: throttled clients, rejected
// websocket origins and refused uploads.
type SecurityLogger struct {
	logger *slog.Logger
}

// NewSecurityLogger creates a new SecurityLogger with JSON output.
func NewSecurityLogger() *SecurityLogger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return &SecurityLogger{
		logger: slog.New(handler),
	}
}

// NewSecurityLoggerWithHandler creates a SecurityLogger with a custom handler.
func NewSecurityLoggerWithHandler(handler slog.Handler) *SecurityLogger {
	return &SecurityLogger{
		logger: slog.New(handler),
	}
}

// FromLogger creates a SecurityLogger that shares l's handler.
func FromLogger(l *slog.Logger) *SecurityLogger {
	if l == nil {
		return NewSecurityLogger()
	}
	return &SecurityLogger{logger: l.With(slog.String("component", "security"))}
}

// RateLimitExceeded logs when a client exceeds rate limits.
func (s *SecurityLogger) RateLimitExceeded(ip, path string) {
	s.logger.Warn("rate_limit_exceeded",
		slog.String("event_type", "rate_limit"),
		slog.String("ip", ip),
		slog.String("path", path),
		slog.Time("timestamp", time.Now().UTC()),
	)
}

// InvalidOrigin logs a rejected WebSocket connection due to invalid origin.
func (s *SecurityLogger) InvalidOrigin(ip, origin string) {
	s.logger.Warn("invalid_origin",
		slog.String("event_type", "invalid_origin"),
		slog.String("ip", ip),
		slog.String("origin", origin),
		slog.Time("timestamp", time.Now().UTC()),
	)
}

// RejectedUpload logs a resume upload that was refused before storage.
// Only the client-supplied file name is recorded, never the content.
func (s *SecurityLogger) RejectedUpload(ip, filename, reason string) {
	s.logger.Warn("rejected_upload",
		slog.String("event_type", "rejected_upload"),
		slog.String("ip", ip),
		slog.String("filename", filename),
		slog.String("reason", reason),
		slog.Time("timestamp", time.Now().UTC()),
	)
}

// GetLogger returns the underlying slog.Logger.
func (s *SecurityLogger) GetLogger() *slog.Logger {
	return s.logger
}
