package database

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/welldanyogia/job-application-tracker/internal/errors"
	"github.com/welldanyogia/job-application-tracker/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connection pool configuration
const (
	DefaultMaxIdleConns    = 10
	DefaultMaxOpenConns    = 100
	DefaultConnMaxLifetime = time.Hour
	DefaultConnMaxIdleTime = 10 * time.Minute
)

// Options tunes Connect. Zero values fall back to the defaults above.
type Options struct {
	Production      bool
	LogLevel        string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Dialector picks the GORM driver for databaseURL. postgres:// and
// postgresql:// URLs (and key=value DSNs) use PostgreSQL; sqlite:// and
// file: URLs use SQLite.
func Dialector(databaseURL string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(databaseURL, "sqlite://"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		if path == "" {
			return nil, fmt.Errorf("%w: sqlite URL has no path", apperrors.ErrConfiguration)
		}
		return sqlite.Open(path), nil
	case strings.HasPrefix(databaseURL, "file:"):
		return sqlite.Open(databaseURL), nil
	case strings.HasPrefix(databaseURL, "postgres://"),
		strings.HasPrefix(databaseURL, "postgresql://"),
		strings.Contains(databaseURL, "host="):
		return postgres.Open(databaseURL), nil
	}
	return nil, fmt.Errorf("%w: unsupported DATABASE_URL scheme", apperrors.ErrConfiguration)
}

// Connect establishes a connection to the configured database
func Connect(databaseURL string, opts Options) (*gorm.DB, error) {
	if opts.Production {
		if err := validateSSLMode(databaseURL); err != nil {
			return nil, err
		}
	}

	dialector, err := Dialector(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(GormLogLevel(opts.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := configureConnectionPool(db, opts); err != nil {
		return nil, err
	}

	slog.Info("Connected to database successfully", slog.String("dialect", dialector.Name()))
	return db, nil
}

// GormLogLevel maps the application log level onto GORM's logger. SQL
// statements are only traced at debug.
func GormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.Info
	case "info", "warn", "warning":
		return logger.Warn
	case "error":
		return logger.Error
	}
	return logger.Warn
}

// validateSSLMode ensures SSL is enabled in production
func validateSSLMode(databaseURL string) error {
	if strings.Contains(databaseURL, "sslmode=disable") {
		return fmt.Errorf("SSL mode cannot be disabled in production")
	}
	return nil
}

// configureConnectionPool sets up connection pool limits
func configureConnectionPool(db *gorm.DB, opts Options) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(orDefault(opts.MaxIdleConns, DefaultMaxIdleConns))
	sqlDB.SetMaxOpenConns(orDefault(opts.MaxOpenConns, DefaultMaxOpenConns))
	sqlDB.SetConnMaxLifetime(orDefault(opts.ConnMaxLifetime, DefaultConnMaxLifetime))
	sqlDB.SetConnMaxIdleTime(orDefault(opts.ConnMaxIdleTime, DefaultConnMaxIdleTime))

	return nil
}

func orDefault[T int | time.Duration](v, def T) T {
	if v > 0 {
		return v
	}
	return def
}

// Migrate runs auto-migration for all models
func Migrate(db *gorm.DB) error {
	slog.Info("Running database migrations...")

	if err := db.AutoMigrate(&models.Application{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("Database migrations completed successfully")
	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
