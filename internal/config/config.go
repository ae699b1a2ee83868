package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Server
	APIPort int

	// Storage
	UploadDir       string
	StaticDir       string
	MaxResumeSizeMB int

	// Logging
	LogLevel  string
	LogFormat string

	// Security
	AllowedOrigins string
	AppEnv         string

	// Rate Limiting
	RateLimitRequests float64
	RateLimitBurst    int

	// Mail notifications, disabled when SMTPAddr is empty
	SMTPAddr string
	SMTPFrom string
}

// LoadDotEnv reads key=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	// Required: DATABASE_URL
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	var err error
	if cfg.APIPort, err = intEnv("API_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.MaxResumeSizeMB, err = intEnv("MAX_RESUME_SIZE_MB", 10); err != nil {
		return nil, err
	}

	cfg.UploadDir = stringEnv("UPLOAD_DIR", "./uploads")
	cfg.StaticDir = stringEnv("STATIC_DIR", "./static")
	cfg.LogLevel = stringEnv("LOG_LEVEL", "info")
	cfg.LogFormat = stringEnv("LOG_FORMAT", "json")

	// Security configuration
	cfg.AllowedOrigins = os.Getenv("ALLOWED_ORIGINS")
	cfg.AppEnv = stringEnv("APP_ENV", "development")

	// Rate limiting configuration; unparsable values keep the default
	cfg.RateLimitRequests = 10.0
	if rps := os.Getenv("RATE_LIMIT_REQUESTS"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil {
			cfg.RateLimitRequests = v
		}
	}
	cfg.RateLimitBurst = 20
	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		if v, err := strconv.Atoi(burst); err == nil {
			cfg.RateLimitBurst = v
		}
	}

	cfg.SMTPAddr = os.Getenv("SMTP_ADDR")
	cfg.SMTPFrom = stringEnv("SMTP_FROM", "no-reply@localhost")

	return cfg, nil
}

// LoadWithValidation loads and validates configuration, failing fast on errors
func LoadWithValidation() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.IsProduction() {
		if err := cfg.ValidateProduction(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DatabaseURL cannot be empty")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("APIPort must be between 1 and 65535")
	}
	if c.UploadDir == "" {
		return fmt.Errorf("UploadDir cannot be empty")
	}
	if c.MaxResumeSizeMB <= 0 {
		return fmt.Errorf("MaxResumeSizeMB must be positive")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit requests and burst must be positive")
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	return nil
}

// ValidateProduction performs additional validation for production environment
func (c *Config) ValidateProduction() error {
	if c.AllowedOrigins == "" {
		return fmt.Errorf("ALLOWED_ORIGINS is required in production")
	}

	if strings.Contains(c.AllowedOrigins, "*") {
		return fmt.Errorf("wildcard (*) origins are not allowed in production")
	}

	if strings.Contains(c.DatabaseURL, "sslmode=disable") {
		return fmt.Errorf("sslmode=disable is not allowed in production")
	}

	if c.SMTPAddr != "" && !strings.Contains(c.SMTPFrom, "@") {
		return fmt.Errorf("SMTP_FROM must be an email address when SMTP_ADDR is set")
	}

	return nil
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Origins splits AllowedOrigins on commas, dropping blanks
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// MaxResumeBytes is the resume size cap in bytes
func (c *Config) MaxResumeBytes() int64 {
	return int64(c.MaxResumeSizeMB) << 20
}

// LogConfig logs configuration values (excluding secrets)
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.Int("api_port", c.APIPort),
		slog.String("upload_dir", c.UploadDir),
		slog.String("static_dir", c.StaticDir),
		slog.Int("max_resume_size_mb", c.MaxResumeSizeMB),
		slog.String("log_level", c.LogLevel),
		slog.String("log_format", c.LogFormat),
		slog.String("app_env", c.AppEnv),
		slog.Bool("allowed_origins_set", c.AllowedOrigins != ""),
		slog.Float64("rate_limit_rps", c.RateLimitRequests),
		slog.Int("rate_limit_burst", c.RateLimitBurst),
		slog.Bool("mail_enabled", c.SMTPAddr != ""),
	)
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}
