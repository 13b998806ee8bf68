package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/Netflix/go-env"
)

// UI server config - read from the environment (a .env file is loaded first by main when present)
type Config struct {
	Environment  string        `env:"ENVIRONMENT,default=dev"`
	Host         string        `env:"HOST,default=0.0.0.0"`
	Port         int           `env:"PORT,default=3000"`
	LogLevel     string        `env:"LOG_LEVEL,default=debug"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=60s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,default=60s"`

	// the Constella API (auth + cv extraction)
	APIBaseURL string        `env:"API_BASE_URL,default=http://localhost:8000"`
	APITimeout time.Duration `env:"API_TIMEOUT,default=30s"`

	// wizard state storage - in-memory when RedisURL is empty.
	// WizardSecret keys the encryption of state written to Redis; servers sharing a Redis need the same value
	RedisURL     string        `env:"REDIS_URL"`
	WizardTTL    time.Duration `env:"WIZARD_TTL,default=30m"`
	WizardSecret string        `env:"WIZARD_SECRET"`

	// rate limiting for form posts. RateLimitRPS <= 0 disables the limiter
	RateLimitRPS   int `env:"RATE_LIMIT_RPS,default=20"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST,default=40"`

	MaxUploadBytes int `env:"MAX_UPLOAD_BYTES,default=10485760"`
}

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"prod":    true,
	"staging": true,
}

const (
	TokenCookieName         = "token"
	UserCookieName          = "user"
	WizardSessionCookieName = "wizard_session"
)

// NewConfig reads the configuration from the process environment
func NewConfig() (*Config, error) {
	var cfg Config

	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := validateUIConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// FromEnvSet builds a config from an explicit set of variables (defaults apply to anything missing)
func FromEnvSet(es env.EnvSet) (*Config, error) {
	var cfg Config

	if err := env.Unmarshal(es, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := validateUIConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func validateUIConfig(cfg *Config) error {
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid environment '%s'. Valid environments: dev, test, staging, prod", cfg.Environment)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}

	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %v", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive, got %v", cfg.WriteTimeout)
	}
	if cfg.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive, got %v", cfg.IdleTimeout)
	}
	if cfg.APITimeout <= 0 {
		return fmt.Errorf("API timeout must be positive, got %v", cfg.APITimeout)
	}
	if cfg.WizardTTL <= 0 {
		return fmt.Errorf("wizard TTL must be positive, got %v", cfg.WizardTTL)
	}
	if cfg.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", cfg.MaxUploadBytes)
	}

	if cfg.WizardSecret != "" && len(cfg.WizardSecret) < 32 {
		return fmt.Errorf("WIZARD_SECRET must be at least 32 characters")
	}

	if cfg.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL cannot be empty")
	}
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", cfg.APIBaseURL)
	}

	return nil
}

// IsProd reports whether cookies should be marked Secure
func (c *Config) IsProd() bool {
	return c.Environment == "prod" || c.Environment == "staging"
}
