package authfold

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrConfig wraps configuration load failures.
var ErrConfig = errors.New("authfold: invalid configuration")

// Config holds application settings. Values come from, in increasing
// precedence: built-in defaults, an optional YAML file, and environment
// variables. A local .env file is honored when present.
type Config struct {
	// Addr is the listen address of the frontend server.
	Addr string `yaml:"addr" env:"AUTHFOLD_ADDR"`

	// Environment names the deployment environment (development, production).
	Environment string `yaml:"environment" env:"AUTHFOLD_ENV"`

	// BackendOrigin is the absolute origin of the auth backend.
	BackendOrigin string `yaml:"backend_origin" env:"AUTH_BACKEND_ORIGIN"`

	// ProxyPrefix is where the backend proxy is mounted.
	ProxyPrefix string `yaml:"proxy_prefix" env:"AUTH_PROXY_PREFIX"`

	// FlashSecret signs the flash message cookie. 32+ bytes.
	FlashSecret string `yaml:"flash_secret" env:"FLASH_SECRET"`

	// RedisURL enables the Redis-backed session store when set.
	RedisURL string `yaml:"redis_url" env:"REDIS_URL"`

	// SentryDSN enables error reporting when set.
	SentryDSN string `yaml:"sentry_dsn" env:"SENTRY_DSN"`

	// SessionTTL is how long a fetched session counts as fresh.
	SessionTTL time.Duration `yaml:"session_ttl" env:"AUTH_SESSION_TTL"`
}

func defaultConfig() Config {
	return Config{
		Addr:        ":3000",
		Environment: "development",
		ProxyPrefix: "/api",
		SessionTTL:  5 * time.Minute,
	}
}

// LoadConfig builds the configuration. The YAML path is optional; pass
// "" to configure from the environment alone. Environment variables win
// over file values.
func LoadConfig(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrConfig, path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrConfig, path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrConfig, err)
	}
	return cfg, nil
}

// IsProduction reports whether the app runs in a production environment.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}
