package devproxy

import (
	"errors"
	"net/url"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the development proxy settings. All fields are populated
// from environment variables; a local .env file is honored when present.
type Config struct {
	// Absolute origin of the auth backend, e.g. https://auth.example.com.
	// Requests hitting the proxy mount are forwarded here unchanged.
	BackendOrigin string `env:"AUTH_BACKEND_ORIGIN,required"`

	// Router mount point for the proxy.
	PathPrefix string `env:"AUTH_PROXY_PREFIX" envDefault:"/api"`

	// StripPrefix removes PathPrefix before forwarding, for backends
	// that serve auth routes at their root instead of under /api.
	StripPrefix bool `env:"AUTH_PROXY_STRIP_PREFIX"`
}

// Load reads the configuration from the environment. Missing or malformed
// origin configuration is a startup error, never a silent fallback.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Join(ErrMissingOrigin, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the backend origin is an absolute http(s) URL.
func (c Config) Validate() error {
	if c.BackendOrigin == "" {
		return ErrMissingOrigin
	}
	u, err := url.Parse(c.BackendOrigin)
	if err != nil {
		return errors.Join(ErrInvalidOrigin, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidOrigin
	}
	return nil
}
