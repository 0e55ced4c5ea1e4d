package authfold

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/authfold/authfold/pkg/authstate"
	"github.com/authfold/authfold/pkg/devproxy"
)

// Option configures the application.
type Option func(*App)

// WithContext sets a custom base context for signal handling.
// Defaults to context.Background() if not set.
func WithContext(ctx context.Context) Option {
	return func(a *App) {
		if ctx != nil {
			a.baseCtx = ctx
		}
	}
}

// WithLogger sets the application logger.
// If nil, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithAddress sets the HTTP server address.
// Defaults to ":3000".
func WithAddress(addr string) Option {
	return func(a *App) {
		if addr != "" {
			a.server.Addr = addr
		}
	}
}

// WithReadTimeout sets the HTTP server read timeout.
// Defaults to 15 seconds.
func WithReadTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.server.ReadTimeout = d
		}
	}
}

// WithWriteTimeout sets the HTTP server write timeout.
// Defaults to 30 seconds.
func WithWriteTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.server.WriteTimeout = d
		}
	}
}

// WithIdleTimeout sets the HTTP server idle timeout.
// Defaults to 120 seconds.
func WithIdleTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.server.IdleTimeout = d
		}
	}
}

// WithMiddleware adds global middleware, applied in the order provided,
// before the manager injection and the proxy mount.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithAuthManager wires the auth manager into every request context so
// route guards and handlers can reach it via authstate.FromContext.
func WithAuthManager(m *authstate.Manager) Option {
	return func(a *App) {
		a.manager = m
	}
}

// WithProxy mounts the backend proxy at its configured prefix.
func WithProxy(p *devproxy.Proxy) Option {
	return func(a *App) {
		a.proxy = p
	}
}

// WithRoutes registers route declarations. Each function is called with
// the app router during setup, after global middleware is installed.
func WithRoutes(fns ...func(chi.Router)) Option {
	return func(a *App) {
		a.routes = append(a.routes, fns...)
	}
}

// WithShutdownTimeout sets how long graceful shutdown may take.
// Defaults to 30 seconds.
func WithShutdownTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.shutdownTimeout = d
		}
	}
}

// WithShutdownHook registers a function to run during shutdown, after
// the HTTP server stops. Hooks run in registration order.
func WithShutdownHook(hook func(ctx context.Context) error) Option {
	return func(a *App) {
		if hook != nil {
			a.shutdownHooks = append(a.shutdownHooks, hook)
		}
	}
}
