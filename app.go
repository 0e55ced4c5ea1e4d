package authfold

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/authfold/authfold/pkg/authstate"
	"github.com/authfold/authfold/pkg/devproxy"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
)

// App orchestrates the frontend server lifecycle: routing, the auth
// manager wired into every request, the backend proxy mount, and
// graceful shutdown. App is immutable after creation; all configuration
// is done via New().
type App struct {
	baseCtx context.Context
	logger  *slog.Logger

	server      *http.Server
	router      chi.Router
	listener    net.Listener // set during Run()
	middlewares []func(http.Handler) http.Handler
	routes      []func(chi.Router)

	manager *authstate.Manager
	proxy   *devproxy.Proxy

	shutdownTimeout time.Duration
	shutdownHooks   []func(ctx context.Context) error
	done            chan struct{} // closed by Stop()
	stopOnce        sync.Once
}

// New creates an application with the given options.
//
// Example:
//
//	app := authfold.New(
//	    authfold.WithLogger(log),
//	    authfold.WithAddress(":3000"),
//	    authfold.WithAuthManager(mgr),
//	    authfold.WithProxy(proxy),
//	    authfold.WithRoutes(func(r chi.Router) {
//	        r.With(middlewares.RequireAuth()).Get("/dashboard", dashboard)
//	    }),
//	)
func New(opts ...Option) *App {
	router := chi.NewRouter()

	a := &App{
		router:          router,
		shutdownTimeout: 30 * time.Second,
		done:            make(chan struct{}),
		server: &http.Server{
			Addr:              ":3000",
			Handler:           router,
			ReadTimeout:       defaultReadTimeout,
			WriteTimeout:      defaultWriteTimeout,
			IdleTimeout:       defaultIdleTimeout,
			ReadHeaderTimeout: defaultReadHeaderTimeout,
			MaxHeaderBytes:    defaultMaxHeaderBytes,
		},
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Addr returns the server's listening address, or "" before Run().
func (a *App) Addr() string {
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Manager returns the auth manager, or nil when none is configured.
func (a *App) Manager() *authstate.Manager {
	return a.manager
}

// setupRoutes assembles the router: global middleware first, then the
// manager injection, the proxy mount, and finally the app routes.
func (a *App) setupRoutes() {
	for _, mw := range a.middlewares {
		a.router.Use(mw)
	}

	if a.manager != nil {
		mgr := a.manager
		a.router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(authstate.WithManager(r.Context(), mgr)))
			})
		})
	}

	if a.proxy != nil {
		a.router.Handle(a.proxy.Prefix()+"/*", a.proxy)
	}

	for _, fn := range a.routes {
		fn(a.router)
	}
}
