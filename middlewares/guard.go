package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/authfold/authfold/pkg/authstate"
)

// DefaultLoginPath is where RequireAuth sends anonymous visitors.
const DefaultLoginPath = "/auth/login"

// DefaultGuestRedirect is where RequireGuest sends authenticated visitors.
const DefaultGuestRedirect = "/dashboard"

// DefaultWaitTimeout bounds how long a guard blocks on an unsettled
// session read before rendering the loading placeholder instead.
const DefaultWaitTimeout = 5 * time.Second

// RedirectToParam carries the originally requested path through the
// login redirect so the guest guard can send the user back after sign-in.
const RedirectToParam = "redirectTo"

// GuardConfig configures the route guards.
type GuardConfig struct {
	Manager        *authstate.Manager // Explicit manager; default: from request context
	Placeholder    http.Handler       // Rendered while the session read is unsettled
	Logger         *slog.Logger
	RedirectPath   string // Where the guard redirects; default depends on the guard
	WaitTimeout    time.Duration
	NoRedirect     bool // Respond with a status code instead of redirecting
	AllowAnonymous bool // RequireAuth only: resolve state but never block
}

// GuardOption configures GuardConfig.
type GuardOption func(*GuardConfig)

// WithGuardManager sets an explicit manager instead of reading one from
// the request context.
func WithGuardManager(m *authstate.Manager) GuardOption {
	return func(cfg *GuardConfig) {
		cfg.Manager = m
	}
}

// WithGuardRedirect sets the redirect target path.
func WithGuardRedirect(path string) GuardOption {
	return func(cfg *GuardConfig) {
		if path != "" {
			cfg.RedirectPath = path
		}
	}
}

// WithoutGuardRedirect makes the guard answer with a bare status code
// (401 for RequireAuth, 403 for RequireGuest) instead of redirecting.
// Useful on JSON routes where a redirect would confuse the client.
func WithoutGuardRedirect() GuardOption {
	return func(cfg *GuardConfig) {
		cfg.NoRedirect = true
	}
}

// WithGuardWaitTimeout bounds how long the guard blocks on an unsettled
// session read. Past the budget the placeholder is rendered and no
// navigation decision is made.
func WithGuardWaitTimeout(d time.Duration) GuardOption {
	return func(cfg *GuardConfig) {
		if d > 0 {
			cfg.WaitTimeout = d
		}
	}
}

// WithGuardPlaceholder sets the handler rendered while the session read
// has not settled. Default: a minimal loading page.
func WithGuardPlaceholder(h http.Handler) GuardOption {
	return func(cfg *GuardConfig) {
		if h != nil {
			cfg.Placeholder = h
		}
	}
}

// WithGuardAllowAnonymous makes RequireAuth resolve the session without
// ever blocking the request. Handlers still see the derived state; they
// decide what anonymous visitors get. RequireGuest ignores this option.
func WithGuardAllowAnonymous() GuardOption {
	return func(cfg *GuardConfig) {
		cfg.AllowAnonymous = true
	}
}

// WithGuardLogger sets the guard logger.
func WithGuardLogger(l *slog.Logger) GuardOption {
	return func(cfg *GuardConfig) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// RequireAuth returns middleware that only admits authenticated visitors.
//
// Anonymous requests are redirected to the login path with the original
// path preserved in the redirectTo query parameter. Requests already at
// the login path pass through so the redirect cannot loop. While the
// initial session read is unsettled the placeholder is rendered and no
// navigation decision is made.
func RequireAuth(opts ...GuardOption) func(http.Handler) http.Handler {
	cfg := newGuardConfig(DefaultLoginPath, opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state, ok := resolveState(w, r, cfg)
			if !ok {
				return
			}

			switch {
			case state.IsLoading:
				cfg.Placeholder.ServeHTTP(w, r)
			case state.IsAuthenticated, cfg.AllowAnonymous:
				next.ServeHTTP(w, r)
			case cfg.NoRedirect:
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			case r.URL.Path == cfg.RedirectPath:
				next.ServeHTTP(w, r)
			default:
				http.Redirect(w, r, loginTarget(cfg.RedirectPath, r), http.StatusSeeOther)
			}
		})
	}
}

// RequireGuest returns middleware that only admits anonymous visitors.
//
// Authenticated requests are redirected to the redirectTo query parameter
// when it names a safe local path, or to the configured redirect path
// otherwise. Requests already at the target pass through.
func RequireGuest(opts ...GuardOption) func(http.Handler) http.Handler {
	cfg := newGuardConfig(DefaultGuestRedirect, opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state, ok := resolveState(w, r, cfg)
			if !ok {
				return
			}

			if state.IsLoading {
				cfg.Placeholder.ServeHTTP(w, r)
				return
			}
			if !state.IsAuthenticated {
				next.ServeHTTP(w, r)
				return
			}
			if cfg.NoRedirect {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}

			target := cfg.RedirectPath
			if back := r.URL.Query().Get(RedirectToParam); safeLocalPath(back) {
				target = back
			}
			if r.URL.Path == target {
				next.ServeHTTP(w, r)
				return
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
		})
	}
}

func newGuardConfig(redirectPath string, opts []GuardOption) *GuardConfig {
	cfg := &GuardConfig{
		RedirectPath: redirectPath,
		WaitTimeout:  DefaultWaitTimeout,
		Placeholder:  http.HandlerFunc(loadingPlaceholder),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// resolveState locates the manager and resolves derived auth state within
// the wait budget. A missing manager is a wiring bug and answers 500.
func resolveState(w http.ResponseWriter, r *http.Request, cfg *GuardConfig) (authstate.State, bool) {
	mgr := cfg.Manager
	if mgr == nil {
		var err error
		mgr, err = authstate.FromContext(r.Context())
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.ErrorContext(r.Context(), "route guard has no auth manager", slog.Any("error", err))
			}
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return authstate.State{}, false
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), cfg.WaitTimeout)
	defer cancel()

	state := mgr.Resolve(ctx)
	if state.Err != nil && !state.IsLoading && cfg.Logger != nil && !errors.Is(state.Err, context.DeadlineExceeded) {
		cfg.Logger.WarnContext(r.Context(), "session read failed, treating as anonymous", slog.Any("error", state.Err))
	}
	return state, true
}

// loginTarget builds the login redirect, preserving where the visitor was
// headed. The root path and the login path itself are not worth restoring.
func loginTarget(loginPath string, r *http.Request) string {
	current := r.URL.RequestURI()
	if r.URL.Path == "/" || r.URL.Path == loginPath {
		return loginPath
	}
	return loginPath + "?" + RedirectToParam + "=" + url.QueryEscape(current)
}

// safeLocalPath reports whether p is a same-origin absolute path. Anything
// that could be interpreted as a scheme-relative or absolute URL is
// rejected to keep the guest redirect from becoming an open redirect.
func safeLocalPath(p string) bool {
	if p == "" || p[0] != '/' {
		return false
	}
	if len(p) > 1 && (p[1] == '/' || p[1] == '\\') {
		return false
	}
	return true
}

func loadingPlaceholder(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("<!doctype html><title>Loading</title><p>Loading&hellip;</p>"))
}
