package authstate

import (
	"context"
	"log/slog"
	"time"

	"github.com/authfold/authfold/pkg/apiclient"
	"github.com/authfold/authfold/pkg/authapi"
	"github.com/authfold/authfold/pkg/query"
)

// SessionKey is the fixed cache key holding the one logical session slot.
const SessionKey = "auth:session"

// DefaultSessionTTL is how long a fetched session counts as fresh.
const DefaultSessionTTL = 5 * time.Minute

// Manager owns the cached session slot and the auth write operations built
// around it. Construct exactly one per user agent and pass it explicitly or
// through the context; it is never a package-level singleton.
type Manager struct {
	api      *authapi.Service
	session  *query.Query[authapi.SessionRecord]
	scope    *query.Scope
	notifier Notifier
	navigate func(ctx context.Context, url string)
	log      *slog.Logger

	signIn  *query.Mutation[authapi.SignInRequest, authapi.SessionRecord]
	signUp  *query.Mutation[authapi.SignUpRequest, authapi.SessionRecord]
	signOut *query.Mutation[struct{}, struct{}]
	forget  *query.Mutation[authapi.ForgetPasswordRequest, authapi.StatusResponse]
	reset   *query.Mutation[authapi.ResetPasswordRequest, authapi.StatusResponse]
	social  *query.Mutation[authapi.SocialSignInRequest, authapi.SocialRedirect]
}

// Option configures the Manager.
type Option func(*cfg)

type cfg struct {
	store      query.Store[authapi.SessionRecord]
	notifier   Notifier
	navigate   func(ctx context.Context, url string)
	log        *slog.Logger
	sessionTTL time.Duration
}

// WithStore sets the session store backend. Default: in-memory.
func WithStore(s query.Store[authapi.SessionRecord]) Option {
	return func(c *cfg) {
		if s != nil {
			c.store = s
		}
	}
}

// WithSessionTTL sets the session freshness window. Default: 5 minutes.
func WithSessionTTL(d time.Duration) Option {
	return func(c *cfg) {
		if d > 0 {
			c.sessionTTL = d
		}
	}
}

// WithNotifier sets the sink for user-facing failure messages.
// If unset, failures are only logged.
func WithNotifier(n Notifier) Option {
	return func(c *cfg) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithNavigator sets the command invoked with the provider URL after a
// successful social sign-in. It runs exactly once per successful call.
// If unset, callers navigate using the returned URL themselves.
func WithNavigator(fn func(ctx context.Context, url string)) Option {
	return func(c *cfg) {
		c.navigate = fn
	}
}

// WithLogger sets the manager logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *cfg) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a Manager on top of the auth façade.
//
// Example:
//
//	client, _ := apiclient.New(origin + "/api")
//	mgr := authstate.New(authapi.New(client),
//	    authstate.WithNotifier(flashNotifier),
//	)
func New(api *authapi.Service, opts ...Option) *Manager {
	c := &cfg{
		store:      query.NewMemory[authapi.SessionRecord](),
		sessionTTL: DefaultSessionTTL,
	}
	for _, opt := range opts {
		opt(c)
	}

	m := &Manager{
		api:      api,
		scope:    query.NewScope(),
		notifier: c.notifier,
		navigate: c.navigate,
		log:      c.log,
	}

	// The session read never retries: a failed fetch reads as anonymous,
	// and hammering the backend on every page view helps nobody.
	m.session = query.New(SessionKey, c.store, api.GetSession,
		query.WithTTL[authapi.SessionRecord](c.sessionTTL),
		query.WithoutRetry[authapi.SessionRecord](),
		query.WithLogger[authapi.SessionRecord](c.log),
	)
	m.scope.Register(m.session)

	m.signIn = query.NewMutation(api.SignInEmail).
		OnSuccess(func(ctx context.Context, _ authapi.SignInRequest, rec authapi.SessionRecord) {
			m.apply(ctx, rec)
		}).
		OnError(func(ctx context.Context, _ authapi.SignInRequest, err error) {
			m.notifyFailure(ctx, err)
		})

	m.signUp = query.NewMutation(api.SignUpEmail).
		OnSuccess(func(ctx context.Context, _ authapi.SignUpRequest, rec authapi.SessionRecord) {
			m.apply(ctx, rec)
		}).
		OnError(func(ctx context.Context, _ authapi.SignUpRequest, err error) {
			m.notifyFailure(ctx, err)
		})

	m.signOut = query.NewMutation(
		func(ctx context.Context, _ struct{}) (struct{}, error) {
			return struct{}{}, api.SignOut(ctx)
		}).
		OnSuccess(func(ctx context.Context, _ struct{}, _ struct{}) {
			if err := m.session.Clear(ctx); err != nil && m.log != nil {
				m.log.Warn("failed to clear session slot", slog.Any("error", err))
			}
			if err := m.scope.InvalidateAll(ctx); err != nil && m.log != nil {
				m.log.Warn("failed to invalidate auth scope", slog.Any("error", err))
			}
		}).
		OnError(func(ctx context.Context, _ struct{}, err error) {
			m.notifyFailure(ctx, err)
		})

	m.forget = query.NewMutation(api.ForgetPassword).
		OnError(func(ctx context.Context, _ authapi.ForgetPasswordRequest, err error) {
			m.notifyFailure(ctx, err)
		})

	m.reset = query.NewMutation(api.ResetPassword).
		OnError(func(ctx context.Context, _ authapi.ResetPasswordRequest, err error) {
			m.notifyFailure(ctx, err)
		})

	m.social = query.NewMutation(api.SignInSocial).
		OnSuccess(func(ctx context.Context, _ authapi.SocialSignInRequest, out authapi.SocialRedirect) {
			if m.navigate != nil && out.URL != "" {
				m.navigate(ctx, out.URL)
			}
		}).
		OnError(func(ctx context.Context, _ authapi.SocialSignInRequest, err error) {
			m.notifyFailure(ctx, err)
		})

	return m
}

// Scope returns the auth invalidation scope. Applications register
// additional auth-scoped queries here; sign-out marks them all stale.
func (m *Manager) Scope() *query.Scope {
	return m.scope
}

// Resolve returns the current derived state, fetching the session if the
// cached entry is missing or stale. Blocks until the read settles or ctx
// expires. A failed read resolves to anonymous; the error is carried in
// State.Err and produces no notification.
func (m *Manager) Resolve(ctx context.Context) State {
	rec, err := m.session.Get(ctx)
	if err != nil {
		return derive(authapi.SessionRecord{}, m.session.Settled(), err)
	}
	return derive(rec, true, nil)
}

// StateNow returns the derived state from the cache without fetching.
// IsLoading is true only while the initial read has not settled; background
// refreshes do not flip it back.
func (m *Manager) StateNow(ctx context.Context) State {
	rec, _ := m.session.Peek(ctx)
	return derive(rec, m.session.Settled(), m.session.Err())
}

// SignIn authenticates with email and password. On success the session slot
// is overwritten with the response; on failure the normalized message is
// surfaced to the notifier and the error returned as-is.
func (m *Manager) SignIn(ctx context.Context, req authapi.SignInRequest) (authapi.SessionRecord, error) {
	return m.signIn.Do(ctx, req)
}

// SignUp registers an account; success and failure effects match SignIn.
func (m *Manager) SignUp(ctx context.Context, req authapi.SignUpRequest) (authapi.SessionRecord, error) {
	return m.signUp.Do(ctx, req)
}

// SignOut terminates the session. On success the slot is cleared to empty
// and every auth-scoped entry is marked stale, so the next read refetches
// instead of serving the cached session.
func (m *Manager) SignOut(ctx context.Context) error {
	_, err := m.signOut.Do(ctx, struct{}{})
	return err
}

// ForgetPassword requests a password reset email.
func (m *Manager) ForgetPassword(ctx context.Context, req authapi.ForgetPasswordRequest) (authapi.StatusResponse, error) {
	return m.forget.Do(ctx, req)
}

// ResetPassword completes a password reset.
func (m *Manager) ResetPassword(ctx context.Context, req authapi.ResetPasswordRequest) (authapi.StatusResponse, error) {
	return m.reset.Do(ctx, req)
}

// SignInSocial starts an OAuth flow and returns the provider URL.
// If a navigator is configured it is invoked exactly once on success.
func (m *Manager) SignInSocial(ctx context.Context, req authapi.SocialSignInRequest) (authapi.SocialRedirect, error) {
	return m.social.Do(ctx, req)
}

// apply overwrites the session slot with a record returned by a write.
func (m *Manager) apply(ctx context.Context, rec authapi.SessionRecord) {
	if err := m.session.Set(ctx, rec); err != nil && m.log != nil {
		m.log.Warn("failed to apply session record", slog.Any("error", err))
	}
}

// notifyFailure pushes a failed write's normalized message to the notifier.
// Validation failures stay at the form boundary and are not announced here.
func (m *Manager) notifyFailure(ctx context.Context, err error) {
	if authapi.IsValidationError(err) {
		return
	}

	text := FallbackNotification
	if ae, ok := apiclient.AsError(err); ok && ae.Message != "" {
		text = ae.Message
	}

	if m.log != nil {
		m.log.Warn("auth operation failed", slog.String("notice", text), slog.Any("error", err))
	}
	if m.notifier != nil {
		m.notifier.Notify(ctx, text)
	}
}
