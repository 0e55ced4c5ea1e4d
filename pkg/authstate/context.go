package authstate

import "context"

type managerKey struct{}

// WithManager returns a context carrying the manager. The root application
// installs it once per request so guards and handlers share the same
// session slot.
func WithManager(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, managerKey{}, m)
}

// FromContext extracts the manager from the context.
// Returns ErrNotConfigured when no manager was installed; consuming derived
// auth state outside the provider scope is a wiring bug, not an anonymous
// visitor.
func FromContext(ctx context.Context) (*Manager, error) {
	m, ok := ctx.Value(managerKey{}).(*Manager)
	if !ok || m == nil {
		return nil, ErrNotConfigured
	}
	return m, nil
}
