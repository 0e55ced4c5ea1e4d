package authstate

import "context"

// Notifier receives user-facing messages about failed write operations.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, text string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, text string) {
	f(ctx, text)
}
