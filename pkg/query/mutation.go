package query

import "context"

// Mutation is a write operation with success and failure side effects.
// Mutations are never retried and never coalesced: every Do call runs the
// operation once and surfaces its error as-is.
//
// Hooks are attached at construction time, before the mutation is shared:
//
//	signIn := query.NewMutation(api.SignInEmail).
//	    OnSuccess(func(ctx context.Context, _ SignInRequest, rec Record) {
//	        _ = sessionQuery.Set(ctx, rec)
//	    })
type Mutation[In, Out any] struct {
	run       func(ctx context.Context, in In) (Out, error)
	onSuccess []func(ctx context.Context, in In, out Out)
	onError   []func(ctx context.Context, in In, err error)
}

// NewMutation creates a Mutation around run.
func NewMutation[In, Out any](run func(ctx context.Context, in In) (Out, error)) *Mutation[In, Out] {
	return &Mutation[In, Out]{run: run}
}

// OnSuccess registers a side effect invoked after a successful run, in
// registration order. Typical effects: overwriting a cache entry, recording
// a redirect target. Returns the mutation for chaining.
func (m *Mutation[In, Out]) OnSuccess(fn func(ctx context.Context, in In, out Out)) *Mutation[In, Out] {
	if fn != nil {
		m.onSuccess = append(m.onSuccess, fn)
	}
	return m
}

// OnError registers a side effect invoked after a failed run, in
// registration order. The original error is still returned to the caller.
// Returns the mutation for chaining.
func (m *Mutation[In, Out]) OnError(fn func(ctx context.Context, in In, err error)) *Mutation[In, Out] {
	if fn != nil {
		m.onError = append(m.onError, fn)
	}
	return m
}

// Do runs the operation once. Side effects fire after the outcome is known;
// they cannot change the returned value or error.
func (m *Mutation[In, Out]) Do(ctx context.Context, in In) (Out, error) {
	out, err := m.run(ctx, in)
	if err != nil {
		for _, fn := range m.onError {
			fn(ctx, in, err)
		}
		var zero Out
		return zero, err
	}

	for _, fn := range m.onSuccess {
		fn(ctx, in, out)
	}
	return out, nil
}
