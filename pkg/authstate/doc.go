// Package authstate owns the one logical session slot and derives read-only
// authentication state from it.
//
// A [Manager] wires the auth façade's operations to a cached session query:
//
//   - SignIn / SignUp overwrite the slot with the response record.
//   - SignOut clears the slot to empty and marks every auth-scoped entry
//     stale, forcing a refetch on the next read.
//   - SignInSocial returns the provider redirect URL; an optional navigator
//     runs exactly once per successful call.
//   - Resolve fetches the session when the slot is missing or stale and
//     returns the derived [State].
//
// State is a pure function of the cached entry and its fetch status:
// IsAuthenticated is true iff a user is present, and IsLoading is true only
// until the initial read settles. A failed session read derives the same
// anonymous state as "no session"; the underlying error is available in
// State.Err but produces no user-facing notification.
//
// Failed write operations do notify: the normalized message (or
// [FallbackNotification]) is pushed to the configured [Notifier].
//
// The manager is constructed explicitly, never as a package singleton, and
// travels on the request context via [WithManager]. [FromContext] returns
// [ErrNotConfigured] when the provider was never installed.
package authstate
