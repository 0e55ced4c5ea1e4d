// Package middlewares provides HTTP middleware for authfold applications.
//
// All middleware follows the standard func(http.Handler) http.Handler shape
// and composes with chi or plain net/http.
//
// # Route guards
//
// RequireAuth only admits authenticated visitors. Anonymous requests get a
// 303 redirect to the login path, carrying the original path in the
// redirectTo query parameter:
//
//	r.Route("/dashboard", func(r chi.Router) {
//	    r.Use(middlewares.RequireAuth())
//	    r.Get("/", dashboardHandler)
//	})
//
// RequireGuest is the mirror image for login and signup pages: authenticated
// visitors are sent to redirectTo (when it names a safe local path) or to
// the configured default:
//
//	r.Route("/auth", func(r chi.Router) {
//	    r.Use(middlewares.RequireGuest())
//	    r.Get("/login", loginHandler)
//	})
//
// Both guards read the auth manager from the request context by default;
// install it once near the top of the stack:
//
//	r.Use(func(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        next.ServeHTTP(w, r.WithContext(authstate.WithManager(r.Context(), mgr)))
//	    })
//	})
//
// While the very first session read is still in flight a guard renders a
// placeholder page instead of guessing a navigation decision.
//
// # Request ID
//
// RequestID assigns a unique ID to each request for tracing. It checks
// incoming headers for existing IDs or generates a UUID, and makes the
// value available through RequestIDFromContext.
//
// # Recover
//
// Recover catches handler panics, logs them with a stack trace, and
// answers 500 instead of tearing down the connection.
package middlewares
