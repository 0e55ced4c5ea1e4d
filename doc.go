// Package authfold scaffolds auth-gated web frontends that authenticate
// against a remote auth service.
//
// The module splits into a small set of composable packages:
//
//   - pkg/apiclient: HTTP transport that normalizes every failure into a
//     uniform error shape with a category, message, and status code.
//   - pkg/authapi: named auth operations (sign-in, sign-up, sign-out,
//     session read, password reset, social sign-in) over the transport,
//     with request validation in front of the wire.
//   - pkg/query: cache-backed reads with deduplication, TTLs, retry
//     policy, and scoped invalidation, plus mutations with success and
//     failure hooks.
//   - pkg/authstate: the session slot and the read-only state derived
//     from it.
//   - middlewares: route guards (RequireAuth, RequireGuest), request IDs,
//     and panic recovery.
//   - pkg/devproxy: same-origin proxying to the auth backend during
//     development.
//   - pkg/flash: one-shot notifications in a signed cookie.
//
// The root package ties these together into a runnable server:
//
//	client, err := apiclient.New(origin + cfg.ProxyPrefix)
//	mgr := authstate.New(authapi.New(client))
//
//	app := authfold.New(
//	    authfold.WithLogger(log),
//	    authfold.WithAddress(cfg.Addr),
//	    authfold.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    authfold.WithAuthManager(mgr),
//	    authfold.WithProxy(proxy),
//	    authfold.WithRoutes(routes),
//	)
//	if err := app.Run(); err != nil {
//	    log.Error("server failed", slog.Any("error", err))
//	}
//
// Run blocks until SIGINT, SIGTERM, or Stop(), then shuts down
// gracefully, draining in-flight requests and running shutdown hooks.
package authfold
