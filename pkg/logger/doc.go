// Package logger builds slog loggers the rest of the module shares.
//
// New returns a JSON logger tagged with a component name:
//
//	log := logger.New("authfold")
//	log.Info("server started", slog.String("addr", addr))
//
// Context extractors attach request-scoped attributes to every record
// without threading them through call sites:
//
//	log := logger.New("authfold",
//	    logger.WithExtractors(func(ctx context.Context) (slog.Attr, bool) {
//	        if id := middlewares.RequestIDFromContext(ctx); id != "" {
//	            return slog.String("request_id", id), true
//	        }
//	        return slog.Attr{}, false
//	    }),
//	)
//
// WithSentry mirrors warnings and errors to Sentry when a DSN is set;
// with an empty DSN the option is inert, so the same construction works
// locally and in production.
package logger
