package authfold

import (
	"context"
	"log/slog"

	"github.com/authfold/authfold/middlewares"
	"github.com/authfold/authfold/pkg/logger"
)

// RequestIDExtractor returns a context extractor that attaches the
// request ID assigned by middlewares.RequestID to every log record.
//
//	log := logger.New("authfold",
//	    logger.WithExtractors(authfold.RequestIDExtractor()),
//	)
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := middlewares.RequestIDFromContext(ctx); id != "" {
			return slog.String("request_id", id), true
		}
		return slog.Attr{}, false
	}
}
