package logger

import (
	"io"
	"log/slog"
	"os"
)

// Option configures the logger.
type Option func(*options)

type options struct {
	w          io.Writer
	level      slog.Leveler
	extractors []ContextExtractor
	sentry     *SentryConfig
}

// WithWriter sets the log destination. Default: stdout.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.w = w
		}
	}
}

// WithLevel sets the minimum level. Default: Info.
func WithLevel(level slog.Leveler) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithExtractors adds context extractors applied to every record.
func WithExtractors(extractors ...ContextExtractor) Option {
	return func(o *options) {
		o.extractors = append(o.extractors, extractors...)
	}
}

// WithSentry mirrors warnings and errors to Sentry. An empty DSN is a
// no-op so local development needs no special casing.
func WithSentry(cfg SentryConfig) Option {
	return func(o *options) {
		o.sentry = &cfg
	}
}

// New creates a JSON logger for the named component. Records carry the
// component attribute plus any context-extracted attributes, and are
// mirrored to Sentry when configured.
func New(component string, opts ...Option) *slog.Logger {
	o := &options{
		w:     os.Stdout,
		level: slog.LevelInfo,
	}
	for _, opt := range opts {
		opt(o)
	}

	var handler slog.Handler = slog.NewJSONHandler(o.w, &slog.HandlerOptions{
		Level: o.level,
	})
	if o.sentry != nil {
		if sh, ok := newSentryHandler(*o.sentry, handler); ok {
			handler = newMultiHandler(handler, sh)
		}
	}
	handler = newContextHandler(handler, o.extractors...)

	log := slog.New(handler)
	if component != "" {
		log = log.With(slog.String("component", component))
	}
	return log
}

// Discard returns a logger that drops everything. Used as the default
// where logging is optional.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
