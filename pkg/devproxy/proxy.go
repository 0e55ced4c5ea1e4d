package devproxy

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
)

// Proxy forwards browser requests to the auth backend so that session
// cookies live on the frontend's origin during development. The request
// path is preserved; the Host header is rewritten to the backend's so
// virtual-hosted backends route correctly.
type Proxy struct {
	target *url.URL
	rp     *httputil.ReverseProxy
	log    *slog.Logger
	prefix string
}

// Option configures the Proxy.
type Option func(*Proxy)

// WithLogger sets the proxy logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Proxy) {
		if l != nil {
			p.log = l
		}
	}
}

// WithTransport sets the RoundTripper used for upstream requests.
func WithTransport(rt http.RoundTripper) Option {
	return func(p *Proxy) {
		if rt != nil {
			p.rp.Transport = rt
		}
	}
}

// New creates a Proxy for the configured backend origin.
func New(cfg Config, opts ...Option) (*Proxy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	target, err := url.Parse(cfg.BackendOrigin)
	if err != nil {
		return nil, ErrInvalidOrigin
	}

	p := &Proxy{
		target: target,
		prefix: cfg.PathPrefix,
	}
	strip := cfg.StripPrefix && cfg.PathPrefix != ""
	p.rp = &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			if strip {
				if after, ok := strings.CutPrefix(r.In.URL.Path, cfg.PathPrefix); ok {
					r.Out.URL.Path = after
					if after == "" {
						r.Out.URL.Path = "/"
					}
				}
			}
			r.SetURL(target)
			r.SetXForwarded()
			// The backend sees its own host, matching what a direct
			// browser request would carry.
			r.Out.Host = target.Host
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			if p.log != nil {
				p.log.ErrorContext(r.Context(), "auth backend unreachable",
					slog.String("origin", target.String()),
					slog.String("path", r.URL.Path),
					slog.Any("error", err),
				)
			}
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Prefix returns the router mount point for the proxy.
func (p *Proxy) Prefix() string {
	return p.prefix
}

// ServeHTTP implements http.Handler.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.rp.ServeHTTP(w, r)
}
