// Package devproxy forwards browser requests to the auth backend during
// development so that session cookies are set on the frontend's origin.
//
// Without the proxy the backend lives on another origin and its cookies
// are third-party: browsers drop them and every session read comes back
// anonymous. Mounting the proxy under /api makes the backend same-origin
// from the browser's point of view.
//
// The backend origin comes from the AUTH_BACKEND_ORIGIN environment
// variable and is required. Startup fails loudly when it is missing or
// malformed:
//
//	cfg, err := devproxy.Load()
//	if err != nil {
//	    log.Error("proxy misconfigured", "error", err)
//	    os.Exit(1)
//	}
//	proxy, _ := devproxy.New(cfg)
//	r.Handle(proxy.Prefix()+"/*", proxy)
//
// An unreachable backend answers 502 and logs the failure; the proxy
// never swallows connectivity errors.
package devproxy
