package authfold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// Run starts the HTTP server and blocks until a shutdown signal, a Stop
// call, or a serve failure. SIGINT and SIGTERM trigger graceful shutdown.
//
// Returns nil on clean shutdown, or an error if the server fails to start
// or a shutdown hook fails.
func (a *App) Run() error {
	logger := a.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	a.setupRoutes()

	baseCtx := a.baseCtx
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(baseCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Bind before serving so Addr() reports the resolved address even
	// when the configured one uses port 0.
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.server.Addr, err)
	}
	a.listener = ln

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.server.Serve(ln)
	}()
	logger.Info("server starting", slog.String("address", ln.Addr().String()))

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case <-a.done:
		logger.Info("stop requested")
	}

	return a.shutdown(logger)
}

// shutdown drains in-flight requests and runs the registered hooks. Hooks
// run even when draining fails; all failures are reported together.
func (a *App) shutdown(logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(ctx)
	for _, hook := range a.shutdownHooks {
		if hookErr := hook(ctx); hookErr != nil {
			logger.Error("shutdown hook failed", slog.Any("error", hookErr))
			err = errors.Join(err, hookErr)
		}
	}
	if err != nil {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}

// Stop triggers graceful shutdown programmatically. Safe to call more than
// once and from any goroutine.
func (a *App) Stop() error {
	a.stopOnce.Do(func() { close(a.done) })
	return nil
}
