package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

type namedServer struct {
	name string
	srv  *http.Server
}

// servers lists the API server and the notification stream server.
func (a *App) servers() []namedServer {
	return []namedServer{
		{name: "http", srv: a.httpServer},
		{name: "sse", srv: a.sseServer},
	}
}

// Start launches both servers and returns a channel closed on the first
// termination signal.
func (a *App) Start() <-chan struct{} {
	terminateChan := make(chan struct{})

	for _, s := range a.servers() {
		go func() {
			slog.Info(s.name+" server listening", "address", s.srv.Addr)

			if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				slog.Error("failed to listen and serve "+s.name+" server", "error", err)
				os.Exit(1)
			}
		}()
	}

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(sigint)

		sig := <-sigint
		slog.Info("termination signal received", "signal", sig.String())

		// stops the expiry watcher and pending sync tasks
		a.cancel()
		close(terminateChan)
	}()

	return terminateChan
}

// Serve runs the API server on the provided listener.
func (a *App) Serve(l net.Listener) <-chan error {
	errChan := make(chan error, 1)

	go func() {
		errChan <- a.httpServer.Serve(l)
		close(errChan)
	}()

	return errChan
}

// Stop drains the servers, waits for background tasks and closes resources.
func (a *App) Stop(ctx context.Context) {
	a.cancel()

	for _, s := range a.servers() {
		if err := s.srv.Shutdown(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", s.name+" server", "error", err)
		}
	}

	slog.InfoContext(ctx, "waiting for background tasks to finish")
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "background tasks reported errors", "error", err)
	}

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}

	slog.InfoContext(ctx, "application gracefully shutdown")
}
