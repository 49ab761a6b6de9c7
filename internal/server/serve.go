package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"
)

// ShutdownTimeout bounds how long in-flight requests may finish
const ShutdownTimeout = 5 * time.Second

// Serve listens on addr until ctx is canceled, then shuts down gracefully
func Serve(ctx context.Context, addr string, handler http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Printf("server stopped")
	return nil
}
