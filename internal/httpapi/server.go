// Package httpapi exposes the diagram pipeline over HTTP.
//
// The API is stateless: every request carries the full record set and preset,
// and the response is the rendered document. The only shared state is the
// artifact cache, which is keyed by input hash and therefore safe across
// instances.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/lzmap/lzmap/pkg/pipeline"
)

// Server hosts the diagram API.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	http   *http.Server
}

// New creates a Server listening on addr.
func New(addr string, runner *pipeline.Runner, logger *log.Logger) *Server {
	s := &Server{runner: runner, logger: logger}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.requestLog)

	r.Get("/healthz", s.handleHealthz)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/diagram", s.handleDiagram)
		r.Post("/graph", s.handleGraph)
	})

	s.http = &http.Server{
		Addr:           addr,
		Handler:        r,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	return s
}

// Handler returns the underlying router, for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return s.http.Shutdown(shutdownCtx)
}
