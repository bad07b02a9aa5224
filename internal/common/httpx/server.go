package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const defaultDrain = 5 * time.Second

type Server struct {
	srv   *http.Server
	drain time.Duration
}

// New wraps an http.Server for graceful shutdown. drain bounds how long
// in-flight requests get to finish once the context is cancelled; zero or
// negative falls back to the default.
func New(addr string, h http.Handler, drain time.Duration) *Server {
	if drain <= 0 {
		drain = defaultDrain
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: 5 * time.Second,
		},
		drain: drain,
	}
}

// Run serves until the context is cancelled, then shuts down gracefully
// within the drain window.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.ListenAndServe() }()
	select {
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), s.drain)
		defer cancel()
		_ = s.srv.Shutdown(sctx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
