package server

import (
	"context"
	"errors"
)

// Shutdown stops the HTTP server and releases every resource New acquired,
// in reverse order of acquisition.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.E != nil {
		errs = append(errs, s.E.Shutdown(ctx))
	}
	if s.cancel != nil {
		s.cancel()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i](ctx))
	}
	s.closers = nil
	s.Logger.Info("Server stopped")
	return errors.Join(errs...)
}
