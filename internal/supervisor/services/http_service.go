// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

// HTTPServer is the subset of *http.Server the service drives.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService keeps the recommendation API listening. A listen
// failure is returned to the supervisor, which restarts the service;
// cancellation drains in-flight requests for at most shutdownTimeout.
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	logger          zerolog.Logger
}

// NewHTTPServerService wraps server. A non-positive timeout means 10s.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration, logger zerolog.Logger) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	svc := &HTTPServerService{server: server, shutdownTimeout: shutdownTimeout}
	svc.logger = logger.With().Str("service", svc.String()).Logger()
	return svc
}

// listen runs ListenAndServe in the background. The returned channel
// yields at most one unexpected error and is closed once the server
// has returned.
func (h *HTTPServerService) listen() <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		err := h.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			done <- err
		}
	}()
	return done
}

// drain stops accepting connections and waits for the listener goroutine.
func (h *HTTPServerService) drain(done <-chan error) error {
	h.logger.Info().Dur("timeout", h.shutdownTimeout).Msg("HTTP server shutting down")

	// The serve context is already canceled here.
	ctx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
	defer cancel()

	if err := h.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	<-done
	h.logger.Info().Msg("HTTP server stopped")
	return nil
}

// Serve implements suture.Service.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	done := h.listen()
	if srv, ok := h.server.(*http.Server); ok {
		h.logger.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
	}

	select {
	case err, failed := <-done:
		if failed {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		if err := h.drain(done); err != nil {
			return err
		}
		return ctx.Err()
	}
}

func (h *HTTPServerService) String() string {
	return "http-server"
}
