// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

// Package httpapi exposes the authentication service over HTTP: token
// issuance, current-user lookup, and a liveness root.
package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/compasshq/compass/internal/auth"
)

// Authenticator verifies credentials and opens a session.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password, clientIP string) (*auth.Session, error)
}

// IdentityResolver maps a bearer token to the user that owns it.
type IdentityResolver interface {
	CurrentUser(ctx context.Context, bearer string) (*auth.User, error)
}

// Server serves the public authentication API.
type Server struct {
	addr       string
	listener   net.Listener
	httpServer *http.Server
	auth       Authenticator
	identity   IdentityResolver
	logger     *slog.Logger
	running    atomic.Bool
}

// NewServer creates an API server. addr is a "host:port" listen address.
func NewServer(addr string, authn Authenticator, identity IdentityResolver, logger *slog.Logger) (*Server, error) {
	if authn == nil {
		return nil, oops.Errorf("authenticator is required")
	}
	if identity == nil {
		return nil, oops.Errorf("identity resolver is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:     addr,
		auth:     authn,
		identity: identity,
		logger:   logger,
	}, nil
}

// Handler returns the routed handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /token", s.handleToken)
	mux.HandleFunc("GET /users/me", s.handleCurrentUser)
	return s.instrument(mux)
}

// Start begins serving the API. It returns an error channel that
// receives any serve error and is closed on graceful shutdown.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}

	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
