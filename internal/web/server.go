// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

// Package web exposes the auth services over HTTP with cookie-carried
// session tokens.
package web

import (
	"context"
	cryptotls "crypto/tls"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/tenantry/tenantry/internal/auth"
	"github.com/tenantry/tenantry/internal/observability"
)

// Authenticator is the auth surface the HTTP layer needs. *auth.Service
// implements it.
type Authenticator interface {
	Signup(ctx context.Context, payload auth.SignupPayload) (*auth.Result, error)
	Login(ctx context.Context, payload auth.LoginPayload) (*auth.Result, error)
	CurrentUser(ctx context.Context, token string) (*auth.Profile, error)
	Logout(ctx context.Context, token string) error
	IsHandleAvailable(ctx context.Context, handle string) (bool, error)
	IsEmailAvailable(ctx context.Context, email string) (bool, error)
}

// CookieConfig configures the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// DefaultMaxBodyBytes caps request bodies when Deps.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 64 << 10

// Deps holds the server's collaborators. Auth is required.
type Deps struct {
	Addr           string
	Auth           Authenticator
	Logger         *slog.Logger
	Metrics        *observability.Metrics
	Cookie         CookieConfig
	AllowedOrigins []string
	MaxBodyBytes   int64
	// TLS, when set, makes the listener serve HTTPS.
	TLS *cryptotls.Config
}

// Server serves the HTTP API.
type Server struct {
	addr         string
	auth         Authenticator
	logger       *slog.Logger
	metrics      *observability.Metrics
	cookie       CookieConfig
	origins      []glob.Glob
	maxBodyBytes int64
	tlsConfig    *cryptotls.Config
	handler      http.Handler

	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// New creates a Server.
func New(deps Deps) (*Server, error) {
	if deps.Auth == nil {
		return nil, oops.Code("WEB_INVALID_DEPS").Errorf("authenticator is required")
	}
	if deps.Cookie.Name == "" {
		return nil, oops.Code("WEB_INVALID_DEPS").Errorf("cookie name is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = DefaultMaxBodyBytes
	}

	origins := make([]glob.Glob, 0, len(deps.AllowedOrigins))
	for _, pattern := range deps.AllowedOrigins {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, oops.Code("WEB_INVALID_ORIGIN").With("pattern", pattern).Wrap(err)
		}
		origins = append(origins, g)
	}

	s := &Server{
		addr:         deps.Addr,
		auth:         deps.Auth,
		logger:       deps.Logger,
		metrics:      deps.Metrics,
		cookie:       deps.Cookie,
		origins:      origins,
		maxBodyBytes: deps.MaxBodyBytes,
		tlsConfig:    deps.TLS,
	}
	s.handler = s.buildRouter()
	return s, nil
}

// Handler returns the API handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins serving the API. The returned channel receives a serve error,
// if any, and is closed when the server stops.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Code("WEB_RUNNING").Errorf("http server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.Code("WEB_LISTEN_FAILED").With("addr", s.addr).Wrap(err)
	}
	if s.tlsConfig != nil {
		listener = cryptotls.NewListener(listener, s.tlsConfig)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("http server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("http server started", "addr", listener.Addr().String(), "tls", s.tlsConfig != nil)
	return errCh, nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_http_server").Wrap(err)
		}
	}
	s.logger.Info("http server stopped")
	return nil
}

// Addr returns the listening address, or "" if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
