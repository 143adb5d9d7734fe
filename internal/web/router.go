// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// API routes.
const (
	RouteSignup            = "/api/v1/auth/signup"
	RouteLogin             = "/api/v1/auth/login"
	RouteMe                = "/api/v1/auth/me"
	RouteLogout            = "/api/v1/auth/logout"
	RouteHandleAvailable   = "/api/v1/availability/handle/{handle}"
	RouteEmailAvailability = "/api/v1/availability/email"
)

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.accessLogMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errRouteNotFound())
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeErrorStatus(w, r, http.StatusMethodNotAllowed, errMethodNotAllowed())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.handleSignup)
			r.Post("/login", s.handleLogin)
			r.Get("/me", s.handleMe)
			r.Post("/logout", s.handleLogout)
		})
		r.Route("/availability", func(r chi.Router) {
			r.Get("/handle/{handle}", s.handleHandleAvailability)
			r.Get("/email", s.handleEmailAvailability)
		})
	})

	return r
}
