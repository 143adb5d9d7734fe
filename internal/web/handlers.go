// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tenantry/tenantry/internal/auth"
)

// AvailabilityResponse answers a handle or email availability check.
type AvailabilityResponse struct {
	Available bool `json:"available"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var payload auth.SignupPayload
	if status, err := decodeJSON(r, &payload); err != nil {
		s.writeErrorStatus(w, r, status, err)
		return
	}

	res, err := s.auth.Signup(r.Context(), payload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.setSessionCookie(w, res.Token, res.ExpiresAt)
	s.writeJSON(w, r, http.StatusCreated, res.Profile)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload auth.LoginPayload
	if status, err := decodeJSON(r, &payload); err != nil {
		s.writeErrorStatus(w, r, status, err)
		return
	}

	res, err := s.auth.Login(r.Context(), payload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.setSessionCookie(w, res.Token, res.ExpiresAt)
	s.writeJSON(w, r, http.StatusOK, res.Profile)
}

// handleMe returns the caller's profile, or JSON null when there is no
// valid session.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	profile, err := s.auth.CurrentUser(r.Context(), s.sessionToken(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	s.writeJSON(w, r, http.StatusOK, profile)
}

// handleLogout clears the cookie even when revocation fails.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := s.sessionToken(r)
	s.clearSessionCookie(w)

	if err := s.auth.Logout(r.Context(), token); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHandleAvailability(w http.ResponseWriter, r *http.Request) {
	available, err := s.auth.IsHandleAvailable(r.Context(), chi.URLParam(r, "handle"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, AvailabilityResponse{Available: available})
}

func (s *Server) handleEmailAvailability(w http.ResponseWriter, r *http.Request) {
	available, err := s.auth.IsEmailAvailable(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, AvailabilityResponse{Available: available})
}
