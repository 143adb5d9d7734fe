// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/tenantry/tenantry/internal/auth"
	"github.com/tenantry/tenantry/pkg/errutil"
)

// Transport error codes.
const (
	CodeMalformedRequest = "REQUEST_MALFORMED"
	CodeRequestTooLarge  = "REQUEST_TOO_LARGE"
	CodeRouteNotFound    = "ROUTE_NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// retryAfterSeconds is sent with 503 responses.
const retryAfterSeconds = 5

// ErrorBody is the JSON envelope for every failed request.
type ErrorBody struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Code      string `json:"code"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Severity  string `json:"severity"`
	Retryable bool   `json:"retryable"`
}

func errorBody(e *auth.Error) ErrorBody {
	return ErrorBody{
		ID:        e.ID,
		Kind:      e.Kind.String(),
		Code:      e.Code,
		Title:     e.Title(),
		Message:   e.Message,
		Severity:  string(e.Severity()),
		Retryable: e.Kind.Retryable(),
	}
}

// StatusFor maps an error kind to an HTTP status.
func StatusFor(kind auth.Kind) int {
	switch kind {
	case auth.KindValidation:
		return http.StatusBadRequest
	case auth.KindUnauthorized:
		return http.StatusUnauthorized
	case auth.KindNotFound:
		return http.StatusNotFound
	case auth.KindConflict:
		return http.StatusConflict
	case auth.KindPersistence:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	pub := auth.AsError(err)
	s.writeErrorStatus(w, r, StatusFor(pub.Kind), pub)
}

func (s *Server) writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	pub := auth.AsError(err)
	if status >= http.StatusInternalServerError && pub.Kind == auth.KindInternal {
		errutil.LogErrorContext(r.Context(), s.logger, "request failed", pub)
	}
	if pub.Kind.Retryable() {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	s.writeJSON(w, r, status, errorBody(pub))
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WarnContext(r.Context(), "failed to encode response", "error", err)
	}
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v any) (status int, err error) {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return http.StatusRequestEntityTooLarge, auth.NewError(auth.KindValidation, CodeRequestTooLarge,
				"request body is too large", err)
		}
		return http.StatusBadRequest, auth.NewError(auth.KindValidation, CodeMalformedRequest,
			"request body must be a JSON object", err)
	}
	return 0, nil
}

func errRouteNotFound() *auth.Error {
	return auth.NewError(auth.KindNotFound, CodeRouteNotFound, "no such endpoint", nil)
}

func errMethodNotAllowed() *auth.Error {
	return auth.NewError(auth.KindValidation, CodeMethodNotAllowed, "method not allowed for this endpoint", nil)
}
