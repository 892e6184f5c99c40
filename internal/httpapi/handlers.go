// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

package httpapi

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/oops"

	"github.com/compasshq/compass/internal/auth"
	"github.com/compasshq/compass/pkg/errutil"
)

// tokenResponse is the body returned by a successful POST /token.
type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresOn   time.Time `json:"expires_on"`
}

// errorResponse carries a client-facing failure description.
type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "compass",
		"status":  "ok",
	})
}

// handleToken exchanges form credentials for a bearer token.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, r, oops.Code(auth.CodeInvalidArgument).Wrap(err))
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		s.writeError(w, r, oops.Code(auth.CodeInvalidArgument).
			Errorf("username and password are required"))
		return
	}

	session, err := s.auth.Authenticate(r.Context(), username, password, clientIP(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: auth.EncodeToken(session.ID),
		TokenType:   "bearer",
		ExpiresOn:   session.InvalidOn,
	})
}

// handleCurrentUser resolves the bearer token and returns the redacted
// user view.
func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	bearer, ok := bearerToken(r)
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Detail: "invalid authentication credentials",
		})
		return
	}

	user, err := s.identity.CurrentUser(r.Context(), bearer)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, auth.CurrentUserView(user))
}

// writeError maps domain error codes onto HTTP statuses. Unrecognized
// errors become an opaque 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	detail := "internal server error"

	if oopsErr, ok := oops.AsOops(err); ok {
		switch oopsErr.Code() {
		case auth.CodeInvalidCredentials, auth.CodeNotActive:
			status = http.StatusUnauthorized
			detail = oopsErr.Error()
			w.Header().Set("WWW-Authenticate", "Bearer")
		case auth.CodeForbidden, auth.CodeSessionLimit:
			status = http.StatusForbidden
			detail = oopsErr.Error()
		case auth.CodeSessionConflict:
			status = http.StatusConflict
			detail = oopsErr.Error()
		case auth.CodeInvalidArgument:
			status = http.StatusBadRequest
			detail = oopsErr.Error()
		}
	}

	if status == http.StatusInternalServerError {
		errutil.LogError(s.logger, "request failed", err)
	} else {
		s.logger.DebugContext(r.Context(), "request rejected",
			"path", r.URL.Path,
			"status", status,
			"error", err)
	}

	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // response write error means the client went away
	json.NewEncoder(w).Encode(body)
}

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return "", false
	}
	return header[len(prefix):], true
}

// clientIP strips the port from the request's remote address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// instrument wraps the handler to count requests by path and status.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		requestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(recorder.status)).Inc()
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}
