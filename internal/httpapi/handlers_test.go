// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compasshq/compass/internal/auth"
)

// fakeAuthenticator returns a canned session or error.
type fakeAuthenticator struct {
	session  *auth.Session
	err      error
	username string
	password string
	clientIP string
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, username, password, clientIP string) (*auth.Session, error) {
	f.username = username
	f.password = password
	f.clientIP = clientIP
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

// fakeResolver returns a canned user or error.
type fakeResolver struct {
	user   *auth.User
	err    error
	bearer string
}

func (f *fakeResolver) CurrentUser(_ context.Context, bearer string) (*auth.User, error) {
	f.bearer = bearer
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func newTestHandler(t *testing.T, authn Authenticator, identity IdentityResolver) http.Handler {
	t.Helper()
	server, err := NewServer("127.0.0.1:0", authn, identity, nil)
	require.NoError(t, err)
	return server.Handler()
}

func postToken(handler http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "192.0.2.55:44123"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestNewServer_NilDependencies(t *testing.T) {
	_, err := NewServer(":0", nil, &fakeResolver{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authenticator is required")

	_, err = NewServer(":0", &fakeAuthenticator{}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identity resolver is required")
}

func TestHandleRoot(t *testing.T) {
	handler := newTestHandler(t, &fakeAuthenticator{}, &fakeResolver{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "compass", body["service"])
	assert.Equal(t, "ok", body["status"])
}

func TestHandleToken_Success(t *testing.T) {
	ownerID := uuid.New()
	token, err := auth.NewSessionToken(&ownerID)
	require.NoError(t, err)

	invalidOn := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	authn := &fakeAuthenticator{session: &auth.Session{
		ID:        token,
		OwnerID:   ownerID,
		IPAddress: "192.0.2.55",
		InvalidOn: invalidOn,
	}}

	handler := newTestHandler(t, authn, &fakeResolver{})
	rec := postToken(handler, url.Values{"username": {"ali"}, "password": {"open sesame"}})

	require.Equal(t, http.StatusOK, rec.Code)

	var body tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, auth.EncodeToken(token), body.AccessToken)
	assert.Equal(t, "bearer", body.TokenType)
	assert.True(t, body.ExpiresOn.Equal(invalidOn))

	assert.Equal(t, "ali", authn.username)
	assert.Equal(t, "open sesame", authn.password)
	assert.Equal(t, "192.0.2.55", authn.clientIP, "port must be stripped from the remote address")
}

func TestHandleToken_MissingCredentials(t *testing.T) {
	handler := newTestHandler(t, &fakeAuthenticator{}, &fakeResolver{})
	rec := postToken(handler, url.Values{"username": {"ali"}})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Detail, "username and password are required")
}

func TestHandleToken_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantAuthHd bool
	}{
		{
			name:       "invalid credentials",
			err:        oops.Code(auth.CodeInvalidCredentials).Errorf("incorrect username or password"),
			wantStatus: http.StatusUnauthorized,
			wantAuthHd: true,
		},
		{
			name:       "session limit",
			err:        oops.Code(auth.CodeSessionLimit).Errorf("too many active sessions"),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "session conflict",
			err:        oops.Code(auth.CodeSessionConflict).Errorf("session already exists"),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "invalid argument",
			err:        oops.Code(auth.CodeInvalidArgument).Errorf("session_id and client_ip must be supplied together"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unrecognized error is opaque",
			err:        oops.Code("AUTH_LOOKUP_FAILED").Errorf("connection refused"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, &fakeAuthenticator{err: tt.err}, &fakeResolver{})
			rec := postToken(handler, url.Values{"username": {"ali"}, "password": {"pw"}})

			require.Equal(t, tt.wantStatus, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

			if tt.wantStatus == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", body.Detail, "internals must not leak")
			} else {
				assert.NotEmpty(t, body.Detail)
			}
			if tt.wantAuthHd {
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestHandleCurrentUser_Success(t *testing.T) {
	userID := uuid.New()
	user := &auth.User{
		ID:       userID,
		Role:     auth.RoleAuthorized,
		Status:   auth.StatusEnabled,
		IsActive: true,
		Contact:  auth.Contact{OwnerID: userID, Username: "ali"},
	}

	resolver := &fakeResolver{user: user}
	handler := newTestHandler(t, &fakeAuthenticator{}, resolver)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer some-bearer-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "some-bearer-token", resolver.bearer)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, userID.String(), body["id"])
	assert.Equal(t, string(auth.RoleAuthorized), body["role"])
	// redacted fields must not appear
	assert.NotContains(t, body, "hashed_password")
	assert.NotContains(t, body, "user_contacts")
	assert.NotContains(t, body, "user_sessions")
	assert.NotContains(t, body, "service_tickets")
}

func TestHandleCurrentUser_MissingBearer(t *testing.T) {
	handler := newTestHandler(t, &fakeAuthenticator{}, &fakeResolver{})

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestHandleCurrentUser_GateErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "unknown token",
			err:        oops.Code(auth.CodeInvalidCredentials).Errorf("invalid authentication credentials"),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "status gate",
			err:        oops.Code(auth.CodeForbidden).Errorf("not allowed to access this service"),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "inactive account",
			err:        oops.Code(auth.CodeNotActive).Errorf("not an active user"),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, &fakeAuthenticator{}, &fakeResolver{err: tt.err})

			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			req.Header.Set("Authorization", "Bearer whatever")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	handler := newTestHandler(t, &fakeAuthenticator{}, &fakeResolver{})

	req := httptest.NewRequest(http.MethodGet, "/token", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
