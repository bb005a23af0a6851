// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/refera/internal/platform/constants"
	"github.com/taibuivan/refera/internal/platform/ctxutil"
	"github.com/taibuivan/refera/internal/platform/middleware"
	"github.com/taibuivan/refera/internal/platform/sec"
)

type stubVerifier struct {
	valid map[string]*sec.SessionClaims
}

func (s *stubVerifier) VerifySession(ctx context.Context, artifact string) *sec.SessionClaims {
	return s.valid[artifact]
}

func claimsFor(subjectID string) *sec.SessionClaims {
	return &sec.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "sess-1", Subject: subjectID},
		Email:            "kim@acme.org",
	}
}

// capture records what the inner handler observed in its context.
type capture struct {
	called    bool
	principal *sec.SessionClaims
	tenantID  string
}

func (c *capture) handler() http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		c.called = true
		c.principal = ctxutil.GetPrincipal(request.Context())
		c.tenantID = ctxutil.GetTenantScope(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
}

/*
TestAuthenticate_ValidArtifact verifies a good bearer artifact yields a
principal in context.
*/
func TestAuthenticate_ValidArtifact(t *testing.T) {
	verifier := &stubVerifier{valid: map[string]*sec.SessionClaims{"good-token": claimsFor("u1")}}
	inner := &capture{}

	handler := middleware.Authenticate(verifier)(inner.handler())

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer good-token")
	handler.ServeHTTP(httptest.NewRecorder(), request)

	require.True(t, inner.called)
	require.NotNil(t, inner.principal)
	assert.Equal(t, "u1", inner.principal.SubjectID())
}

/*
TestAuthenticate_BadArtifactIsAnonymous verifies that missing, malformed, and
rejected artifacts all proceed anonymously instead of failing the request.
*/
func TestAuthenticate_BadArtifactIsAnonymous(t *testing.T) {
	verifier := &stubVerifier{valid: map[string]*sec.SessionClaims{}}

	tests := []struct {
		name   string
		header string
	}{
		{"no_header", ""},
		{"not_bearer", "Basic dXNlcjpwYXNz"},
		{"malformed", "Bearer"},
		{"rejected_token", "Bearer expired-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &capture{}
			handler := middleware.Authenticate(verifier)(inner.handler())

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.True(t, inner.called)
			assert.Nil(t, inner.principal)
			assert.Equal(t, http.StatusOK, recorder.Code)
		})
	}
}

/*
TestRequireAuth verifies anonymous requests are blocked with 401 on guarded
routes while authenticated ones pass.
*/
func TestRequireAuth(t *testing.T) {
	inner := &capture{}
	handler := middleware.RequireAuth(inner.handler())

	// Anonymous.
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.False(t, inner.called)

	// Authenticated.
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request = request.WithContext(ctxutil.WithPrincipal(request.Context(), claimsFor("u1")))

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, inner.called)
}

/*
TestTenantScope verifies the edge header is normalized into context for every
request shape the edge produces.
*/
func TestTenantScope(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"agency_label", "acme", "acme"},
		{"upper_case", "ACME", "acme"},
		{"missing", "", constants.RootTenantID},
		{"undefined_literal", "undefined", constants.RootTenantID},
		{"null_literal", "null", constants.RootTenantID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &capture{}
			handler := middleware.TenantScope(inner.handler())

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set(constants.HeaderXTenant, tt.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), request)

			require.True(t, inner.called)
			assert.Equal(t, tt.want, inner.tenantID)
		})
	}
}
