// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/taibuivan/refera/internal/platform/apperr"
	"github.com/taibuivan/refera/internal/platform/constants"
	"github.com/taibuivan/refera/internal/platform/ctxutil"
	"github.com/taibuivan/refera/internal/platform/respond"
	"github.com/taibuivan/refera/internal/platform/sec"
	"github.com/taibuivan/refera/internal/tenancy/scope"
)

// SessionVerifier resolves a session artifact to its principal.
//
// # Why an interface?
//
// Defining SessionVerifier here decouples the middleware from the identity
// service implementation, allowing us to easily inject mocks during unit
// testing.
type SessionVerifier interface {
	// VerifySession returns nil for any artifact that is not currently
	// valid; it never returns an error.
	VerifySession(ctx context.Context, artifact string) *sec.SessionClaims
}

// Authenticate extracts and verifies the session artifact from the
// Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <artifact>' header.
//  2. If absent, malformed, expired, or revoked, the request proceeds as
//     anonymous — route guards decide whether anonymity is acceptable.
//  3. On success, inject [*sec.SessionClaims] into the request context.
//
// A bad artifact is deliberately NOT a 401 here: the public intake surface
// shares this chain, and a stale artifact in a browser must not break an
// anonymous form submission.
func Authenticate(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(writer, request)
				return
			}

			principal := verifier.VerifySession(request.Context(), parts[1])
			if principal == nil {
				next.ServeHTTP(writer, request)
				return
			}

			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetPrincipal(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// TenantScope derives the active tenant for the request from the edge header
// and injects it into the context.
//
// # Flow
//  1. Read the pre-derived subdomain label from the edge header.
//  2. Normalize it (missing and the edge's "undefined"/"null" artifacts all
//     collapse to the root sentinel).
//  3. Inject the scope for downstream resolution against the directory.
func TenantScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		tenantID := scope.FromHost(request.Header.Get(constants.HeaderXTenant))
		ctx := ctxutil.WithTenantScope(request.Context(), tenantID)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}
