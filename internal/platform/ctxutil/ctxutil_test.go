// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/refera/internal/platform/ctxutil"
	"github.com/taibuivan/refera/internal/platform/sec"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, requestID)
	assert.Equal(t, requestID, ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 1. Initially should return the default logger
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_Principal verifies that session claims can be stored in context.
*/
func TestContext_Principal(t *testing.T) {
	ctx := context.Background()
	claims := &sec.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "sess-1", Subject: "u1"},
		Email:            "kim@acme.org",
	}

	// 1. Initially should be nil (anonymous)
	assert.Nil(t, ctxutil.GetPrincipal(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithPrincipal(ctx, claims)
	got := ctxutil.GetPrincipal(ctx)
	assert.Equal(t, "u1", got.SubjectID())
	assert.Equal(t, "kim@acme.org", got.Email)
}

/*
TestContext_TenantScope verifies the active tenant id round-trips.
*/
func TestContext_TenantScope(t *testing.T) {
	ctx := context.Background()

	// 1. Initially should be empty (middleware not run)
	assert.Empty(t, ctxutil.GetTenantScope(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithTenantScope(ctx, "a1")
	assert.Equal(t, "a1", ctxutil.GetTenantScope(ctx))
}
