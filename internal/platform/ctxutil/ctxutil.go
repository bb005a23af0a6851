// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/refera/internal/platform/ctxkey"
	"github.com/taibuivan/refera/internal/platform/sec"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// WithPrincipal returns a new context with the verified session claims attached.
func WithPrincipal(ctx context.Context, principal *sec.SessionClaims) context.Context {
	return context.WithValue(ctx, ctxkey.KeyPrincipal, principal)
}

// GetPrincipal retrieves the [*sec.SessionClaims] from the [context.Context].
// Returns nil for anonymous requests.
func GetPrincipal(ctx context.Context) *sec.SessionClaims {
	claims, ok := ctx.Value(ctxkey.KeyPrincipal).(*sec.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}

// # Tenant Scope

// WithTenantScope returns a new context with the active tenant id attached.
func WithTenantScope(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyTenantScope, tenantID)
}

// GetTenantScope retrieves the active tenant id from the context.
// Returns an empty string when the scoping middleware did not run.
func GetTenantScope(ctx context.Context) string {
	tenantID, _ := ctx.Value(ctxkey.KeyTenantScope).(string)
	return tenantID
}
