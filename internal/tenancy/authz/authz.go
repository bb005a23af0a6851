// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package authz decides whether a principal may touch records inside a tenant.

The decision combines the three request-time facts: who is acting (session
principal), where they are acting (tenant scope), and what they want to do
(read or write). The platform admin bypasses membership entirely; everyone
else must hold a membership in the scoped tenant. Every denial of an
authenticated principal produces exactly one audit event.
*/
package authz

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/refera/internal/audit"
	"github.com/taibuivan/refera/internal/platform/apperr"
	"github.com/taibuivan/refera/internal/platform/sec"
)

// Mode is the kind of access being requested.
type Mode string

const (
	ModeRead  Mode = "read"
	ModeWrite Mode = "write"
)

// MembershipChecker is the slice of the membership index the authorizer uses.
type MembershipChecker interface {
	IsMember(ctx context.Context, email, agencyID string) bool
}

// Authorizer is the single server-side gate for tenant-scoped record access.
type Authorizer struct {
	adminEmail  string
	memberships MembershipChecker
	sink        audit.Sink
	logger      *slog.Logger
}

// NewAuthorizer constructs an [Authorizer]. adminEmail is expected lower-case
// (config.Load normalizes it).
func NewAuthorizer(adminEmail string, memberships MembershipChecker, sink audit.Sink, logger *slog.Logger) *Authorizer {
	return &Authorizer{
		adminEmail:  adminEmail,
		memberships: memberships,
		sink:        sink,
		logger:      logger,
	}
}

// IsPlatformAdmin reports whether the principal is the platform operator.
func (authorizer *Authorizer) IsPlatformAdmin(principal *sec.SessionClaims) bool {
	return principal != nil &&
		authorizer.adminEmail != "" &&
		strings.ToLower(principal.Email) == authorizer.adminEmail
}

/*
Authorize decides whether principal may access records in tenantID.

Description: Admin bypass first, then membership. A nil principal is an
authentication failure, not an authorization denial, and is not audited (there
is no actor to attribute it to). An authenticated denial emits exactly one
audit event before returning Forbidden.

Parameters:
  - ctx: context.Context
  - principal: *sec.SessionClaims (nil when unauthenticated)
  - tenantID: string (resolved agency id)
  - mode: Mode

Returns:
  - error: nil on allow; apperr Unauthorized/Forbidden on deny
*/
func (authorizer *Authorizer) Authorize(ctx context.Context, principal *sec.SessionClaims, tenantID string, mode Mode) error {
	if principal == nil {
		return apperr.Unauthorized("Authentication required")
	}

	if authorizer.IsPlatformAdmin(principal) {
		return nil
	}

	if authorizer.memberships.IsMember(ctx, principal.Email, tenantID) {
		return nil
	}

	event := audit.NewEvent(audit.ActionAccessDenied, principal.SubjectID(), tenantID)
	event.Detail = fmt.Sprintf("mode=%s email=%s", mode, principal.Email)
	authorizer.sink.Record(event)

	authorizer.logger.Warn("authz_access_denied",
		slog.String("tenant_id", tenantID),
		slog.String("actor_id", principal.SubjectID()),
		slog.String("mode", string(mode)),
	)

	return apperr.Forbidden("You do not have access to this agency")
}

// AuthorizeRead is shorthand for Authorize with [ModeRead].
func (authorizer *Authorizer) AuthorizeRead(ctx context.Context, principal *sec.SessionClaims, tenantID string) error {
	return authorizer.Authorize(ctx, principal, tenantID, ModeRead)
}

// AuthorizeWrite is shorthand for Authorize with [ModeWrite].
func (authorizer *Authorizer) AuthorizeWrite(ctx context.Context, principal *sec.SessionClaims, tenantID string) error {
	return authorizer.Authorize(ctx, principal, tenantID, ModeWrite)
}

// NoteSensitiveRead records that an allowed principal read client-identifying
// data. Allowed reads are audited too; the trail must show who looked, not
// only who was turned away.
func (authorizer *Authorizer) NoteSensitiveRead(principal *sec.SessionClaims, tenantID, resourceID string) {
	if principal == nil {
		return
	}

	event := audit.NewEvent(audit.ActionSensitiveRead, principal.SubjectID(), tenantID)
	event.ResourceID = resourceID
	authorizer.sink.Record(event)
}
