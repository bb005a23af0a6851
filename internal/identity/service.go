// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/taibuivan/refera/internal/audit"
	"github.com/taibuivan/refera/internal/platform/apperr"
	"github.com/taibuivan/refera/internal/platform/constants"
	"github.com/taibuivan/refera/internal/platform/sec"
	"github.com/taibuivan/refera/internal/tenancy/directory"
	"github.com/taibuivan/refera/pkg/uuidv7"
)

// MembershipLister reports the agencies a verified email belongs to.
type MembershipLister interface {
	MembershipsFor(ctx context.Context, email string) []*directory.Agency
}

// PresenceRecorder refreshes an agency's last-active timestamp.
type PresenceRecorder interface {
	TouchLastActive(ctx context.Context, agencyID string) error
}

// Session is what a successful exchange returns to the client.
type Session struct {
	Token       string                    `json:"token"`
	ExpiresAt   time.Time                 `json:"expires_at"`
	Principal   PrincipalView             `json:"principal"`
	Memberships []directory.PublicProfile `json:"memberships"`
}

// PrincipalView is the client-facing identity summary.
type PrincipalView struct {
	SubjectID   string `json:"subject_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// # Service Layer

// Service implements the session lifecycle.
type Service struct {
	tokens      *sec.TokenService
	verifier    Verifier
	registry    SessionRegistry
	memberships MembershipLister
	presence    PresenceRecorder
	sink        audit.Sink
	adminEmail  string
	logger      *slog.Logger
}

// NewService constructs a new identity [Service]. adminEmail is expected
// lower-case (config.Load normalizes it).
func NewService(
	tokens *sec.TokenService,
	verifier Verifier,
	registry SessionRegistry,
	memberships MembershipLister,
	presence PresenceRecorder,
	sink audit.Sink,
	adminEmail string,
	logger *slog.Logger,
) *Service {
	return &Service{
		tokens:      tokens,
		verifier:    verifier,
		registry:    registry,
		memberships: memberships,
		presence:    presence,
		sink:        sink,
		adminEmail:  adminEmail,
		logger:      logger,
	}
}

/*
CreateSession exchanges an identity-provider token for a session artifact.

Description: Verifies the provider token, derives memberships, and refuses to
mint a session for an email with zero memberships (unless it is the platform
admin) — an authenticated stranger holds no more capability than an anonymous
one, so there is nothing for a session to carry. On success the session id is
registered for revocation, agency presence is refreshed in the background,
and a session.created audit event is recorded.

Parameters:
  - ctx: context.Context
  - identityToken: string

Returns:
  - *Session: Artifact, expiry, principal, memberships
  - error: apperr.Unauthorized (bad token) or apperr.Forbidden (no memberships)
*/
func (service *Service) CreateSession(ctx context.Context, identityToken string) (*Session, error) {
	claims, err := service.verifier.Verify(ctx, identityToken)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))

	memberships := service.memberships.MembershipsFor(ctx, email)
	if len(memberships) == 0 && email != service.adminEmail {
		return nil, apperr.Forbidden("Your account does not belong to any agency")
	}

	sessionID := uuidv7.New()
	expiresAt := time.Now().Add(constants.SessionTTL)

	token, err := service.tokens.GenerateSessionToken(sessionID, claims.SubjectID, email, claims.DisplayName, constants.SessionTTL)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if err := service.registry.Put(ctx, sessionID, claims.SubjectID, constants.SessionTTL); err != nil {
		return nil, apperr.Internal(err)
	}

	// Presence is best-effort; a failed touch never blocks the login.
	go service.touchPresence(memberships)

	event := audit.NewEvent(audit.ActionSessionCreated, claims.SubjectID, constants.RootTenantID)
	event.Detail = "memberships=" + strconv.Itoa(len(memberships))
	service.sink.Record(event)

	service.logger.Info("session_created",
		slog.String("subject_id", claims.SubjectID),
		slog.Int("memberships", len(memberships)),
	)

	profiles := make([]directory.PublicProfile, 0, len(memberships))
	for _, agency := range memberships {
		profiles = append(profiles, agency.Public())
	}

	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		Principal: PrincipalView{
			SubjectID:   claims.SubjectID,
			Email:       email,
			DisplayName: claims.DisplayName,
		},
		Memberships: profiles,
	}, nil
}

/*
VerifySession resolves a session artifact to its principal.

Description: Never returns an error. A missing, malformed, expired, or
revoked artifact yields nil — the request proceeds anonymously and route
guards decide whether that is acceptable. A registry connectivity failure is
logged and the signature-verified artifact is honored anyway; the artifact's
own short expiry bounds the exposure of a degraded revocation check.

Parameters:
  - ctx: context.Context
  - artifact: string (may be empty)

Returns:
  - *sec.SessionClaims: Principal, or nil
*/
func (service *Service) VerifySession(ctx context.Context, artifact string) *sec.SessionClaims {
	if artifact == "" {
		return nil
	}

	claims, err := service.tokens.VerifySessionToken(artifact)
	if err != nil {
		return nil
	}

	active, err := service.registry.IsActive(ctx, claims.SessionID())
	if err != nil {
		service.logger.Error("session_registry_unavailable", slog.Any("error", err))
		return claims
	}
	if !active {
		return nil
	}

	return claims
}

/*
RevokeSession removes the principal's session from the registry.

Description: Idempotent — revoking an already-dead or unknown session
succeeds silently.

Parameters:
  - ctx: context.Context
  - principal: *sec.SessionClaims (nil is a no-op)

Returns:
  - error: Registry connectivity errors only
*/
func (service *Service) RevokeSession(ctx context.Context, principal *sec.SessionClaims) error {
	if principal == nil {
		return nil
	}

	if err := service.registry.Revoke(ctx, principal.SessionID()); err != nil {
		return apperr.Internal(err)
	}

	event := audit.NewEvent(audit.ActionSessionRevoked, principal.SubjectID(), constants.RootTenantID)
	service.sink.Record(event)

	return nil
}

// touchPresence refreshes last-active on every agency the login belongs to.
func (service *Service) touchPresence(memberships []*directory.Agency) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, agency := range memberships {
		if err := service.presence.TouchLastActive(ctx, agency.ID); err != nil {
			service.logger.Warn("presence_touch_failed",
				slog.String("agency_id", agency.ID),
				slog.Any("error", err),
			)
		}
	}
}
