// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package referral

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/refera/internal/platform/apperr"
	"github.com/taibuivan/refera/internal/platform/sec"
	"github.com/taibuivan/refera/internal/platform/validate"
	"github.com/taibuivan/refera/internal/tenancy/directory"
	"github.com/taibuivan/refera/internal/tenancy/scope"
	"github.com/taibuivan/refera/pkg/uuidv7"
)

// TenantResolver maps an id-or-slug to the owning agency.
type TenantResolver interface {
	Resolve(ctx context.Context, idOrSlug string) *directory.Agency
}

// RecordAuthorizer gates authenticated record access and audits it.
type RecordAuthorizer interface {
	AuthorizeRead(ctx context.Context, principal *sec.SessionClaims, tenantID string) error
	AuthorizeWrite(ctx context.Context, principal *sec.SessionClaims, tenantID string) error
	NoteSensitiveRead(principal *sec.SessionClaims, tenantID, resourceID string)
}

// # Service Layer

// Service orchestrates referral intake and workflow.
type Service struct {
	repo       Repository
	tenants    TenantResolver
	authorizer RecordAuthorizer
	logger     *slog.Logger
}

// NewService constructs a new referral [Service].
func NewService(repo Repository, tenants TenantResolver, authorizer RecordAuthorizer, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		tenants:    tenants,
		authorizer: authorizer,
		logger:     logger,
	}
}

// SubmitInput is the public intake payload.
type SubmitInput struct {
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
	ClientPhone string `json:"client_phone"`
	Summary     string `json:"summary"`
}

/*
SubmitPublic accepts an anonymous referral into the scoped agency.

Description: The only unauthenticated write in the system. The root scope is
refused — a referral must land in exactly one agency — and so is a scope
whose agency was never provisioned or is no longer subscribed. The created
record starts in NEW and its id doubles as the public status handle.

Parameters:
  - ctx: context.Context
  - tenantID: string (scoped id-or-slug from the request)
  - input: SubmitInput

Returns:
  - *Referral: Created record
  - error: Validation, scope, or persistence failures
*/
func (service *Service) SubmitPublic(ctx context.Context, tenantID string, input SubmitInput) (*Referral, error) {
	if scope.IsRoot(tenantID) {
		return nil, apperr.Unprocessable("Referrals must be submitted to a specific agency")
	}

	agency := service.tenants.Resolve(ctx, tenantID)
	if !agency.Exists {
		return nil, apperr.NotFound("Agency")
	}
	if agency.Status == directory.StatusSuspended || agency.Status == directory.StatusCancelled {
		return nil, apperr.Forbidden("This agency is not accepting referrals")
	}

	validator := &validate.Validator{}
	validator.Required(FieldClientName, input.ClientName).MaxLen(FieldClientName, input.ClientName, 200)
	validator.Required(FieldClientEmail, input.ClientEmail).Email(FieldClientEmail, input.ClientEmail)
	validator.MaxLen(FieldClientPhone, input.ClientPhone, 32)
	validator.Required(FieldSummary, input.Summary).MaxLen(FieldSummary, input.Summary, 4000)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	referral := &Referral{
		ID:          uuidv7.New(),
		AgencyID:    agency.ID,
		ClientName:  strings.TrimSpace(input.ClientName),
		ClientEmail: strings.ToLower(strings.TrimSpace(input.ClientEmail)),
		ClientPhone: strings.TrimSpace(input.ClientPhone),
		Summary:     strings.TrimSpace(input.Summary),
		Status:      StatusNew,
	}

	if err := service.repo.Create(ctx, referral); err != nil {
		return nil, err
	}

	service.logger.Info("referral_submitted",
		slog.String("referral_id", referral.ID),
		slog.String("agency_id", agency.ID),
	)

	return referral, nil
}

/*
LookupStatus returns the public progress view of one referral.

Description: Requires the exact record id — there is no public enumeration.
The lookup is still scoped to the resolved agency, so an id leaked across
tenants resolves to nothing.

Parameters:
  - ctx: context.Context
  - tenantID: string
  - referralID: string

Returns:
  - *StatusView: Projection without client fields
  - error: NotFound or database errors
*/
func (service *Service) LookupStatus(ctx context.Context, tenantID, referralID string) (*StatusView, error) {
	if !uuidv7.IsValid(referralID) {
		return nil, apperr.NotFound("Referral")
	}

	agency := service.tenants.Resolve(ctx, tenantID)
	if !agency.Exists {
		return nil, apperr.NotFound("Referral")
	}

	return service.repo.FindStatus(ctx, agency.ID, referralID)
}

/*
List returns a page of the scoped agency's referrals for an authorized member.

Parameters:
  - ctx: context.Context
  - principal: *sec.SessionClaims
  - tenantID: string
  - filter: Filter
  - limit: int
  - offset: int

Returns:
  - []*Referral: Page of records, newest first
  - int: Total matching count
  - error: Authorization or database errors
*/
func (service *Service) List(ctx context.Context, principal *sec.SessionClaims, tenantID string, filter Filter, limit, offset int) ([]*Referral, int, error) {
	agency := service.tenants.Resolve(ctx, tenantID)
	if !agency.Exists {
		return nil, 0, apperr.NotFound("Agency")
	}

	if err := service.authorizer.AuthorizeRead(ctx, principal, agency.ID); err != nil {
		return nil, 0, err
	}

	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, apperr.ValidationError("Unknown referral status")
	}

	return service.repo.ListByAgency(ctx, agency.ID, filter, limit, offset)
}

/*
Get returns one full referral for an authorized member. The read is recorded
in the audit trail; full records carry client-identifying data.

Parameters:
  - ctx: context.Context
  - principal: *sec.SessionClaims
  - tenantID: string
  - referralID: string

Returns:
  - *Referral: Hydrated record
  - error: Authorization, NotFound, or database errors
*/
func (service *Service) Get(ctx context.Context, principal *sec.SessionClaims, tenantID, referralID string) (*Referral, error) {
	agency := service.tenants.Resolve(ctx, tenantID)
	if !agency.Exists {
		return nil, apperr.NotFound("Agency")
	}

	if err := service.authorizer.AuthorizeRead(ctx, principal, agency.ID); err != nil {
		return nil, err
	}

	referral, err := service.repo.FindByID(ctx, agency.ID, referralID)
	if err != nil {
		return nil, err
	}

	service.authorizer.NoteSensitiveRead(principal, agency.ID, referral.ID)
	return referral, nil
}

// UpdateStatusInput carries a workflow transition.
type UpdateStatusInput struct {
	Status Status `json:"status"`
	Note   string `json:"note"`
}

/*
UpdateStatus moves a referral to a new workflow state.

Parameters:
  - ctx: context.Context
  - principal: *sec.SessionClaims
  - tenantID: string
  - referralID: string
  - input: UpdateStatusInput

Returns:
  - error: Authorization, validation, NotFound, or database errors
*/
func (service *Service) UpdateStatus(ctx context.Context, principal *sec.SessionClaims, tenantID, referralID string, input UpdateStatusInput) error {
	agency := service.tenants.Resolve(ctx, tenantID)
	if !agency.Exists {
		return apperr.NotFound("Agency")
	}

	if err := service.authorizer.AuthorizeWrite(ctx, principal, agency.ID); err != nil {
		return err
	}

	validator := &validate.Validator{}
	validator.Custom(FieldStatus, !input.Status.IsValid(), "must be a valid referral status")
	validator.MaxLen(FieldNote, input.Note, 4000)

	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.UpdateStatus(ctx, agency.ID, referralID, input.Status, strings.TrimSpace(input.Note)); err != nil {
		return err
	}

	service.logger.Info("referral_status_updated",
		slog.String("referral_id", referralID),
		slog.String("agency_id", agency.ID),
		slog.String("status", string(input.Status)),
	)

	return nil
}

/*
Delete removes a referral permanently.

Parameters:
  - ctx: context.Context
  - principal: *sec.SessionClaims
  - tenantID: string
  - referralID: string

Returns:
  - error: Authorization, NotFound, or database errors
*/
func (service *Service) Delete(ctx context.Context, principal *sec.SessionClaims, tenantID, referralID string) error {
	agency := service.tenants.Resolve(ctx, tenantID)
	if !agency.Exists {
		return apperr.NotFound("Agency")
	}

	if err := service.authorizer.AuthorizeWrite(ctx, principal, agency.ID); err != nil {
		return err
	}

	return service.repo.Delete(ctx, agency.ID, referralID)
}
