// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package directory

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/refera/internal/platform/apperr"
	"github.com/taibuivan/refera/internal/platform/config"
	"github.com/taibuivan/refera/internal/platform/constants"
	"github.com/taibuivan/refera/internal/platform/dberr"
	"github.com/taibuivan/refera/internal/platform/validate"
	"github.com/taibuivan/refera/pkg/slug"
	"github.com/taibuivan/refera/pkg/uuidv7"
)

// Placeholder display names. The storage-error marker exists so a support
// engineer can tell "agency was never configured" apart from "the directory
// was unreachable" when reading a screenshot or a log line.
const (
	placeholderName        = "Not configured"
	placeholderErrorMarker = "Unavailable (directory error)"
)

// reservedSlugs are labels no agency may ever hold. The root sentinel would
// let an agency capture the apex scope (unscoped requests resolve through the
// slug column); the rest are infrastructure subdomains.
var reservedSlugs = map[string]struct{}{
	constants.RootTenantID: {},
	"www":                  {},
	"api":                  {},
	"app":                  {},
	"admin":                {},
	"status":               {},
}

// SlugReserved reports whether the label is withheld from the slug namespace.
func SlugReserved(candidate string) bool {
	_, reserved := reservedSlugs[candidate]
	return reserved
}

// # Service Layer

// Service orchestrates directory resolution and provisioning.
type Service struct {
	repo   Repository
	cfg    *config.Config
	logger *slog.Logger
}

// NewService constructs a new directory [Service].
func NewService(repo Repository, cfg *config.Config, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

// # Resolution

/*
Resolve maps an id-or-slug to exactly one agency record.

Description: Lookup order is (1) exact id match, (2) exact slug match. The id
match always wins so a hostile slug registration can never shadow another
agency's id. Resolve never returns an error: an absent agency and a storage
failure both degrade to a placeholder with Exists = false, so request
handling renders "not configured / access denied" instead of crashing.

Parameters:
  - context: context.Context
  - idOrSlug: string (host-derived label)

Returns:
  - *Agency: Hydrated entity, or a placeholder with Exists = false
*/
func (service *Service) Resolve(context context.Context, idOrSlug string) *Agency {

	// 1. Stable id takes priority.
	agency, err := service.repo.FindByID(context, idOrSlug)
	if err == nil {
		return withDefaults(agency)
	}

	if !dberr.IsNotFound(err) {
		service.logger.Error("directory_resolve_failed",
			slog.String("id_or_slug", idOrSlug),
			slog.String("lookup", "id"),
			slog.Any("error", err),
		)
		return service.placeholder(idOrSlug, placeholderErrorMarker)
	}

	// 2. Fall back to the subdomain alias.
	agency, err = service.repo.FindBySlug(context, idOrSlug)
	if err == nil {
		return withDefaults(agency)
	}

	if !dberr.IsNotFound(err) {
		service.logger.Error("directory_resolve_failed",
			slog.String("id_or_slug", idOrSlug),
			slog.String("lookup", "slug"),
			slog.Any("error", err),
		)
		return service.placeholder(idOrSlug, placeholderErrorMarker)
	}

	return service.placeholder(idOrSlug, placeholderName)
}

// placeholder builds the synthetic "no owning agency" record.
//
// The subscription status defaults to SUSPENDED in production (deny by
// default) and ACTIVE in development. The development default is deliberate:
// it lets local intake-form work proceed without seeding a directory row.
func (service *Service) placeholder(idOrSlug, name string) *Agency {
	status := StatusSuspended
	if service.cfg.IsDevelopment() {
		status = StatusActive
	}

	return &Agency{
		ID:     idOrSlug,
		Slug:   idOrSlug,
		Name:   name,
		Status: status,
		Exists: false,
	}
}

// withDefaults merges conservative defaults into a found record.
func withDefaults(agency *Agency) *Agency {
	if agency.Slug == "" {
		agency.Slug = agency.ID
	}
	if agency.Status == "" {
		agency.Status = StatusSuspended
	}
	return agency
}

// # Provisioning

// ProvisionInput holds the data required to create a new agency workspace.
type ProvisionInput struct {
	Name       string `json:"name"`
	OwnerEmail string `json:"owner_email"`
}

/*
Provision creates a new directory entry with a first owner email.

Description: Thin setup path — the heavy lifting (membership, authorization)
derives from the directory row it creates. The initial slug is generated from
the agency name; a collision falls back to the immutable id, which is always
routable.

Parameters:
  - context: context.Context
  - input: ProvisionInput

Returns:
  - *Agency: Created entity
  - error: Validation or persistence failures
*/
func (service *Service) Provision(context context.Context, input ProvisionInput) (*Agency, error) {
	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).MaxLen(FieldName, input.Name, 200)
	validator.Required(FieldOwnerEmail, input.OwnerEmail).Email(FieldOwnerEmail, input.OwnerEmail)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	agency := &Agency{
		ID:                uuidv7.New(),
		Slug:              slug.From(input.Name),
		Name:              strings.TrimSpace(input.Name),
		OwnerEmail:        normalizeEmail(input.OwnerEmail),
		Status:            StatusActive,
		AuthorizedEmails:  []string{},
		AuthorizedDomains: []string{},
		Exists:            true,
	}

	if agency.Slug == "" || SlugReserved(agency.Slug) || service.slugTaken(context, agency.Slug, agency.ID) {
		agency.Slug = agency.ID
	}

	if err := service.repo.Create(context, agency); err != nil {
		return nil, err
	}

	service.logger.Info("agency_provisioned",
		slog.String("agency_id", agency.ID),
		slog.String("slug", agency.Slug),
	)

	return agency, nil
}

// # Mutations

/*
UpdateSlug changes the agency's subdomain alias.

Description: Validates the slug format, rejects reserved labels (the root
scope sentinel and infrastructure subdomains), and checks global uniqueness
against BOTH the slug and id columns before persisting — a slug equal to any
other agency's id would let resolution be shadowed (id priority protects
reads, but the collision is rejected outright here).

Parameters:
  - context: context.Context
  - agencyID: string
  - newSlug: string

Returns:
  - error: Validation, Conflict, or persistence failures
*/
func (service *Service) UpdateSlug(context context.Context, agencyID, newSlug string) error {
	validator := &validate.Validator{}
	validator.Required(FieldSlug, newSlug).Slug(FieldSlug, newSlug).MaxLen(FieldSlug, newSlug, 63)

	if err := validator.Err(); err != nil {
		return err
	}

	if SlugReserved(newSlug) {
		return apperr.Unprocessable("This subdomain is reserved")
	}

	if service.slugTaken(context, newSlug, agencyID) {
		return apperr.Conflict("This subdomain is already in use")
	}

	if err := service.repo.UpdateSlug(context, agencyID, newSlug); err != nil {
		return err
	}

	service.logger.Info("agency_slug_updated",
		slog.String("agency_id", agencyID),
		slog.String("slug", newSlug),
	)

	return nil
}

/*
UpdateAccessLists replaces the agency's membership signal lists.

Description: Emails and domains are normalized (trimmed, lower-cased) before
persisting so the membership index can compare without re-normalizing.

Parameters:
  - context: context.Context
  - agencyID: string
  - emails: []string
  - domains: []string

Returns:
  - error: Validation or persistence failures
*/
func (service *Service) UpdateAccessLists(context context.Context, agencyID string, emails, domains []string) error {
	validator := &validate.Validator{}

	normalizedEmails := make([]string, 0, len(emails))
	for _, email := range emails {
		normalized := normalizeEmail(email)
		validator.Email(FieldEmails, normalized)
		normalizedEmails = append(normalizedEmails, normalized)
	}

	normalizedDomains := make([]string, 0, len(domains))
	for _, domain := range domains {
		normalized := strings.ToLower(strings.TrimSpace(domain))
		validator.Required(FieldDomains, normalized)
		normalizedDomains = append(normalizedDomains, normalized)
	}

	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.UpdateAccessLists(context, agencyID, normalizedEmails, normalizedDomains); err != nil {
		return err
	}

	service.logger.Info("agency_access_lists_updated",
		slog.String("agency_id", agencyID),
		slog.Int("emails", len(normalizedEmails)),
		slog.Int("domains", len(normalizedDomains)),
	)

	return nil
}

// slugTaken reports whether candidate already identifies another agency,
// either as a slug or as an id.
func (service *Service) slugTaken(context context.Context, candidate, selfID string) bool {
	if existing, err := service.repo.FindBySlug(context, candidate); err == nil && existing.ID != selfID {
		return true
	}
	if existing, err := service.repo.FindByID(context, candidate); err == nil && existing.ID != selfID {
		return true
	}
	return false
}

// normalizeEmail lower-cases and trims an address for comparison storage.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
