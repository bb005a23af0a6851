// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/refera/internal/platform/dberr"
)

// # Agency Repository

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const agencyColumns = `
	id, slug, name, owneremail, status, authorizedemails, authorizeddomains,
	lastactiveat, createdat, updatedat`

// scanAgency hydrates a single agency row.
func scanAgency(row pgx.Row) (*Agency, error) {
	agency := &Agency{}
	err := row.Scan(
		&agency.ID,
		&agency.Slug,
		&agency.Name,
		&agency.OwnerEmail,
		&agency.Status,
		&agency.AuthorizedEmails,
		&agency.AuthorizedDomains,
		&agency.LastActiveAt,
		&agency.CreatedAt,
		&agency.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	agency.Exists = true
	return agency, nil
}

/*
FindByID retrieves an agency by its stable id.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *Agency: Hydrated entity with Exists = true
  - error: dberr.ErrNotFound or database errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Agency, error) {
	const query = `
		SELECT ` + agencyColumns + `
		FROM tenancy.agency
		WHERE id = $1`

	agency, err := scanAgency(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("postgres_agency_repo_find_by_id_failed: %w", err)
	}

	return agency, nil
}

/*
FindBySlug retrieves an agency by its subdomain alias.

Parameters:
  - context: context.Context
  - slug: string

Returns:
  - *Agency: Hydrated entity with Exists = true
  - error: dberr.ErrNotFound or database errors
*/
func (repository *PostgresRepository) FindBySlug(context context.Context, slug string) (*Agency, error) {
	const query = `
		SELECT ` + agencyColumns + `
		FROM tenancy.agency
		WHERE slug = $1`

	agency, err := scanAgency(repository.pool.QueryRow(context, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("postgres_agency_repo_find_by_slug_failed: %w", err)
	}

	return agency, nil
}

/*
Create persists a new agency record into the tenancy.agency table.

Parameters:
  - context: context.Context
  - agency: *Agency (Entity to persist)

Returns:
  - error: Unique-constraint violations (mapped by dberr) or connectivity errors
*/
func (repository *PostgresRepository) Create(context context.Context, agency *Agency) error {
	const query = `
		INSERT INTO tenancy.agency (
			id, slug, name, owneremail, status, authorizedemails, authorizeddomains, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now()
	if agency.CreatedAt.IsZero() {
		agency.CreatedAt = now
	}
	agency.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		agency.ID,
		agency.Slug,
		agency.Name,
		agency.OwnerEmail,
		agency.Status,
		agency.AuthorizedEmails,
		agency.AuthorizedDomains,
		agency.CreatedAt,
		agency.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_agency_repo_create_failed: %w", err))
	}

	return nil
}

/*
UpdateSlug replaces only the agency's subdomain alias.

The unique index on the slug column backs the service-level collision check.

Parameters:
  - context: context.Context
  - id: string
  - slug: string

Returns:
  - error: dberr.ErrNotFound, unique-constraint (mapped to Conflict), or execution errors
*/
func (repository *PostgresRepository) UpdateSlug(context context.Context, id, slug string) error {
	const query = `
		UPDATE tenancy.agency
		SET slug = $2, updatedat = $3
		WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, id, slug, time.Now())
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_agency_repo_update_slug_failed: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

/*
UpdateAccessLists replaces the agency's membership signal lists.

Parameters:
  - context: context.Context
  - id: string
  - emails: []string
  - domains: []string

Returns:
  - error: dberr.ErrNotFound or execution errors
*/
func (repository *PostgresRepository) UpdateAccessLists(context context.Context, id string, emails, domains []string) error {
	const query = `
		UPDATE tenancy.agency
		SET authorizedemails = $2, authorizeddomains = $3, updatedat = $4
		WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, id, emails, domains, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_agency_repo_update_access_lists_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

/*
TouchLastActive refreshes the agency's last-active timestamp.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresRepository) TouchLastActive(context context.Context, id string) error {
	const query = "UPDATE tenancy.agency SET lastactiveat = $2 WHERE id = $1"

	_, err := repository.pool.Exec(context, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_agency_repo_touch_last_active_failed: %w", err)
	}

	return nil
}
