// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package membership

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/refera/internal/platform/database/schema"
	"github.com/taibuivan/refera/internal/tenancy/directory"
)

// # Membership Repository

// PostgresRepository implements the Repository interface using pgx. The
// text[] containment queries are served by GIN indexes on the two list
// columns.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (repository *PostgresRepository) FindByAuthorizedEmail(ctx context.Context, email string) ([]*directory.Agency, error) {
	table := schema.TenancyAgency
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s @> ARRAY[$1]
		ORDER BY %s
	`, strings.Join(table.Columns(), ", "), table.Table, table.AuthorizedEmails, table.ID)

	rows, err := repository.pool.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("postgres_membership_repo_by_email_failed: %w", err)
	}
	return collectAgencies(rows)
}

func (repository *PostgresRepository) FindByAuthorizedDomain(ctx context.Context, domain string) ([]*directory.Agency, error) {
	table := schema.TenancyAgency
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s @> ARRAY[$1]
		ORDER BY %s
	`, strings.Join(table.Columns(), ", "), table.Table, table.AuthorizedDomains, table.ID)

	rows, err := repository.pool.Query(ctx, query, domain)
	if err != nil {
		return nil, fmt.Errorf("postgres_membership_repo_by_domain_failed: %w", err)
	}
	return collectAgencies(rows)
}

func (repository *PostgresRepository) FindByOwnerEmail(ctx context.Context, email string) ([]*directory.Agency, error) {
	table := schema.TenancyAgency
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s
	`, strings.Join(table.Columns(), ", "), table.Table, table.OwnerEmail, table.ID)

	rows, err := repository.pool.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("postgres_membership_repo_by_owner_failed: %w", err)
	}
	return collectAgencies(rows)
}

// collectAgencies drains rows into hydrated entities.
func collectAgencies(rows pgx.Rows) ([]*directory.Agency, error) {
	defer rows.Close()

	var agencies []*directory.Agency
	for rows.Next() {
		agency := &directory.Agency{}
		err := rows.Scan(
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
			return nil, fmt.Errorf("postgres_membership_repo_scan_failed: %w", err)
		}

		agency.Exists = true
		agencies = append(agencies, agency)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_membership_repo_rows_failed: %w", err)
	}

	return agencies, nil
}
