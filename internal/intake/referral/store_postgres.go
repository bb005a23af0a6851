// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package referral

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/refera/internal/platform/database/schema"
	"github.com/taibuivan/refera/internal/platform/dberr"
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of the Repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) Create(ctx context.Context, referral *Referral) error {
	table := schema.IntakeReferral
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, table.Table, strings.Join(table.Columns(), ", "))

	now := time.Now()
	referral.CreatedAt = now
	referral.UpdatedAt = now

	_, err := repository.db.Exec(ctx, query,
		referral.ID, referral.AgencyID,
		referral.ClientName, referral.ClientEmail, referral.ClientPhone,
		referral.Summary, referral.Status, referral.Note,
		referral.CreatedAt, referral.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_referral_repo_create_failed: %w", err))
	}

	return nil
}

func (repository *PostgresRepository) FindByID(ctx context.Context, agencyID, id string) (*Referral, error) {
	table := schema.IntakeReferral
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s = $2
	`, strings.Join(table.Columns(), ", "), table.Table, table.AgencyID, table.ID)

	referral := &Referral{}
	err := repository.db.QueryRow(ctx, query, agencyID, id).Scan(
		&referral.ID, &referral.AgencyID,
		&referral.ClientName, &referral.ClientEmail, &referral.ClientPhone,
		&referral.Summary, &referral.Status, &referral.Note,
		&referral.CreatedAt, &referral.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err)
	}

	return referral, nil
}

func (repository *PostgresRepository) FindStatus(ctx context.Context, agencyID, id string) (*StatusView, error) {
	table := schema.IntakeReferral
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = $2
	`, table.ID, table.Status, table.CreatedAt, table.UpdatedAt,
		table.Table, table.AgencyID, table.ID)

	view := &StatusView{}
	err := repository.db.QueryRow(ctx, query, agencyID, id).Scan(
		&view.ID, &view.Status, &view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err)
	}

	return view, nil
}

func (repository *PostgresRepository) ListByAgency(ctx context.Context, agencyID string, filter Filter, limit, offset int) ([]*Referral, int, error) {
	table := schema.IntakeReferral

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1
	`, strings.Join(table.Columns(), ", "), table.Table, table.AgencyID)
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1`, table.Table, table.AgencyID)

	args := []any{agencyID}

	if filter.Status != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		clause := fmt.Sprintf(" AND %s = %s", table.Status, placeholder)
		query += clause
		countQuery += clause
		args = append(args, filter.Status)
	}

	if filter.Query != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		clause := fmt.Sprintf(" AND (%s ILIKE %s OR %s ILIKE %s)",
			table.ClientName, placeholder, table.ClientEmail, placeholder)
		query += clause
		countQuery += clause
		args = append(args, "%"+escapeLike(filter.Query)+"%")
	}

	var total int
	if err := repository.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(fmt.Errorf("postgres_referral_repo_count_failed: %w", err))
	}

	query += fmt.Sprintf(" ORDER BY %s DESC LIMIT $%d OFFSET $%d", table.CreatedAt, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(fmt.Errorf("postgres_referral_repo_list_failed: %w", err))
	}
	defer rows.Close()

	var referrals []*Referral
	for rows.Next() {
		referral := &Referral{}
		err := rows.Scan(
			&referral.ID, &referral.AgencyID,
			&referral.ClientName, &referral.ClientEmail, &referral.ClientPhone,
			&referral.Summary, &referral.Status, &referral.Note,
			&referral.CreatedAt, &referral.UpdatedAt,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(fmt.Errorf("postgres_referral_repo_scan_failed: %w", err))
		}
		referrals = append(referrals, referral)
	}

	return referrals, total, nil
}

// escapeLike neutralizes LIKE metacharacters so user-supplied search text
// matches literally instead of widening the pattern.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func (repository *PostgresRepository) UpdateStatus(ctx context.Context, agencyID, id string, status Status, note string) error {
	table := schema.IntakeReferral
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $3, %s = $4, %s = $5
		WHERE %s = $1 AND %s = $2
	`, table.Table, table.Status, table.Note, table.UpdatedAt, table.AgencyID, table.ID)

	tag, err := repository.db.Exec(ctx, query, agencyID, id, status, note, time.Now())
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_referral_repo_update_status_failed: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

func (repository *PostgresRepository) Delete(ctx context.Context, agencyID, id string) error {
	table := schema.IntakeReferral
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, table.Table, table.AgencyID, table.ID)

	tag, err := repository.db.Exec(ctx, query, agencyID, id)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_referral_repo_delete_failed: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}
