// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/refera/internal/platform/database/schema"
)

// # Audit Store

// PostgresStore implements the Store interface using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewStore creates a new PostgreSQL implementation of the Store.
func NewStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

/*
Insert persists a single audit event into the system.auditlog table.

Parameters:
  - ctx: context.Context
  - event: Event

Returns:
  - error: Execution errors
*/
func (store *PostgresStore) Insert(ctx context.Context, event Event) error {
	table := schema.SystemAuditLog
	columns := strings.Join([]string{
		table.ID, table.Action, table.ActorID, table.TenantID,
		table.ResourceID, table.Detail, table.CreatedAt,
	}, ", ")
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, table.Table, columns)

	_, err := store.pool.Exec(ctx, query,
		event.ID,
		event.Action,
		event.ActorID,
		event.TenantID,
		event.ResourceID,
		event.Detail,
		event.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_audit_store_insert_failed: %w", err)
	}

	return nil
}
