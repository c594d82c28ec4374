package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ErrLegacySchema is returned when the configured table exists but lacks
// columns the service queries, typically a table created by an older
// deployment without the id column.
var ErrLegacySchema = errors.New("users table has an incompatible schema")

// requiredColumns are the columns every query relies on.
var requiredColumns = []string{"id", "name", "email", "timestamp"}

const tableColumnsSQL = `
	SELECT column_name
	FROM information_schema.columns
	WHERE table_schema = current_schema() AND table_name = $1
`

func createUsersTableSQL(table string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id          BIGSERIAL UNIQUE,
			name        TEXT NOT NULL,
			email       TEXT NOT NULL PRIMARY KEY,
			"timestamp" TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
		)
	`, table)
}

func dropUsersTableSQL(table string) string {
	return fmt.Sprintf(`DROP TABLE IF EXISTS %s`, table)
}

// EnsureSchema creates the users table if it is missing. Safe to call repeatedly.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createUsersTableSQL(r.table)); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

// VerifySchema checks that the table has every column the queries use.
// CREATE TABLE IF NOT EXISTS leaves an older table untouched, so without
// this check each request against it would fail.
func (r *Repository) VerifySchema(ctx context.Context) error {
	rows, err := r.pool.Query(ctx, tableColumnsSQL, r.name)
	if err != nil {
		return fmt.Errorf("failed to inspect users table: %w", err)
	}
	columns, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("failed to inspect users table: %w", err)
	}

	if missing := missingColumns(columns); len(missing) > 0 {
		return fmt.Errorf("%w: table %s is missing column(s) %s; drop it, or start with AUTO_MIGRATE=false and reset it via /init-db",
			ErrLegacySchema, r.table, strings.Join(missing, ", "))
	}
	return nil
}

func missingColumns(have []string) []string {
	present := make(map[string]bool, len(have))
	for _, c := range have {
		present[c] = true
	}
	var missing []string
	for _, c := range requiredColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// ResetSchema drops the users table and recreates it empty.
// Both statements run in one transaction so readers never observe a missing table.
func (r *Repository) ResetSchema(ctx context.Context) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		// Serialize with in-flight submissions.
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", submitLockID); err != nil {
			return fmt.Errorf("acquire submit lock: %w", err)
		}
		if _, err := tx.Exec(ctx, dropUsersTableSQL(r.table)); err != nil {
			return fmt.Errorf("drop users table: %w", err)
		}
		if _, err := tx.Exec(ctx, createUsersTableSQL(r.table)); err != nil {
			return fmt.Errorf("create users table: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to reset users table: %w", err)
	}
	return nil
}
