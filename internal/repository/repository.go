// Package repository provides database access layer.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// DefaultUsersTable is the table submissions are stored in.
const DefaultUsersTable = "users"

// Options tunes how the repository talks to PostgreSQL.
type Options struct {
	// UsersTable names the submissions table. Defaults to DefaultUsersTable.
	UsersTable string
	// AutoMigrate creates the table on startup when it does not exist and
	// rejects an existing table that lacks required columns.
	AutoMigrate bool
}

// Repository provides database access methods.
type Repository struct {
	pool *pgxpool.Pool
	// name is the unquoted table name, table the SQL-ready identifier.
	name  string
	table string
}

// New creates a new Repository with a connection pool.
func New(ctx context.Context, databaseURL string, opts Options) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := NewWithPool(pool, opts.UsersTable)

	if opts.AutoMigrate {
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		if err := repo.VerifySchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return repo, nil
}

// NewWithPool wraps an existing pool. An empty table name falls back to
// DefaultUsersTable.
func NewWithPool(pool *pgxpool.Pool, usersTable string) *Repository {
	if usersTable == "" {
		usersTable = DefaultUsersTable
	}
	return &Repository{
		pool:  pool,
		name:  usersTable,
		table: quoteTable(usersTable),
	}
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer adding methods to Repository.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// quoteTable returns the identifier ready for interpolation into SQL.
func quoteTable(name string) string {
	if name == "" {
		name = DefaultUsersTable
	}
	return pq.QuoteIdentifier(name)
}
