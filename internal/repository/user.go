package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tressure/backend/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

// submitLockID is the advisory lock key held for the duration of a submission.
const submitLockID int64 = 730417

// uniqueViolationCode is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolationCode = "23505"

// SubmitTx is the query surface available while the submit lock is held.
type SubmitTx interface {
	HasAnyUser(ctx context.Context) (bool, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	InsertUser(ctx context.Context, name, email string) (*model.User, error)
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type userQueries struct {
	q     querier
	table string
}

// WithSubmitLock runs fn inside a transaction that holds a transaction-scoped
// advisory lock. Concurrent submissions therefore observe each other's rows,
// so at most one of them can see an empty table.
// The transaction commits when fn returns nil and rolls back otherwise.
func (r *Repository) WithSubmitLock(ctx context.Context, fn func(tx SubmitTx) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", submitLockID); err != nil {
			return fmt.Errorf("failed to acquire submit lock: %w", err)
		}
		return fn(&userQueries{q: tx, table: r.table})
	})
}

// GetUserByEmail retrieves a submission by email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.queries().GetUserByEmail(ctx, email)
}

// InsertUser stores a submission outside of the submit lock.
func (r *Repository) InsertUser(ctx context.Context, name, email string) (*model.User, error) {
	return r.queries().InsertUser(ctx, name, email)
}

// ListUsers returns every submission in insertion order.
func (r *Repository) ListUsers(ctx context.Context) ([]*model.User, error) {
	query := fmt.Sprintf(`
		SELECT id, name, email, "timestamp"
		FROM %s
		ORDER BY id ASC
	`, r.table)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// GetWinner returns the submission with the earliest timestamp.
// Ties are broken by id.
func (r *Repository) GetWinner(ctx context.Context) (*model.User, error) {
	query := fmt.Sprintf(`
		SELECT id, name, email, "timestamp"
		FROM %s
		ORDER BY "timestamp" ASC, id ASC
		LIMIT 1
	`, r.table)

	user, err := scanUser(r.pool.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get winner: %w", err)
	}

	return user, nil
}

// CountUsers returns the number of submissions.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.table)
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *Repository) queries() *userQueries {
	return &userQueries{q: r.pool, table: r.table}
}

func (u *userQueries) HasAnyUser(ctx context.Context) (bool, error) {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s)`, u.table)
	if err := u.q.QueryRow(ctx, query).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check for users: %w", err)
	}
	return exists, nil
}

func (u *userQueries) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := fmt.Sprintf(`
		SELECT id, name, email, "timestamp"
		FROM %s
		WHERE email = $1
	`, u.table)

	user, err := scanUser(u.q.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (u *userQueries) InsertUser(ctx context.Context, name, email string) (*model.User, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, email)
		VALUES ($1, $2)
		RETURNING id, name, email, "timestamp"
	`, u.table)

	user, err := scanUser(u.q.QueryRow(ctx, query, name, email))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
