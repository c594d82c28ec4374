//go:build integration

package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/tressure/backend/internal/testutil"
)

func TestIntegrationUserRepository_InsertAndGet(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	email := testutil.UniqueEmail("ada")
	created, err := repo.InsertUser(ctx, "Ada", email)
	if err != nil {
		t.Fatalf("InsertUser failed: %v", err)
	}
	if created.ID <= 0 {
		t.Errorf("expected generated id, got %d", created.ID)
	}
	if created.Timestamp.IsZero() {
		t.Error("expected timestamp default to be applied")
	}

	got, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got.ID != created.ID || got.Name != "Ada" {
		t.Errorf("unexpected row: %+v", got)
	}
}

func TestIntegrationUserRepository_DuplicateEmail(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	email := testutil.UniqueEmail("dup")
	if _, err := repo.InsertUser(ctx, "First", email); err != nil {
		t.Fatalf("InsertUser failed: %v", err)
	}

	_, err := repo.InsertUser(ctx, "Second", email)
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	count, err := repo.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row after duplicate insert, got %d", count)
	}
}

func TestIntegrationUserRepository_GetByEmail_NotFound(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	_, err := repo.GetUserByEmail(ctx, "nobody@example.test")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestIntegrationUserRepository_WinnerAndList(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	if _, err := repo.GetWinner(ctx); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on empty table, got %v", err)
	}

	first, err := repo.InsertUser(ctx, "First", testutil.UniqueEmail("first"))
	if err != nil {
		t.Fatalf("InsertUser failed: %v", err)
	}
	if _, err := repo.InsertUser(ctx, "Second", testutil.UniqueEmail("second")); err != nil {
		t.Fatalf("InsertUser failed: %v", err)
	}

	winner, err := repo.GetWinner(ctx)
	if err != nil {
		t.Fatalf("GetWinner failed: %v", err)
	}
	if winner.ID != first.ID {
		t.Errorf("expected winner id %d, got %d", first.ID, winner.ID)
	}

	users, err := repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 || users[0].ID >= users[1].ID {
		t.Errorf("expected two users in id order, got %+v", users)
	}
}

func TestIntegrationUserRepository_WithSubmitLock_OneFirst(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	const workers = 8
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		firsts int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.WithSubmitLock(ctx, func(tx SubmitTx) error {
				exists, err := tx.HasAnyUser(ctx)
				if err != nil {
					return err
				}
				if _, err := tx.InsertUser(ctx, "racer", testutil.UniqueEmail("racer")); err != nil {
					return err
				}
				if !exists {
					mu.Lock()
					firsts++
					mu.Unlock()
				}
				return nil
			})
			if err != nil {
				t.Errorf("WithSubmitLock failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if firsts != 1 {
		t.Errorf("expected exactly one submission to see an empty table, got %d", firsts)
	}
}

func TestIntegrationUserRepository_ResetSchema(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	if _, err := repo.InsertUser(ctx, "Gone", testutil.UniqueEmail("gone")); err != nil {
		t.Fatalf("InsertUser failed: %v", err)
	}

	if err := repo.ResetSchema(ctx); err != nil {
		t.Fatalf("ResetSchema failed: %v", err)
	}

	count, err := repo.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty table after reset, got %d rows", count)
	}

	created, err := repo.InsertUser(ctx, "Fresh", testutil.UniqueEmail("fresh"))
	if err != nil {
		t.Fatalf("InsertUser failed: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("expected id sequence to restart at 1, got %d", created.ID)
	}
}

func newUserTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL, Options{
		UsersTable:  testutil.IntegrationUsersTable,
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.TruncateTable(ctx, repo.Pool(), testutil.IntegrationUsersTable); err != nil {
		t.Fatalf("truncate users table: %v", err)
	}

	return ctx, repo
}

func TestIntegrationRepository_LegacyTableRejected(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	const legacy = testutil.IntegrationUsersTable + "_legacy"
	quoted := quoteTable(legacy)
	if _, err := repo.Pool().Exec(ctx, "DROP TABLE IF EXISTS "+quoted); err != nil {
		t.Fatalf("drop legacy table: %v", err)
	}
	if _, err := repo.Pool().Exec(ctx, `CREATE TABLE `+quoted+` (name TEXT, email TEXT PRIMARY KEY, "timestamp" TIMESTAMPTZ)`); err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	t.Cleanup(func() {
		_, _ = repo.Pool().Exec(context.Background(), "DROP TABLE IF EXISTS "+quoted)
	})

	_, err := New(ctx, testutil.RequireEnv(t, "DATABASE_URL"), Options{UsersTable: legacy, AutoMigrate: true})
	if !errors.Is(err, ErrLegacySchema) {
		t.Fatalf("expected ErrLegacySchema, got %v", err)
	}
	if !strings.Contains(err.Error(), "id") {
		t.Errorf("error should name the missing column: %v", err)
	}

	if err := NewWithPool(repo.Pool(), testutil.IntegrationUsersTable).VerifySchema(ctx); err != nil {
		t.Errorf("current table should pass verification: %v", err)
	}
}
