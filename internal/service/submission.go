// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tressure/backend/internal/cache"
	"github.com/tressure/backend/internal/metrics"
	"github.com/tressure/backend/internal/model"
	"github.com/tressure/backend/internal/repository"
)

// Service errors.
var (
	ErrValidation     = errors.New("name and email are required")
	ErrMissingParam   = errors.New("email is required")
	ErrDuplicateEmail = errors.New("email already submitted")
	ErrUserNotFound   = errors.New("user not found")
	ErrNoSubmissions  = errors.New("no submissions found")
)

// Store is the persistence the submission service needs.
// *repository.Repository satisfies it.
type Store interface {
	WithSubmitLock(ctx context.Context, fn func(tx repository.SubmitTx) error) error
	ListUsers(ctx context.Context) ([]*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetWinner(ctx context.Context) (*model.User, error)
	ResetSchema(ctx context.Context) error
}

// Cache is an optional read-through cache for lookups. Entries are scoped
// to a reset generation; InvalidateAll starts a new one.
// *cache.Cache satisfies it.
type Cache interface {
	Generation(ctx context.Context) (int64, error)
	GetWinner(ctx context.Context, gen int64) (*model.User, error)
	SetWinner(ctx context.Context, gen int64, user *model.User) error
	GetUser(ctx context.Context, gen int64, email string) (*model.User, error)
	SetUser(ctx context.Context, gen int64, user *model.User) error
	InvalidateWinner(ctx context.Context) error
	InvalidateAll(ctx context.Context) error
}

// SubmissionService handles submission business logic.
type SubmissionService struct {
	store   Store
	cache   Cache
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewSubmissionService creates a new SubmissionService.
// cache may be nil to disable caching.
func NewSubmissionService(store Store, c Cache, recorder metrics.Recorder, logger *slog.Logger) *SubmissionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmissionService{
		store:   store,
		cache:   c,
		metrics: recorder,
		logger:  logger,
	}
}

// SubmitInput defines input for a submission.
type SubmitInput struct {
	Name  string
	Email string
}

// Submit records a submission and reports its position.
// The emptiness check, duplicate check and insert run under the store's
// submit lock, so exactly one submission into an empty table is first.
func (s *SubmissionService) Submit(ctx context.Context, input SubmitInput) (*model.SubmitResult, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveSubmitDuration(time.Since(start))
	}()

	if model.IsBlank(input.Name) || model.IsBlank(input.Email) {
		s.metrics.IncSubmission(metrics.OutcomeInvalid)
		return nil, ErrValidation
	}

	var result *model.SubmitResult
	err := s.store.WithSubmitLock(ctx, func(tx repository.SubmitTx) error {
		hasAny, err := tx.HasAnyUser(ctx)
		if err != nil {
			return err
		}

		if !hasAny {
			if _, err := tx.InsertUser(ctx, input.Name, input.Email); err != nil {
				return err
			}
			result = &model.SubmitResult{IsFirst: true, Position: model.FirstPosition}
			return nil
		}

		_, err = tx.GetUserByEmail(ctx, input.Email)
		if err == nil {
			return ErrDuplicateEmail
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return err
		}

		user, err := tx.InsertUser(ctx, input.Name, input.Email)
		if err != nil {
			return err
		}
		result = &model.SubmitResult{IsFirst: false, Position: user.ID}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) || errors.Is(err, repository.ErrEmailExists) {
			s.metrics.IncSubmission(metrics.OutcomeDuplicate)
			return nil, ErrDuplicateEmail
		}
		s.metrics.IncSubmission(metrics.OutcomeError)
		return nil, fmt.Errorf("failed to submit: %w", err)
	}

	if result.IsFirst {
		s.metrics.IncSubmission(metrics.OutcomeFirst)
		if s.cache != nil {
			if err := s.cache.InvalidateWinner(ctx); err != nil {
				s.logger.Warn("failed to invalidate winner cache", "error", err)
			}
		}
	} else {
		s.metrics.IncSubmission(metrics.OutcomeAccepted)
	}

	return result, nil
}

// ListUsers returns every submission in insertion order.
func (s *SubmissionService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser returns the submission for email.
func (s *SubmissionService) GetUser(ctx context.Context, email string) (*model.User, error) {
	if model.IsBlank(email) {
		return nil, ErrMissingParam
	}

	// The generation is read before the store so that a row fetched
	// before a concurrent reset is filed under the retired generation.
	gen, cached := s.cacheGeneration(ctx)
	if cached {
		user, err := s.cache.GetUser(ctx, gen, email)
		if err == nil {
			s.metrics.IncCacheHit()
			return user, nil
		}
		s.noteCacheError(err, "user")
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if cached {
		if err := s.cache.SetUser(ctx, gen, user); err != nil {
			s.logger.Warn("failed to cache user", "error", err)
		}
	}

	return user, nil
}

// Winner returns the submission with the earliest timestamp.
func (s *SubmissionService) Winner(ctx context.Context) (*model.User, error) {
	gen, cached := s.cacheGeneration(ctx)
	if cached {
		user, err := s.cache.GetWinner(ctx, gen)
		if err == nil {
			s.metrics.IncCacheHit()
			return user, nil
		}
		s.noteCacheError(err, "winner")
	}

	user, err := s.store.GetWinner(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNoSubmissions
		}
		return nil, fmt.Errorf("failed to get winner: %w", err)
	}

	if cached {
		if err := s.cache.SetWinner(ctx, gen, user); err != nil {
			s.logger.Warn("failed to cache winner", "error", err)
		}
	}

	return user, nil
}

// Reset drops and recreates the submissions table. It returns an id
// identifying the reset for audit logs.
func (s *SubmissionService) Reset(ctx context.Context) (string, error) {
	resetID := ulid.Make().String()

	if err := s.store.ResetSchema(ctx); err != nil {
		return "", fmt.Errorf("failed to reset submissions: %w", err)
	}
	s.metrics.IncReset()

	if s.cache != nil {
		if err := s.cache.InvalidateAll(ctx); err != nil {
			s.logger.Warn("failed to clear cache after reset",
				"reset_id", resetID,
				"error", err,
			)
		}
	}

	s.logger.Info("submissions_reset", "reset_id", resetID)
	return resetID, nil
}

// cacheGeneration reports the generation to read and write under. When
// the cache is off or unreachable the lookup bypasses it entirely.
func (s *SubmissionService) cacheGeneration(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.metrics.IncCacheMiss()
		s.logger.Warn("cache generation lookup failed", "error", err)
		return 0, false
	}
	return gen, true
}

// noteCacheError records a miss; other errors are logged and the caller
// falls through to the store.
func (s *SubmissionService) noteCacheError(err error, key string) {
	s.metrics.IncCacheMiss()
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("cache lookup failed", "key", key, "error", err)
	}
}
