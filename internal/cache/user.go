package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tressure/backend/internal/model"
)

// Cache keys and TTLs.
const (
	// generationKey counts table resets. Entries are written under the
	// generation the reader observed before querying the database, so a
	// row read before a reset can never be served after it.
	generationKey = "submissions:generation"
	entryPrefix   = "submissions:v"

	// DefaultTTL bounds how long an entry of a retired generation lingers
	// when invalidation after a reset fails.
	DefaultTTL = 10 * time.Minute

	scanBatch = 100
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// Generation returns the current reset generation. A missing counter is
// generation zero.
func (c *Cache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get failed: %w", err)
	}
	return gen, nil
}

// GetWinner returns the winner cached in generation gen or ErrCacheMiss.
func (c *Cache) GetWinner(ctx context.Context, gen int64) (*model.User, error) {
	return c.getUser(ctx, winnerKey(gen))
}

// SetWinner caches the winner row in generation gen.
func (c *Cache) SetWinner(ctx context.Context, gen int64, user *model.User) error {
	return c.setUser(ctx, winnerKey(gen), user)
}

// GetUser returns the row for email cached in generation gen or ErrCacheMiss.
func (c *Cache) GetUser(ctx context.Context, gen int64, email string) (*model.User, error) {
	return c.getUser(ctx, userKey(gen, email))
}

// SetUser caches the row under its email in generation gen.
func (c *Cache) SetUser(ctx context.Context, gen int64, user *model.User) error {
	return c.setUser(ctx, userKey(gen, user.Email), user)
}

// InvalidateWinner drops the winner cached in the current generation.
func (c *Cache) InvalidateWinner(ctx context.Context) error {
	gen, err := c.Generation(ctx)
	if err != nil {
		return err
	}
	if err := c.client.Del(ctx, winnerKey(gen)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

// InvalidateAll starts a new generation and drops every cached entry. It
// is called after a table reset.
func (c *Cache) InvalidateAll(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("redis incr failed: %w", err)
	}

	// Deleting while the cursor is live can make SCAN skip keys, so the
	// full key set is collected first.
	var keys []string
	iter := c.client.Scan(ctx, 0, entryPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}

	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		if err := c.client.Del(ctx, keys[start:end]...).Err(); err != nil {
			return fmt.Errorf("redis del failed: %w", err)
		}
	}
	return nil
}

func (c *Cache) getUser(ctx context.Context, key string) (*model.User, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		// Corrupt entry; drop it and fall through to the database.
		c.client.Del(ctx, key)
		return nil, ErrCacheMiss
	}
	return &user, nil
}

func (c *Cache) setUser(ctx context.Context, key string, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func generationPrefix(gen int64) string {
	return entryPrefix + strconv.FormatInt(gen, 10) + ":"
}

func winnerKey(gen int64) string {
	return generationPrefix(gen) + "winner"
}

// userKey derives the cache key from the email so raw addresses never
// appear in Redis key listings.
func userKey(gen int64, email string) string {
	return generationPrefix(gen) + "user:" + hashEmail(email)
}

func hashEmail(email string) string {
	hash := sha256.Sum256([]byte(email))
	return hex.EncodeToString(hash[:16]) // 32 hex chars
}
