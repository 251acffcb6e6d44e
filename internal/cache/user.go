package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/usersvc/usersvc/internal/model"
)

const (
	userKeyPrefix = "user:"

	// DefaultUserTTL is the TTL for cached user records.
	DefaultUserTTL = time.Hour
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// GetUser retrieves a user from cache by ID.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetUser(ctx context.Context, id int64) (*model.User, error) {
	result, err := c.client.HGetAll(ctx, userKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	return userFromFields(result)
}

// SetUser stores a user in cache. Users never change, so entries only expire.
func (c *Cache) SetUser(ctx context.Context, user *model.User) error {
	key := userKey(user.ID)

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, userFields(user))
	pipe.Expire(ctx, key, c.userTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache user: %w", err)
	}

	return nil
}

func userKey(id int64) string {
	return userKeyPrefix + strconv.FormatInt(id, 10)
}

func userFields(user *model.User) map[string]any {
	return map[string]any{
		"id":         strconv.FormatInt(user.ID, 10),
		"username":   user.Username,
		"email":      user.Email,
		"created_at": user.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// userFromFields rebuilds a user from a Redis hash. A partial or corrupt hash
// is reported as ErrCacheMiss so callers fall back to the store.
func userFromFields(fields map[string]string) (*model.User, error) {
	id, err := strconv.ParseInt(fields["id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad id field", ErrCacheMiss)
	}

	username, email := fields["username"], fields["email"]
	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: incomplete entry", ErrCacheMiss)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("%w: bad created_at field", ErrCacheMiss)
	}

	return &model.User{
		ID:        id,
		Username:  username,
		Email:     email,
		CreatedAt: createdAt.UTC(),
	}, nil
}
