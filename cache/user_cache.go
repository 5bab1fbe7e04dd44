package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Gin_postgres_redis_auth_service/models"

	"github.com/redis/go-redis/v9"
)

const userCacheTTL = 5 * time.Minute

// CachedUser is the read-model kept hot for the auth middleware. It never
// carries password or token material.
type CachedUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FullName      string `json:"fullName"`
	EmailVerified bool   `json:"emailVerified"`
}

type UserCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewUserCache(rdb *redis.Client) *UserCache {
	return &UserCache{rdb: rdb, ttl: userCacheTTL}
}

func userKey(id string) string { return fmt.Sprintf("user:%s", id) }

// Get returns the cached user or nil on a miss. Cache trouble is reported as
// a miss too; the durable store stays authoritative.
func (c *UserCache) Get(ctx context.Context, userID string) *CachedUser {
	b, err := c.rdb.Get(ctx, userKey(userID)).Bytes()
	if err != nil {
		return nil
	}
	var cu CachedUser
	if err := json.Unmarshal(b, &cu); err != nil {
		return nil
	}
	return &cu
}

func (c *UserCache) Set(ctx context.Context, u *models.User) {
	b, err := json.Marshal(CachedUser{
		ID:            u.ID,
		Email:         u.Email,
		FullName:      u.FullName,
		EmailVerified: u.EmailVerified,
	})
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, userKey(u.ID), b, c.ttl).Err()
}

func (c *UserCache) Invalidate(ctx context.Context, userID string) {
	_ = c.rdb.Del(ctx, userKey(userID)).Err()
}
