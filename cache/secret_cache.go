package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"Gin_postgres_redis_auth_service/common"

	"github.com/redis/go-redis/v9"
)

// Payload is the record shape stored by a SecretCache. SecretValue returns
// the one-time code or token so the cache can address the secret-keyed copy.
type Payload interface {
	SecretValue() string
}

// SecretCache is a time-boxed store for one-time secrets, written under two
// independent keys: by owning user id and by the secret itself. The first
// serves "invalidate whatever is pending for this user", the second serves
// public completion endpoints where only the secret is known.
//
// The dual write goes through one pipeline but is not a cross-key
// transaction; a torn pair just misses on the unwritten key and is reclaimed
// by TTL.
type SecretCache[T Payload] struct {
	rdb       *redis.Client
	prefix    string
	secretTag string
	ttl       time.Duration
}

func newSecretCache[T Payload](rdb *redis.Client, prefix, secretTag string, ttl time.Duration) *SecretCache[T] {
	return &SecretCache[T]{rdb: rdb, prefix: prefix, secretTag: secretTag, ttl: ttl}
}

func (c *SecretCache[T]) subjectKey(userID string) string {
	return fmt.Sprintf("%s:user:%s", c.prefix, userID)
}

func (c *SecretCache[T]) secretKey(secret string) string {
	return fmt.Sprintf("%s:%s:%s", c.prefix, c.secretTag, secret)
}

// TTL reports the configured lifetime of a record.
func (c *SecretCache[T]) TTL() time.Duration { return c.ttl }

// Set writes both keyed copies with the cache's TTL.
func (c *SecretCache[T]) Set(ctx context.Context, userID string, payload T) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal secret payload: %w", err)
	}
	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, c.subjectKey(userID), b, c.ttl)
	pipe.Set(ctx, c.secretKey(payload.SecretValue()), b, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransientIO, err)
	}
	return nil
}

// GetBySecret returns the record stored under the secret, or ok=false if
// there is none. Absence is not an error.
func (c *SecretCache[T]) GetBySecret(ctx context.Context, secret string) (T, bool, error) {
	return c.get(ctx, c.secretKey(secret))
}

// GetBySubject returns the record stored under the user id, or ok=false.
func (c *SecretCache[T]) GetBySubject(ctx context.Context, userID string) (T, bool, error) {
	return c.get(ctx, c.subjectKey(userID))
}

func (c *SecretCache[T]) get(ctx context.Context, key string) (T, bool, error) {
	var payload T
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return payload, false, nil
	}
	if err != nil {
		return payload, false, fmt.Errorf("%w: %v", common.ErrTransientIO, err)
	}
	if err := json.Unmarshal(b, &payload); err != nil {
		return payload, false, fmt.Errorf("unmarshal secret payload: %w", err)
	}
	return payload, true, nil
}

// Invalidate removes both keyed copies.
func (c *SecretCache[T]) Invalidate(ctx context.Context, userID, secret string) error {
	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, c.subjectKey(userID))
	pipe.Del(ctx, c.secretKey(secret))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransientIO, err)
	}
	return nil
}

// InvalidateBySubject drops the user's current record, if any, through the
// secret recorded in its payload. No-op when nothing is pending.
func (c *SecretCache[T]) InvalidateBySubject(ctx context.Context, userID string) error {
	payload, ok, err := c.GetBySubject(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return c.Invalidate(ctx, userID, payload.SecretValue())
}
