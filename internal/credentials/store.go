// Package credentials issues the opaque bearer tokens handed to clients at
// register and login.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// ErrUnknownToken is returned for tokens that were never issued, expired or were revoked.
var ErrUnknownToken = errors.New("credentials: unknown token")

// TokenStore maps opaque tokens to user IDs
type TokenStore interface {
	Issue(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
}

// RedisTokenStore keeps tokens in Redis with a fixed lifetime
type RedisTokenStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisTokenStore(rdb *redis.Client, ttl time.Duration) *RedisTokenStore {
	return &RedisTokenStore{rdb: rdb, ttl: ttl}
}

// Issue stores a new token for userID
func (s *RedisTokenStore) Issue(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := s.rdb.Set(ctx, keyPrefix+token, userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("credentials: issue: %w", err)
	}
	return token, nil
}

// Resolve returns the user ID behind a token
func (s *RedisTokenStore) Resolve(ctx context.Context, token string) (string, error) {
	if _, err := uuid.Parse(token); err != nil {
		return "", ErrUnknownToken
	}

	userID, err := s.rdb.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrUnknownToken
	}
	if err != nil {
		return "", fmt.Errorf("credentials: resolve: %w", err)
	}
	return userID, nil
}

// Revoke deletes a token. Revoking an unknown token is not an error.
func (s *RedisTokenStore) Revoke(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("credentials: revoke: %w", err)
	}
	return nil
}
