// Package state stores short-lived OAuth CSRF state in Redis. The native
// key TTL replaces manual expiry bookkeeping; an expired state simply stops
// existing.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
	"github.com/CampusStoresCanada/csc-institution-management/internal/ports"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "oauth_state:"

// RedisStore implements ports.StateStore on a Redis connection.
type RedisStore struct {
	client *redis.Client
	logger zerolog.Logger
}

var _ ports.StateStore = (*RedisStore)(nil)

// NewRedisStore creates a store from a Redis URL
// (redis://[user:pass@]host:port/db).
func NewRedisStore(redisURL string, logger zerolog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return &RedisStore{client: redis.NewClient(opts), logger: logger}, nil
}

func (s *RedisStore) Save(ctx context.Context, state string, value domain.OAuthState, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode oauth state: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+state, payload, ttl).Err(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to save OAuth state")
		return fmt.Errorf("oauth state save: %w", domain.ErrUpstreamUnavailable)
	}
	return nil
}

// Take fetches and deletes the state atomically so a code can be bound to
// its state exactly once. Absent or expired states return nil.
func (s *RedisStore) Take(ctx context.Context, state string) (*domain.OAuthState, error) {
	payload, err := s.client.GetDel(ctx, keyPrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read OAuth state")
		return nil, fmt.Errorf("oauth state read: %w", domain.ErrUpstreamUnavailable)
	}
	var value domain.OAuthState
	if err := json.Unmarshal([]byte(payload), &value); err != nil {
		return nil, fmt.Errorf("failed to decode oauth state: %w", err)
	}
	return &value, nil
}
