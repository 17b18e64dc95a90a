package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// oauthStateKey is the Redis key prefix for OAuth CSRF states.
const oauthStateKey = "oauth:state:"

// RedisOAuthStateStore holds single-use OAuth states in Redis, keyed
// to the owner who started the consent flow.
type RedisOAuthStateStore struct {
	client *redis.Client
}

func NewRedisOAuthStateStore(client *redis.Client) *RedisOAuthStateStore {
	return &RedisOAuthStateStore{client: client}
}

func (s *RedisOAuthStateStore) StoreState(ctx context.Context, state string, userID uuid.UUID, ttl time.Duration) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if userID == uuid.Nil {
		return errors.New("userID cannot be nil")
	}

	if err := s.client.Set(ctx, oauthStateKey+state, userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("store oauth state: %w", err)
	}
	return nil
}

// ValidateState returns the owner who issued the state and deletes it,
// so a state can never be replayed.
func (s *RedisOAuthStateStore) ValidateState(ctx context.Context, state string) (uuid.UUID, error) {
	if state == "" {
		return uuid.Nil, errors.New("state cannot be empty")
	}

	userIDStr, err := s.client.GetDel(ctx, oauthStateKey+state).Result()
	if err == redis.Nil {
		return uuid.Nil, errors.New("state not found or expired")
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("validate oauth state: %w", err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id in state: %w", err)
	}
	return userID, nil
}
