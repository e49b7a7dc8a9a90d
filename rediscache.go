package acestudy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const attemptKeyPrefix = "attempt:"

// RedisAttemptStore keeps attempts in Redis with a TTL, for deployments that
// run more than one web server
type RedisAttemptStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAttemptStore connects to addr and checks the connection
func NewRedisAttemptStore(ctx context.Context, addr string, ttl time.Duration) (*RedisAttemptStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return NewRedisAttemptStoreWithClient(client, ttl), nil
}

// NewRedisAttemptStoreWithClient wraps an existing client
func NewRedisAttemptStoreWithClient(client *redis.Client, ttl time.Duration) *RedisAttemptStore {
	return &RedisAttemptStore{client: client, ttl: ttl}
}

func (s *RedisAttemptStore) Create(ctx context.Context, a *Attempt) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal attempt: %w", err)
	}
	if err := s.client.Set(ctx, attemptKeyPrefix+a.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

func (s *RedisAttemptStore) Get(ctx context.Context, id string) (*Attempt, error) {
	data, err := s.client.Get(ctx, attemptKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrAttemptNotFound, id)
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	var a Attempt
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attempt: %w", err)
	}
	return &a, nil
}

// Save overwrites an existing attempt and keeps its expiry
func (s *RedisAttemptStore) Save(ctx context.Context, a *Attempt) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal attempt: %w", err)
	}
	ok, err := s.client.SetXX(ctx, attemptKeyPrefix+a.ID, data, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to save attempt: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrAttemptNotFound, a.ID)
	}
	return nil
}

func (s *RedisAttemptStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, attemptKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete attempt: %w", err)
	}
	return nil
}

func (s *RedisAttemptStore) Close() error {
	return s.client.Close()
}
