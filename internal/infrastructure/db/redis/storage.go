package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanadcare/admin-console/internal/core/ports"
)

const keyPrefix = "console:session:"

// StorageProvider keeps each browser's storage scope in one Redis hash.
// Key format: console:session:<session_id>
//
// Every read or write slides the hash's expiry forward by ttl, so idle
// browsers lose their scope after ttl without activity.
type StorageProvider struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.StorageProvider = (*StorageProvider)(nil)

// NewStorageProvider wraps client. A non-positive ttl disables expiry.
func NewStorageProvider(client *redis.Client, ttl time.Duration) *StorageProvider {
	return &StorageProvider{client: client, ttl: ttl}
}

// Scope returns the storage of sessionID.
func (p *StorageProvider) Scope(sessionID string) ports.Storage {
	return &Storage{client: p.client, key: keyPrefix + sessionID, ttl: p.ttl}
}

// Storage is one browser's scope.
type Storage struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func (s *Storage) All(ctx context.Context) (map[string]string, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("storage all: %w", err)
	}
	if len(values) > 0 {
		s.touch(ctx)
	}
	return values, nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.HGet(ctx, s.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage get %s: %w", key, err)
	}
	return v, true, nil
}

// Set writes all values in one transaction and refreshes the expiry.
func (s *Storage) Set(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key, values)
		if s.ttl > 0 {
			pipe.Expire(ctx, s.key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("storage set: %w", err)
	}
	return nil
}

func (s *Storage) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, s.key, keys...).Err(); err != nil {
		return fmt.Errorf("storage remove: %w", err)
	}
	return nil
}

func (s *Storage) touch(ctx context.Context) {
	if s.ttl > 0 {
		_ = s.client.Expire(ctx, s.key, s.ttl).Err()
	}
}
