package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/okian/hireflow/internal/domain/model"
	"github.com/okian/hireflow/pkg/metrics"
)

// RedisStore keeps session candidates in Redis so several API replicas share
// one view. Values are JSON under prefix+id.
type RedisStore struct {
	client redis.UniversalClient
	opts   options
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient, opts ...Option) *RedisStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisStore{client: client, opts: o}
}

// DialRedis connects to addr and checks the connection.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: failed to connect to redis: %w", ErrStore, err)
	}
	return client, nil
}

func (s *RedisStore) key(id string) string {
	return s.opts.prefix + id
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, id string) (model.Candidate, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Candidate{}, ErrNotFound
	}
	if err != nil {
		return model.Candidate{}, fmt.Errorf("%w: get %s: %w", ErrStore, id, err)
	}
	var c model.Candidate
	if err := json.Unmarshal(raw, &c); err != nil {
		return model.Candidate{}, fmt.Errorf("%w: decode %s: %w", ErrStore, id, err)
	}
	return c, nil
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, c model.Candidate) error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrInvalidID
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrStore, c.ID, err)
	}
	if err := s.client.Set(ctx, s.key(c.ID), raw, s.opts.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %w", ErrStore, c.ID, err)
	}
	return nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: delete %s: %w", ErrStore, id, err)
	}
	return nil
}

// Count implements Store. It scans the key prefix, so it is meant for
// stats, not hot paths.
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n := 0
	iter := s.client.Scan(ctx, 0, s.opts.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("%w: scan: %w", ErrStore, err)
	}
	metrics.UpdateSessionCandidates(n)
	return n, nil
}
