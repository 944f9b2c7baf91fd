package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/juniorscv/auth-service/internal/ports"
	"github.com/redis/go-redis/v9"
)

// Connect initializes a Redis client from URL or host:port input.
// Supporting both formats keeps local/dev and container config paths simple.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			return nil, fmt.Errorf("parse redis url: %w", parseErr)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisAuthStateStore stores the short-lived OAuth state envelopes that tie a
// provider callback back to the login attempt that started it.
type RedisAuthStateStore struct {
	client *redis.Client
}

func NewRedisAuthStateStore(client *redis.Client) *RedisAuthStateStore {
	return &RedisAuthStateStore{client: client}
}

func stateKey(state string) string { return "auth:oauth:state:" + state }

func (s *RedisAuthStateStore) Put(ctx context.Context, state string, value ports.AuthState, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, stateKey(state), raw, ttl).Err()
}

func (s *RedisAuthStateStore) Get(ctx context.Context, state string) (*ports.AuthState, error) {
	raw, err := s.client.Get(ctx, stateKey(state)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var out ports.AuthState
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RedisAuthStateStore) Delete(ctx context.Context, state string) error {
	return s.client.Del(ctx, stateKey(state)).Err()
}
