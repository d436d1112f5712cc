package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "portal:session:" // portal:session:{namespace}:{faculty_token|faculty_user}
	sessionTTL     = 24 * time.Hour
)

// RedisStore shares one faculty session between processes (CLI and bridge
// server) through Redis.
type RedisStore struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewRedisStore creates a store scoped to namespace. A zero ttl keeps the
// default of 24h; the server stays the authority on token expiry.
func NewRedisStore(client *redis.Client, namespace string, ttl time.Duration) *RedisStore {
	if namespace == "" {
		namespace = "default"
	}
	if ttl <= 0 {
		ttl = sessionTTL
	}
	return &RedisStore{client: client, namespace: namespace, ttl: ttl}
}

func (s *RedisStore) key(name string) string {
	return redisKeyPrefix + s.namespace + ":" + name
}

func (s *RedisStore) Token(ctx context.Context) (string, bool, error) {
	token, err := s.client.Get(ctx, s.key(TokenKey)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get token: %w", err)
	}
	return token, token != "", nil
}

func (s *RedisStore) User(ctx context.Context) (User, bool, error) {
	raw, err := s.client.Get(ctx, s.key(UserKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, fmt.Errorf("failed to get user: %w", err)
	}
	u, err := ParseUser(raw)
	if err != nil {
		return User{}, false, err
	}
	return u, true, nil
}

func (s *RedisStore) Save(ctx context.Context, sess Session) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(TokenKey), sess.Token, s.ttl)
	pipe.Set(ctx, s.key(UserKey), sess.User.profileBytes(), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key(TokenKey), s.key(UserKey)).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
