package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores short-lived string values. Version/BumpVersion give each
// namespace a counter that callers mix into keys, so bumping it orphans
// every entry written under the previous version.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Version(ctx context.Context, namespace string) (int64, error)
	BumpVersion(ctx context.Context, namespace string) (int64, error)
	GenerateKey(namespace string, version int64, key string) string
}

type redisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache returns a Cache backed by client. A nil client yields a no-op cache.
func NewRedisCache(client *redis.Client, prefix string) Cache {
	if client == nil {
		return Nop{}
	}
	return &redisCache{client: client, prefix: prefix}
}

func (r *redisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCache) versionKey(namespace string) string {
	return fmt.Sprintf("%s:%s:version", r.prefix, namespace)
}

func (r *redisCache) Version(ctx context.Context, namespace string) (int64, error) {
	val, err := r.client.Get(ctx, r.versionKey(namespace)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

func (r *redisCache) BumpVersion(ctx context.Context, namespace string) (int64, error) {
	return r.client.Incr(ctx, r.versionKey(namespace)).Result()
}

func (r *redisCache) GenerateKey(namespace string, version int64, key string) string {
	return fmt.Sprintf("%s:%s:v%d:%s", r.prefix, namespace, version, key)
}

// Nop never stores anything. Every Get is a miss.
type Nop struct{}

func (Nop) Get(context.Context, string) (string, bool, error)              { return "", false, nil }
func (Nop) Set(context.Context, string, string, time.Duration) error       { return nil }
func (Nop) Version(context.Context, string) (int64, error)                 { return 0, nil }
func (Nop) BumpVersion(context.Context, string) (int64, error)             { return 0, nil }
func (Nop) GenerateKey(namespace string, version int64, key string) string { return "" }
