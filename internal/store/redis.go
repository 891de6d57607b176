package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 200

// ParseRedisURL validates a Redis connection URL.
func ParseRedisURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// DialRedis connects to Redis/Dragonfly and returns a store under namespace.
func DialRedis(ctx context.Context, url, namespace string) (*RedisKV, error) {
	opts, err := ParseRedisURL(url)
	if err != nil {
		return nil, err
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}

	return NewRedisKV(client, namespace)
}

// RedisKV stores values as plain Redis strings. An optional namespace is
// prepended to every key so several planners can share one instance.
type RedisKV struct {
	client    *redis.Client
	namespace string
}

// NewRedisKV creates a Redis/Dragonfly-backed store.
func NewRedisKV(client *redis.Client, namespace string) (*RedisKV, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	return &RedisKV{client: client, namespace: namespace}, nil
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.client.Get(ctx, r.namespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrap("get", key, err)
	}
	return v, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	return wrap("set", key, r.client.Set(ctx, r.namespace+key, value, 0).Err())
}

func (r *RedisKV) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := r.scan(ctx, escapeGlob(r.namespace+prefix)+"*")
	if err != nil {
		return nil, wrap("keys", prefix, err)
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, r.namespace))
	}
	sort.Strings(out)
	return out, nil
}

// Reset deletes the planner's keys only: plan documents, completion sets,
// week reports and the class snapshot under the configured namespace.
func (r *RedisKV) Reset(ctx context.Context) error {
	ns := escapeGlob(r.namespace)
	patterns := []string{
		ns + planPrefix + "*",
		ns + completionPrefix + "*",
		ns + weekReportPrefix + "*",
	}
	keys := []string{r.namespace + ClassesKey}
	for _, p := range patterns {
		found, err := r.scan(ctx, p)
		if err != nil {
			return wrap("reset", "", err)
		}
		keys = append(keys, found...)
	}
	return wrap("reset", "", r.client.Del(ctx, keys...).Err())
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// escapeGlob quotes the SCAN MATCH metacharacters in s.
func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

func (r *RedisKV) scan(ctx context.Context, match string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := r.client.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

// HealthCheck verifies the Redis connection is alive.
func (r *RedisKV) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close shuts down the Redis client.
func (r *RedisKV) Close() error {
	return r.client.Close()
}
