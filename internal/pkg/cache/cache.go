// Package cache is a small namespaced key/value store with expiry. Redis backs
// it in deployments; the in-memory store serves single-process setups and tests.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key does not exist or has expired.
var ErrMiss = errors.New("cache: key not found")

type Store interface {
	Set(ctx context.Context, namespace, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, namespace, key, value string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, namespace, key string) (string, error)
	GetDel(ctx context.Context, namespace, key string) (string, error)
	Delete(ctx context.Context, namespace, key string) error
}

func composeKey(namespace, key string) string {
	return namespace + ":" + key
}

type RedisStore struct {
	client redis.UniversalClient // works with both single and cluster
}

func NewRedis(addrs []string, password string) *RedisStore {
	var rdb redis.UniversalClient
	if len(addrs) > 1 {
		rdb = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    addrs,
			Password: password,
		})
	} else {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addrs[0],
			Password: password,
			DB:       0,
		})
	}
	return &RedisStore{client: rdb}
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (c *RedisStore) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisStore) Close() error {
	return c.client.Close()
}

func (c *RedisStore) Set(ctx context.Context, namespace, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, composeKey(namespace, key), value, ttl).Err()
}

func (c *RedisStore) SetNX(ctx context.Context, namespace, key, value string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, composeKey(namespace, key), value, ttl).Result()
}

func (c *RedisStore) Get(ctx context.Context, namespace, key string) (string, error) {
	v, err := c.client.Get(ctx, composeKey(namespace, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, err
}

func (c *RedisStore) GetDel(ctx context.Context, namespace, key string) (string, error) {
	v, err := c.client.GetDel(ctx, composeKey(namespace, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, err
}

func (c *RedisStore) Delete(ctx context.Context, namespace, key string) error {
	return c.client.Del(ctx, composeKey(namespace, key)).Err()
}

type entry struct {
	value     string
	expiresAt time.Time
}

type MemoryStore struct {
	mu    sync.Mutex
	items map[string]entry
	now   func() time.Time
}

func NewMemory() *MemoryStore {
	return &MemoryStore{items: map[string]entry{}, now: time.Now}
}

// lookup must be called with mu held.
func (m *MemoryStore) lookup(k string) (entry, bool) {
	e, ok := m.items[k]
	if !ok {
		return entry{}, false
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.items, k)
		return entry{}, false
	}
	return e, true
}

func (m *MemoryStore) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}

func (m *MemoryStore) Set(_ context.Context, namespace, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[composeKey(namespace, key)] = entry{value: value, expiresAt: m.expiry(ttl)}
	return nil
}

func (m *MemoryStore) SetNX(_ context.Context, namespace, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := composeKey(namespace, key)
	if _, ok := m.lookup(k); ok {
		return false, nil
	}
	m.items[k] = entry{value: value, expiresAt: m.expiry(ttl)}
	return true, nil
}

func (m *MemoryStore) Get(_ context.Context, namespace, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(composeKey(namespace, key))
	if !ok {
		return "", ErrMiss
	}
	return e.value, nil
}

func (m *MemoryStore) GetDel(_ context.Context, namespace, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := composeKey(namespace, key)
	e, ok := m.lookup(k)
	if !ok {
		return "", ErrMiss
	}
	delete(m.items, k)
	return e.value, nil
}

func (m *MemoryStore) Delete(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, composeKey(namespace, key))
	return nil
}
