package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache provides typed caching utilities
// ⭐ SSOT: 캐시 헬퍼는 여기서만
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

// Get retrieves a cached value. The second return reports whether the key was found.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	fullKey := fmt.Sprintf("%s:cache:%s", c.prefix, key)
	data, err := c.client.Redis().Get(ctx, fullKey).Bytes()
	if err != nil {
		// Key not found is not an error
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL. A zero TTL stores without expiry.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	fullKey := fmt.Sprintf("%s:cache:%s", c.prefix, key)
	return c.client.Redis().Set(ctx, fullKey, data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}

	fullKey := fmt.Sprintf("%s:cache:%s", c.prefix, key)
	return c.client.Redis().Del(ctx, fullKey).Err()
}

// SetAdd adds members to a set key. SADD is atomic, so concurrent
// writers never lose each other's members.
func (c *Cache) SetAdd(ctx context.Context, key string, members ...string) error {
	if !c.client.Enabled() || len(members) == 0 {
		return nil
	}

	fullKey := fmt.Sprintf("%s:cache:%s", c.prefix, key)
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return c.client.Redis().SAdd(ctx, fullKey, args...).Err()
}

// SetMembers returns all members of a set key. A missing key yields an empty slice.
func (c *Cache) SetMembers(ctx context.Context, key string) ([]string, error) {
	if !c.client.Enabled() {
		return nil, nil
	}

	fullKey := fmt.Sprintf("%s:cache:%s", c.prefix, key)
	return c.client.Redis().SMembers(ctx, fullKey).Result()
}

// Predefined TTLs
const (
	// TTLForever 모델 번들은 다음 학습이 덮어쓸 때까지 유지
	TTLForever = 0 * time.Second
	// TTLShort 조회 응답 캐시
	TTLShort = 1 * time.Minute
)

// Common cache key generators

// BundleKey is the cache key for one serialized model bundle
func BundleKey(modelKey string) string {
	return fmt.Sprintf("ml:bundle:%s", modelKey)
}

// BundleIndexKey is the set of model keys with a persisted bundle
func BundleIndexKey() string {
	return "ml:bundle:index"
}
