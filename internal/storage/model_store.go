package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/shinchan-op/SEBI-Hackathon/internal/model"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/redis"
)

// BundleStore implements model.BundleStore on the Redis cache.
// Redis가 비활성화된 배포에서는 조용한 no-op이 된다: 저장은 성공으로,
// 복원은 단순 부재로 처리되어 서비스는 메모리 레지스트리만으로 돈다.
type BundleStore struct {
	cache *redis.Cache
	log   zerolog.Logger
}

// NewBundleStore creates a Redis-backed bundle store.
func NewBundleStore(cache *redis.Cache, log zerolog.Logger) *BundleStore {
	return &BundleStore{
		cache: cache,
		log:   log.With().Str("component", "storage.bundle_store").Logger(),
	}
}

// Save persists the serialized bundle and records its key in the index set.
func (s *BundleStore) Save(ctx context.Context, b *model.Bundle) error {
	if err := s.cache.Set(ctx, redis.BundleKey(b.Key), b, redis.TTLForever); err != nil {
		return fmt.Errorf("persist bundle %s: %w", b.Key, err)
	}
	if err := s.cache.SetAdd(ctx, redis.BundleIndexKey(), b.Key); err != nil {
		return fmt.Errorf("index bundle %s: %w", b.Key, err)
	}

	s.log.Debug().Str("model_key", b.Key).Msg("bundle persisted to cache")
	return nil
}

// Load restores one bundle. (nil, false, nil) 은 단순 부재.
func (s *BundleStore) Load(ctx context.Context, key string) (*model.Bundle, bool, error) {
	var b model.Bundle
	found, err := s.cache.Get(ctx, redis.BundleKey(key), &b)
	if err != nil {
		return nil, false, fmt.Errorf("restore bundle %s: %w", key, err)
	}
	if !found {
		return nil, false, nil
	}
	return &b, true, nil
}

// Index lists the model keys that have a persisted bundle.
func (s *BundleStore) Index(ctx context.Context) ([]string, error) {
	keys, err := s.cache.SetMembers(ctx, redis.BundleIndexKey())
	if err != nil {
		return nil, fmt.Errorf("list bundle index: %w", err)
	}
	return keys, nil
}
