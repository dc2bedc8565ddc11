package model

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/shinchan-op/SEBI-Hackathon/internal/contracts"
)

// Registry is the in-process model registry serving live predictions
// ⭐ SSOT: 서빙 중 번들 보관은 여기서만. 교체는 포인터 스왑이라 원자적이다.
type Registry struct {
	mu      sync.RWMutex
	bundles map[string]*Bundle
	log     zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		bundles: make(map[string]*Bundle),
		log:     log.With().Str("component", "model.registry").Logger(),
	}
}

// Get retrieves the bundle installed under key.
func (r *Registry) Get(key string) (*Bundle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bundles[key]
	return b, ok
}

// Resolve applies the lookup policy: prefer key, fall back to fallback.
// 둘 다 없으면 호출자가 ErrModelUnavailable로 올려야 한다.
func (r *Registry) Resolve(key, fallback string) (*Bundle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if b, ok := r.bundles[key]; ok {
		return b, true
	}
	if b, ok := r.bundles[fallback]; ok {
		return b, true
	}
	return nil, false
}

// Install replaces any bundle under the same key.
func (r *Registry) Install(b *Bundle) {
	r.mu.Lock()
	r.bundles[b.Key] = b
	r.mu.Unlock()

	r.log.Info().
		Str("model_key", b.Key).
		Str("kind", string(b.Kind)).
		Int("feature_count", b.FeatureCount()).
		Float64("test_r2", b.Metrics.TestR2).
		Msg("model bundle installed")
}

// Keys returns installed model keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.bundles))
	for key := range r.bundles {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Infos returns model-listing summaries sorted by key.
func (r *Registry) Infos() []contracts.ModelInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.bundles))
	for key := range r.bundles {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	infos := make([]contracts.ModelInfo, 0, len(keys))
	for _, key := range keys {
		infos = append(infos, r.bundles[key].Info())
	}
	return infos
}

// Len returns the number of installed bundles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.bundles)
}
