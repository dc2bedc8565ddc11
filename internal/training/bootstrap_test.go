package training

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinchan-op/SEBI-Hackathon/internal/contracts"
	"github.com/shinchan-op/SEBI-Hackathon/internal/features"
	"github.com/shinchan-op/SEBI-Hackathon/internal/ml"
	"github.com/shinchan-op/SEBI-Hackathon/internal/model"
)

// storedBundle 캐시에서 복원된 것처럼 쓸 최소 번들
func storedBundle(key string) *model.Bundle {
	ordering := features.Ordering()
	n := len(ordering)
	stds := make([]float64, n)
	for i := range stds {
		stds[i] = 1
	}
	return &model.Bundle{
		Key:       key,
		Kind:      contracts.KindLinear,
		Version:   contracts.ModelVersion,
		Model:     &ml.Ridge{Alpha: 1, Intercept: 100, Coefs: make([]float64, n)},
		Scaler:    &ml.StandardScaler{Means: make([]float64, n), Stds: stds},
		Ordering:  ordering,
		TrainedAt: time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC),
		Metrics:   contracts.ModelMetrics{TestR2: 0.9, RMSE: 0.4, TrainSamples: 32, TestSamples: 8},
	}
}

func TestBootstrapRun_RestoresFromStore(t *testing.T) {
	store := newFakeStore()
	store.saved[contracts.KeyGeneral] = storedBundle(contracts.KeyGeneral)
	store.saved["bond_101"] = storedBundle("bond_101")

	// 복원이 되면 학습은 돌지 않아야 한다. 풀링 조회가 에러를 내게
	// 해두면 학습이 호출됐을 때 Run이 실패하므로 그걸로 검증한다.
	repo := &fakeRepo{pooledErr: errors.New("must not be called")}
	registry := model.NewRegistry(zerolog.Nop())
	trainer := New(repo, registry, store, testMLConfig(), zerolog.Nop())
	boot := NewBootstrap(trainer, registry, store, zerolog.Nop())

	err := boot.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, registry.Len())
	_, ok := registry.Get(contracts.KeyGeneral)
	assert.True(t, ok)
	_, ok = registry.Get("bond_101")
	assert.True(t, ok)
}

func TestBootstrapRun_TrainsColdWhenStoreEmpty(t *testing.T) {
	store := newFakeStore()
	repo := &fakeRepo{pooled: linearRows(101, 40, 100, 0.5)}
	registry := model.NewRegistry(zerolog.Nop())
	trainer := New(repo, registry, store, testMLConfig(), zerolog.Nop())
	boot := NewBootstrap(trainer, registry, store, zerolog.Nop())

	err := boot.Run(context.Background())
	require.NoError(t, err)

	_, ok := registry.Get(contracts.KeyGeneral)
	assert.True(t, ok)
	_, persisted := store.saved[contracts.KeyGeneral]
	assert.True(t, persisted)
}

func TestBootstrapRun_NoTradeHistoryStartsEmpty(t *testing.T) {
	// 거래 이력 자체가 없으면 모델 없이 기동하고 첫 학습 요청이 채운다
	store := newFakeStore()
	repo := &fakeRepo{}
	registry := model.NewRegistry(zerolog.Nop())
	trainer := New(repo, registry, store, testMLConfig(), zerolog.Nop())
	boot := NewBootstrap(trainer, registry, store, zerolog.Nop())

	err := boot.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, registry.Len())
}

func TestBootstrapRun_IndexFailureFallsBackToTraining(t *testing.T) {
	store := newFakeStore()
	store.indexErr = errors.New("redis down")
	repo := &fakeRepo{pooled: linearRows(101, 40, 100, 0.5)}
	registry := model.NewRegistry(zerolog.Nop())
	trainer := New(repo, registry, store, testMLConfig(), zerolog.Nop())
	boot := NewBootstrap(trainer, registry, store, zerolog.Nop())

	err := boot.Run(context.Background())
	require.NoError(t, err)

	_, ok := registry.Get(contracts.KeyGeneral)
	assert.True(t, ok)
}

func TestBootstrapRun_SkipsMissingIndexedBundle(t *testing.T) {
	store := newFakeStore()
	store.saved[contracts.KeyGeneral] = storedBundle(contracts.KeyGeneral)
	store.indexExtra = []string{"bond_101"} // 인덱스에는 있지만 본체가 사라진 키

	repo := &fakeRepo{pooledErr: errors.New("must not be called")}
	registry := model.NewRegistry(zerolog.Nop())
	trainer := New(repo, registry, store, testMLConfig(), zerolog.Nop())
	boot := NewBootstrap(trainer, registry, store, zerolog.Nop())

	err := boot.Run(context.Background())
	require.NoError(t, err)

	// general만 살아나고 사라진 키는 조용히 넘어간다
	_, ok := registry.Get(contracts.KeyGeneral)
	assert.True(t, ok)
	assert.Equal(t, 1, registry.Len())
}
