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
	"github.com/shinchan-op/SEBI-Hackathon/internal/model"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/config"
)

// fakeRepo serves canned trade history without a database
type fakeRepo struct {
	history   map[int64][]contracts.TradeRow
	pooled    []contracts.TradeRow
	fetchErr  error
	pooledErr error
}

func (f *fakeRepo) GetTradeHistory(ctx context.Context, bondID int64) ([]contracts.TradeRow, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.history[bondID], nil
}

func (f *fakeRepo) GetPooledTradeHistory(ctx context.Context) ([]contracts.TradeRow, error) {
	if f.pooledErr != nil {
		return nil, f.pooledErr
	}
	return f.pooled, nil
}

func (f *fakeRepo) GetInstrumentSnapshot(ctx context.Context, bondID int64) (*contracts.InstrumentSnapshot, error) {
	return nil, contracts.ErrInstrumentNotFound
}

func (f *fakeRepo) GetRecentPrices(ctx context.Context, bondID int64, limit int) ([]contracts.PricePoint, error) {
	return nil, nil
}

// fakeStore keeps bundles in memory and can be forced to fail
type fakeStore struct {
	saved      map[string]*model.Bundle
	saveErr    error
	loadErr    error
	indexErr   error
	indexExtra []string // 본체 없이 인덱스에만 남은 키
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[string]*model.Bundle)}
}

func (f *fakeStore) Save(ctx context.Context, b *model.Bundle) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[b.Key] = b
	return nil
}

func (f *fakeStore) Load(ctx context.Context, key string) (*model.Bundle, bool, error) {
	if f.loadErr != nil {
		return nil, false, f.loadErr
	}
	b, ok := f.saved[key]
	return b, ok, nil
}

func (f *fakeStore) Index(ctx context.Context) ([]string, error) {
	if f.indexErr != nil {
		return nil, f.indexErr
	}
	keys := make([]string, 0, len(f.saved)+len(f.indexExtra))
	for key := range f.saved {
		keys = append(keys, key)
	}
	return append(keys, f.indexExtra...), nil
}

// linearRows 가격이 선형으로 오르는 합성 체결 이력
func linearRows(bondID int64, n int, start, step float64) []contracts.TradeRow {
	base := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	rows := make([]contracts.TradeRow, n)
	for i := 0; i < n; i++ {
		rows[i] = contracts.TradeRow{
			BondID:             bondID,
			Coupon:             5.0,
			Rating:             "AA",
			IssueSize:          1_000_000_000,
			DaysSinceLastTrade: 1,
			Price:              start + step*float64(i),
			ExecutedAt:         base.AddDate(0, 0, i),
			DaysToMaturity:     1800 - float64(i),
		}
	}
	return rows
}

func testMLConfig() config.MLConfig {
	return config.MLConfig{
		Alpha:               1.0,
		TestRatio:           0.2,
		SplitSeed:           42,
		MinSamples:          10,
		Sigma:               0.5,
		Confidence:          0.85,
		AttributionFallback: 0.5,
		UncertaintyMode:     "fixed",
		SnapshotHistory:     30,
		RetrainSchedule:     "0 30 18 * * *",
		TrainRatePerSec:     2.0,
	}
}

func TestTrain_PerBondInstallsBundle(t *testing.T) {
	repo := &fakeRepo{history: map[int64][]contracts.TradeRow{
		101: linearRows(101, 40, 100, 0.5),
	}}
	store := newFakeStore()
	registry := model.NewRegistry(zerolog.Nop())
	trainer := New(repo, registry, store, testMLConfig(), zerolog.Nop())

	bondID := int64(101)
	report, err := trainer.Train(context.Background(), &bondID)
	require.NoError(t, err)

	assert.Equal(t, "bond_101", report.ModelKey)
	assert.Equal(t, 40, report.Samples)
	assert.Equal(t, 32, report.TrainSamples)
	assert.Equal(t, 8, report.TestSamples)

	// 잔존만기가 가격과 완전 선형이므로 홀드아웃에서도 잘 맞아야 한다
	assert.Greater(t, report.TestR2, 0.8)
	assert.Less(t, report.MAE, 2.0)

	bundle, ok := registry.Get("bond_101")
	require.True(t, ok)
	assert.Equal(t, contracts.KindLinear, bundle.Kind)
	assert.Equal(t, contracts.ModelVersion, bundle.Version)
	assert.Equal(t, features.Ordering(), bundle.Ordering)

	// 번들은 레지스트리 설치와 동시에 영속화된다
	_, persisted := store.saved["bond_101"]
	assert.True(t, persisted)
}

func TestTrain_PooledUsesGeneralKey(t *testing.T) {
	pooled := append(linearRows(101, 20, 100, 0.5), linearRows(202, 20, 95, 0.3)...)
	repo := &fakeRepo{pooled: pooled}
	store := newFakeStore()
	registry := model.NewRegistry(zerolog.Nop())
	trainer := New(repo, registry, store, testMLConfig(), zerolog.Nop())

	report, err := trainer.Train(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, contracts.KeyGeneral, report.ModelKey)
	assert.Equal(t, 40, report.Samples)

	_, ok := registry.Get(contracts.KeyGeneral)
	assert.True(t, ok)
}

func TestTrain_InsufficientHistory(t *testing.T) {
	repo := &fakeRepo{history: map[int64][]contracts.TradeRow{
		101: linearRows(101, 5, 100, 0.5), // MinSamples(10) 미달
	}}
	store := newFakeStore()
	registry := model.NewRegistry(zerolog.Nop())
	trainer := New(repo, registry, store, testMLConfig(), zerolog.Nop())

	bondID := int64(101)
	_, err := trainer.Train(context.Background(), &bondID)
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrNoTrainingData)

	// 실패한 학습은 레지스트리를 건드리지 않는다
	assert.Equal(t, 0, registry.Len())
	assert.Empty(t, store.saved)
}

func TestTrain_FetchErrorPropagates(t *testing.T) {
	dbErr := errors.New("connection refused")
	repo := &fakeRepo{fetchErr: dbErr}
	registry := model.NewRegistry(zerolog.Nop())
	trainer := New(repo, registry, newFakeStore(), testMLConfig(), zerolog.Nop())

	bondID := int64(101)
	_, err := trainer.Train(context.Background(), &bondID)
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, contracts.ErrNoTrainingData)
	assert.Equal(t, 0, registry.Len())
}

func TestTrain_PersistenceFailureNonFatal(t *testing.T) {
	repo := &fakeRepo{history: map[int64][]contracts.TradeRow{
		101: linearRows(101, 40, 100, 0.5),
	}}
	store := newFakeStore()
	store.saveErr = errors.New("redis down")
	registry := model.NewRegistry(zerolog.Nop())
	trainer := New(repo, registry, store, testMLConfig(), zerolog.Nop())

	bondID := int64(101)
	report, err := trainer.Train(context.Background(), &bondID)

	// 캐시가 죽어도 학습은 성공하고 메모리 서빙은 계속된다
	require.NoError(t, err)
	assert.Equal(t, "bond_101", report.ModelKey)

	_, ok := registry.Get("bond_101")
	assert.True(t, ok)
}

func TestTrain_RetrainReplacesBundle(t *testing.T) {
	repo := &fakeRepo{history: map[int64][]contracts.TradeRow{
		101: linearRows(101, 40, 100, 0.5),
	}}
	store := newFakeStore()
	registry := model.NewRegistry(zerolog.Nop())
	trainer := New(repo, registry, store, testMLConfig(), zerolog.Nop())

	bondID := int64(101)
	_, err := trainer.Train(context.Background(), &bondID)
	require.NoError(t, err)
	first, _ := registry.Get("bond_101")

	// 새 데이터로 재학습하면 같은 키의 번들이 통째로 교체된다
	repo.history[101] = linearRows(101, 60, 110, 0.4)
	_, err = trainer.Train(context.Background(), &bondID)
	require.NoError(t, err)

	second, ok := registry.Get("bond_101")
	require.True(t, ok)
	assert.NotSame(t, first, second)
	assert.Equal(t, 48, second.Metrics.TrainSamples)
	assert.Equal(t, 1, registry.Len())
}
