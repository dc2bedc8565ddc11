package training

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/shinchan-op/SEBI-Hackathon/internal/contracts"
	"github.com/shinchan-op/SEBI-Hackathon/internal/features"
	"github.com/shinchan-op/SEBI-Hackathon/internal/ml"
	"github.com/shinchan-op/SEBI-Hackathon/internal/model"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/config"
)

// Trainer 학습 파이프라인: 조회 → 피처 → 분할 → 스케일 → 적합 → 평가 → 설치 → 영속화
// ⭐ SSOT: 모델 적합과 번들 설치는 여기서만. Registry는 Install 한 번으로만 바뀐다.
type Trainer struct {
	repo     contracts.BondRepository
	registry *model.Registry
	store    model.BundleStore
	cfg      config.MLConfig
	log      zerolog.Logger
}

// New creates a trainer bound to one registry and bundle store.
func New(repo contracts.BondRepository, registry *model.Registry, store model.BundleStore, cfg config.MLConfig, log zerolog.Logger) *Trainer {
	return &Trainer{
		repo:     repo,
		registry: registry,
		store:    store,
		cfg:      cfg,
		log:      log.With().Str("component", "training.trainer").Logger(),
	}
}

// Train fits a model for one bond, or the pooled general model when
// bondID is nil, and installs the resulting bundle.
//
// 표본 미달이면 contracts.ErrNoTrainingData로 끝나며 Registry는 건드리지
// 않는다. 적합 자체의 실패는 contracts.ErrTrainingFailed로 올라간다.
// 캐시 영속화 실패는 경고 로그로 끝난다 — 메모리 서빙에는 영향이 없다.
func (t *Trainer) Train(ctx context.Context, bondID *int64) (*contracts.TrainingReport, error) {
	key := contracts.KeyGeneral
	var rows []contracts.TradeRow
	var err error

	if bondID != nil {
		key = contracts.KeyForBond(*bondID)
		rows, err = t.repo.GetTradeHistory(ctx, *bondID)
	} else {
		rows, err = t.repo.GetPooledTradeHistory(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch trade history for %s: %w", key, err)
	}

	if len(rows) < t.cfg.MinSamples {
		t.log.Warn().
			Str("model_key", key).
			Int("rows", len(rows)).
			Int("min_samples", t.cfg.MinSamples).
			Msg("not enough trade history to train")
		return nil, fmt.Errorf("%s: %d rows, need at least %d: %w",
			key, len(rows), t.cfg.MinSamples, contracts.ErrNoTrainingData)
	}

	set, err := features.BuildTrainingSet(rows)
	if err != nil {
		return nil, fmt.Errorf("engineer features for %s (%v): %w", key, err, contracts.ErrTrainingFailed)
	}

	trainIdx, testIdx := ml.Split(len(set.X), t.cfg.TestRatio, t.cfg.SplitSeed)
	xTrain, yTrain := ml.Take(set.X, set.Y, trainIdx)
	xTest, yTest := ml.Take(set.X, set.Y, testIdx)

	// 스케일러는 학습 분할에서만 적합한다. 홀드아웃이 평균/분산에
	// 섞이면 평가가 낙관으로 기운다(누설).
	scaler, err := ml.FitScaler(xTrain)
	if err != nil {
		return nil, fmt.Errorf("fit scaler for %s (%v): %w", key, err, contracts.ErrTrainingFailed)
	}
	scaledTrain, err := scaler.TransformMatrix(xTrain)
	if err != nil {
		return nil, fmt.Errorf("scale training partition for %s (%v): %w", key, err, contracts.ErrTrainingFailed)
	}
	scaledTest, err := scaler.TransformMatrix(xTest)
	if err != nil {
		return nil, fmt.Errorf("scale holdout partition for %s (%v): %w", key, err, contracts.ErrTrainingFailed)
	}

	ridge, err := ml.FitRidge(scaledTrain, yTrain, t.cfg.Alpha)
	if err != nil {
		return nil, fmt.Errorf("fit ridge for %s (%v): %w", key, err, contracts.ErrTrainingFailed)
	}

	trainPred, err := ridge.PredictBatch(scaledTrain)
	if err != nil {
		return nil, fmt.Errorf("evaluate training partition for %s (%v): %w", key, err, contracts.ErrTrainingFailed)
	}
	testPred, err := ridge.PredictBatch(scaledTest)
	if err != nil {
		return nil, fmt.Errorf("evaluate holdout partition for %s (%v): %w", key, err, contracts.ErrTrainingFailed)
	}

	metrics := contracts.ModelMetrics{
		TrainR2:      ml.RSquared(trainPred, yTrain),
		TestR2:       ml.RSquared(testPred, yTest),
		MAE:          ml.MAE(testPred, yTest),
		RMSE:         ml.RMSE(testPred, yTest),
		TrainSamples: len(trainIdx),
		TestSamples:  len(testIdx),
	}

	bundle := &model.Bundle{
		Key:       key,
		Kind:      contracts.KindLinear,
		Version:   contracts.ModelVersion,
		Model:     ridge,
		Scaler:    scaler,
		Ordering:  set.Ordering,
		TrainedAt: time.Now(),
		Metrics:   metrics,
	}
	t.registry.Install(bundle)

	if err := t.store.Save(ctx, bundle); err != nil {
		// 영속화 실패는 재시작 복원만 잃는다. 서빙은 계속된다.
		t.log.Warn().Err(err).Str("model_key", key).Msg("bundle persistence failed")
	}

	t.log.Info().
		Str("model_key", key).
		Int("samples", len(rows)).
		Float64("train_r2", metrics.TrainR2).
		Float64("test_r2", metrics.TestR2).
		Float64("rmse", metrics.RMSE).
		Msg("model trained")

	return &contracts.TrainingReport{
		ModelKey:     key,
		Samples:      len(rows),
		TrainSamples: metrics.TrainSamples,
		TestSamples:  metrics.TestSamples,
		TrainR2:      metrics.TrainR2,
		TestR2:       metrics.TestR2,
		MAE:          metrics.MAE,
		RMSE:         metrics.RMSE,
		TrainedAt:    bundle.TrainedAt,
	}, nil
}
