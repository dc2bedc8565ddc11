package jobs

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/shinchan-op/SEBI-Hackathon/internal/contracts"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/config"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/logger"
)

// ModelTrainer retrains the model identified by bondID
// (nil bondID retrains the pooled model).
type ModelTrainer interface {
	Train(ctx context.Context, bondID *int64) (*contracts.TrainingReport, error)
}

// ModelKeyLister lists the keys of the currently installed models.
type ModelKeyLister interface {
	Keys() []string
}

// RetrainJob refreshes all installed models on recent trade data
// Schedule: 6:30 PM daily (after trade settlement)
type RetrainJob struct {
	trainer  ModelTrainer
	registry ModelKeyLister
	limiter  *rate.Limiter
	schedule string
	logger   *logger.Logger
}

// NewRetrainJob creates a new retrain job
func NewRetrainJob(trainer ModelTrainer, registry ModelKeyLister, cfg config.MLConfig, log *logger.Logger) *RetrainJob {
	return &RetrainJob{
		trainer:  trainer,
		registry: registry,
		limiter:  rate.NewLimiter(rate.Limit(cfg.TrainRatePerSec), 1),
		schedule: cfg.RetrainSchedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *RetrainJob) Name() string {
	return "model_retraining"
}

// Schedule returns the cron schedule (with seconds)
func (j *RetrainJob) Schedule() string {
	return j.schedule
}

// Run retrains the pooled model first, then every installed per-bond model
func (j *RetrainJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled model retraining")

	// ===== 1. Pooled Model =====
	// 풀링 모델부터 갱신 (개별 모델의 폴백이므로 항상 최신 유지)
	if _, err := j.trainer.Train(ctx, nil); err != nil {
		if errors.Is(err, contracts.ErrNoTrainingData) {
			j.logger.Info("No trade history available, skipping retraining cycle")
			return nil
		}
		return fmt.Errorf("retrain pooled model: %w", err)
	}

	// ===== 2. Per-Bond Models =====
	// 이미 설치된 개별 모델만 갱신 (새 종목은 학습 API로 추가)
	var refreshed, failed int
	for _, key := range j.registry.Keys() {
		bondID, ok := contracts.BondIDFromKey(key)
		if !ok {
			continue
		}

		// DB 부하 방지를 위한 속도 제한
		if err := j.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait: %w", err)
		}

		if _, err := j.trainer.Train(ctx, &bondID); err != nil {
			// 개별 실패는 사이클을 중단하지 않음 (기존 모델 유지)
			failed++
			j.logger.WithFields(map[string]interface{}{
				"bond_id": bondID,
				"error":   err.Error(),
			}).Warn("Per-bond model retraining failed")
			continue
		}
		refreshed++
	}

	j.logger.WithFields(map[string]interface{}{
		"refreshed": refreshed,
		"failed":    failed,
	}).Info("Model retraining completed")

	return nil
}
