package training

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/shinchan-op/SEBI-Hackathon/internal/contracts"
	"github.com/shinchan-op/SEBI-Hackathon/internal/model"
)

// Bootstrap restores persisted bundles into the registry at startup and
// trains the pooled model from scratch when it cannot be restored.
// 복원 실패는 치명적이지 않다: 서비스는 콜드 스타트 후 학습으로 회복한다.
type Bootstrap struct {
	trainer  *Trainer
	registry *model.Registry
	store    model.BundleStore
	log      zerolog.Logger
}

// NewBootstrap creates the startup restore-or-train step.
func NewBootstrap(trainer *Trainer, registry *model.Registry, store model.BundleStore, log zerolog.Logger) *Bootstrap {
	return &Bootstrap{
		trainer:  trainer,
		registry: registry,
		store:    store,
		log:      log.With().Str("component", "training.bootstrap").Logger(),
	}
}

// Run loads every indexed bundle from the cache, then ensures the pooled
// model exists. 이력 자체가 없으면(ErrNoTrainingData) 모델 없이 뜨고,
// 첫 train 호출이 채운다. 적합 실패만 에러로 올라간다.
func (b *Bootstrap) Run(ctx context.Context) error {
	keys, err := b.store.Index(ctx)
	if err != nil {
		b.log.Warn().Err(err).Msg("bundle index unavailable, starting cold")
		keys = nil
	}

	restored := 0
	for _, key := range keys {
		bundle, found, err := b.store.Load(ctx, key)
		if err != nil {
			b.log.Warn().Err(err).Str("model_key", key).Msg("bundle restore failed")
			continue
		}
		if !found {
			// 인덱스에는 있는데 본체가 없다. 다음 학습이 다시 채운다.
			b.log.Warn().Str("model_key", key).Msg("indexed bundle missing from cache")
			continue
		}
		b.registry.Install(bundle)
		restored++
	}

	if _, ok := b.registry.Get(contracts.KeyGeneral); ok {
		b.log.Info().Int("restored", restored).Msg("model registry restored from cache")
		return nil
	}

	b.log.Info().Int("restored", restored).Msg("pooled model not in cache, training from scratch")
	if _, err := b.trainer.Train(ctx, nil); err != nil {
		if errors.Is(err, contracts.ErrNoTrainingData) {
			b.log.Warn().Msg("no trade history yet, starting without a pooled model")
			return nil
		}
		return fmt.Errorf("bootstrap pooled model: %w", err)
	}
	return nil
}
