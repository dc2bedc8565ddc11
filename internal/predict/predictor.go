package predict

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/shinchan-op/SEBI-Hackathon/internal/contracts"
	"github.com/shinchan-op/SEBI-Hackathon/internal/features"
	"github.com/shinchan-op/SEBI-Hackathon/internal/model"
)

// Predictor serves T+7 price estimates from installed model bundles
// ⭐ SSOT: 예측 경로는 여기서만. Registry는 읽기 전용으로만 쓴다.
type Predictor struct {
	repo     contracts.BondRepository
	registry *model.Registry
	policy   contracts.UncertaintyPolicy
	historyN int
	now      func() time.Time
	log      zerolog.Logger
}

// New creates a predictor. historyN caps the trailing trades fetched to
// compute inference volatility/momentum features.
func New(repo contracts.BondRepository, registry *model.Registry, policy contracts.UncertaintyPolicy, historyN int, log zerolog.Logger) *Predictor {
	return &Predictor{
		repo:     repo,
		registry: registry,
		policy:   policy,
		historyN: historyN,
		now:      time.Now,
		log:      log.With().Str("component", "predict.predictor").Logger(),
	}
}

// Predict resolves a bond's model (per-bond first, general fallback),
// engineers the inference feature vector, and returns the point estimate
// with its 95% interval and normalized feature attribution.
func (p *Predictor) Predict(ctx context.Context, bondID int64) (*contracts.PredictionResult, error) {
	snap, err := p.repo.GetInstrumentSnapshot(ctx, bondID)
	if err != nil {
		return nil, err
	}

	// 최근 체결 이력은 best-effort 입력이다. 조회가 실패해도 롤링
	// 피처가 0으로 내려갈 뿐 예측은 계속된다.
	history, err := p.repo.GetRecentPrices(ctx, bondID, p.historyN)
	if err != nil {
		p.log.Warn().Err(err).Int64("bond_id", bondID).
			Msg("recent price lookup failed, rolling features fall back to defaults")
		history = nil
	}

	bundle, ok := p.registry.Resolve(contracts.KeyForBond(bondID), contracts.KeyGeneral)
	if !ok {
		return nil, contracts.ErrModelUnavailable
	}

	now := p.now()
	values := features.SnapshotFeatures(snap, history, now)

	// 번들에 기록된 컬럼 순서 그대로 조립해야 스케일러 평균/표준편차와
	// 회귀 계수가 제자리를 찾는다. 불일치는 여기서 에러로 끊긴다.
	vec, err := features.Vector(values, bundle.Ordering)
	if err != nil {
		return nil, fmt.Errorf("assemble features for %s: %w", bundle.Key, err)
	}
	scaled, err := bundle.Scaler.Transform(vec)
	if err != nil {
		return nil, fmt.Errorf("scale features for %s: %w", bundle.Key, err)
	}
	point, err := bundle.Model.Predict(scaled)
	if err != nil {
		return nil, fmt.Errorf("predict with %s: %w", bundle.Key, err)
	}

	sigma := p.policy.Sigma(bundle.Metrics)
	result := &contracts.PredictionResult{
		BondID:            bondID,
		T7PriceMean:       point,
		T7Low:             point - contracts.ZScore95*sigma,
		T7High:            point + contracts.ZScore95*sigma,
		Confidence:        p.policy.Confidence(),
		FeatureImportance: p.attribution(bundle),
		ModelKey:          bundle.Key,
		ModelVersion:      bundle.Version,
		PredictionTime:    now,
	}

	p.log.Debug().
		Int64("bond_id", bondID).
		Str("model_key", bundle.Key).
		Float64("t7_price_mean", point).
		Float64("sigma", sigma).
		Msg("prediction generated")

	return result, nil
}

// attribution maps each feature to |coefficient| normalized so the
// largest maps to 1.0. 계수가 없는 모델 계열은 균등 가중 폴백.
func (p *Predictor) attribution(b *model.Bundle) map[string]float64 {
	out := make(map[string]float64, len(b.Ordering))

	if b.Kind != contracts.KindLinear || b.Model == nil {
		weight := p.policy.AttributionFallback()
		for _, name := range b.Ordering {
			out[name] = weight
		}
		return out
	}

	var maxAbs float64
	for _, c := range b.Model.Coefs {
		if abs := math.Abs(c); abs > maxAbs {
			maxAbs = abs
		}
	}
	if maxAbs == 0 {
		maxAbs = 1
	}
	for i, name := range b.Ordering {
		out[name] = math.Abs(b.Model.Coefs[i]) / maxAbs
	}
	return out
}
