package model

import (
	"time"

	"github.com/shinchan-op/SEBI-Hackathon/internal/contracts"
	"github.com/shinchan-op/SEBI-Hackathon/internal/ml"
)

// Bundle 학습 산출물 단위: 모델, 스케일러, 피처 컬럼 순서.
// 설치 이후에는 불변으로 취급한다. 재학습은 새 번들 교체로만 반영된다.
type Bundle struct {
	Key       string                 `json:"key"`
	Kind      contracts.ModelKind    `json:"kind"`
	Version   string                 `json:"version"`
	Model     *ml.Ridge              `json:"model"`
	Scaler    *ml.StandardScaler     `json:"scaler"`
	Ordering  []string               `json:"feature_columns"`
	TrainedAt time.Time              `json:"trained_at"`
	Metrics   contracts.ModelMetrics `json:"metrics"`
}

// FeatureCount returns the width of the fitted feature space.
func (b *Bundle) FeatureCount() int {
	return len(b.Ordering)
}

// Info converts the bundle into its model-listing summary.
func (b *Bundle) Info() contracts.ModelInfo {
	return contracts.ModelInfo{
		ModelID:            b.Key,
		Version:            b.Version,
		TrainingDate:       b.TrainedAt,
		PerformanceMetrics: b.Metrics.PerformanceMap(),
		FeatureCount:       b.FeatureCount(),
	}
}
