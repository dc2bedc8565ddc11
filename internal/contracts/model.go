package contracts

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ModelVersion 모델 스키마 버전. 피처 구성이 바뀌면 올린다.
const ModelVersion = "v1.0"

// KeyGeneral 전체 체결 이력으로 학습한 풀링 모델 키
const KeyGeneral = "general"

// ZScore95 95% 신뢰구간 z-score (mean ± 1.96σ)
const ZScore95 = 1.96

// KeyForBond 채권별 모델 키 결정
func KeyForBond(bondID int64) string {
	return fmt.Sprintf("bond_%d", bondID)
}

// BondIDFromKey recovers the bond id from a bond_<id> model key.
// general 키를 포함해 형식이 다른 키는 (0, false)를 반환한다.
func BondIDFromKey(key string) (int64, bool) {
	const prefix = "bond_"
	if !strings.HasPrefix(key, prefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(key[len(prefix):], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ModelKind 모델 계열 태그. 기여도 산출 방식을 결정한다.
type ModelKind string

const (
	// KindLinear 계수 기반 모델 (|coef| 정규화 기여도)
	KindLinear ModelKind = "linear"
	// KindOpaque 계수 없는 모델 (균등 폴백 기여도)
	KindOpaque ModelKind = "opaque"
)

// ModelMetrics 학습 시점에 기록된 성능 지표
type ModelMetrics struct {
	TrainR2      float64 `json:"train_r2"`
	TestR2       float64 `json:"test_r2"`
	MAE          float64 `json:"mae"`  // 홀드아웃 MAE
	RMSE         float64 `json:"rmse"` // 홀드아웃 RMSE
	TrainSamples int     `json:"train_samples"`
	TestSamples  int     `json:"test_samples"`
}

// PerformanceMap 모델 목록 응답용 지표 맵
func (m ModelMetrics) PerformanceMap() map[string]float64 {
	return map[string]float64{
		"mae":      m.MAE,
		"rmse":     m.RMSE,
		"r2":       m.TestR2,
		"train_r2": m.TrainR2,
	}
}

// PredictionResult T+7 가격 예측 응답
type PredictionResult struct {
	BondID            int64              `json:"bond_id"`
	T7PriceMean       float64            `json:"t7_price_mean"`
	T7Low             float64            `json:"t7_low"`
	T7High            float64            `json:"t7_high"`
	Confidence        float64            `json:"confidence"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
	ModelKey          string             `json:"model_key"` // 실제 사용된 모델 (폴백 시 general)
	ModelVersion      string             `json:"model_version"`
	PredictionTime    time.Time          `json:"prediction_timestamp"`
}

// ModelInfo 등록된 모델 요약
type ModelInfo struct {
	ModelID            string             `json:"model_id"`
	Version            string             `json:"version"`
	TrainingDate       time.Time          `json:"training_date"`
	PerformanceMetrics map[string]float64 `json:"performance_metrics"`
	FeatureCount       int                `json:"feature_count"`
}

// TrainingReport 학습 1회 실행 결과
type TrainingReport struct {
	ModelKey     string    `json:"model_key"`
	Samples      int       `json:"samples"` // 전체 행 수 (train + test)
	TrainSamples int       `json:"train_samples"`
	TestSamples  int       `json:"test_samples"`
	TrainR2      float64   `json:"train_r2"`
	TestR2       float64   `json:"test_r2"`
	MAE          float64   `json:"mae"`
	RMSE         float64   `json:"rmse"`
	TrainedAt    time.Time `json:"trained_at"`
}

// UncertaintyPolicy 예측 구간 폭과 신뢰도 산출 정책
// Sigma는 구간 반폭의 σ, Confidence는 응답에 실리는 신뢰도 값이다.
type UncertaintyPolicy interface {
	Sigma(m ModelMetrics) float64
	Confidence() float64
	AttributionFallback() float64
}

// FixedUncertainty 고정 σ/신뢰도 정책
type FixedUncertainty struct {
	SigmaValue      float64
	ConfidenceValue float64
	FallbackWeight  float64 // opaque 모델의 균등 기여도 값
}

func (p FixedUncertainty) Sigma(ModelMetrics) float64   { return p.SigmaValue }
func (p FixedUncertainty) Confidence() float64          { return p.ConfidenceValue }
func (p FixedUncertainty) AttributionFallback() float64 { return p.FallbackWeight }

// ResidualUncertainty 홀드아웃 RMSE를 σ로 쓰는 정책.
// RMSE가 기록되지 않은 번들은 FloorSigma로 내려간다.
type ResidualUncertainty struct {
	FloorSigma      float64
	ConfidenceValue float64
	FallbackWeight  float64
}

func (p ResidualUncertainty) Sigma(m ModelMetrics) float64 {
	if m.RMSE > 0 {
		return m.RMSE
	}
	return p.FloorSigma
}

func (p ResidualUncertainty) Confidence() float64          { return p.ConfidenceValue }
func (p ResidualUncertainty) AttributionFallback() float64 { return p.FallbackWeight }

// DefaultUncertainty 기본 정책 (σ=0.5, 신뢰도 0.85)
func DefaultUncertainty() FixedUncertainty {
	return FixedUncertainty{
		SigmaValue:      0.5,
		ConfidenceValue: 0.85,
		FallbackWeight:  0.5,
	}
}
