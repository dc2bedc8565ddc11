package features

import (
	"fmt"
	"time"

	"github.com/shinchan-op/SEBI-Hackathon/internal/contracts"
)

// Feature keys
const (
	FeatCoupon             = "coupon"
	FeatRatingNumeric      = "rating_numeric"
	FeatIssueSize          = "issue_size"
	FeatDaysSinceLastTrade = "days_since_last_trade"
	FeatDaysToMaturity     = "days_to_maturity"
	FeatYield              = "yield"
	FeatVolatility7D       = "price_volatility_7d"
	FeatVolatility30D      = "price_volatility_30d"
	FeatMomentum7D         = "price_momentum_7d"
	FeatMomentum30D        = "price_momentum_30d"
	FeatMonth              = "month"
	FeatQuarter            = "quarter"
)

// canonicalOrder 피처 컬럼 순서
// ⭐ SSOT: 순서 정의는 여기서만. 번들에 기록되고 추론 시 그대로 재사용된다.
var canonicalOrder = []string{
	FeatCoupon,
	FeatRatingNumeric,
	FeatIssueSize,
	FeatDaysSinceLastTrade,
	FeatDaysToMaturity,
	FeatYield,
	FeatVolatility7D,
	FeatVolatility30D,
	FeatMomentum7D,
	FeatMomentum30D,
	FeatMonth,
	FeatQuarter,
}

// Ordering returns a copy of the canonical feature-column ordering.
func Ordering() []string {
	out := make([]string, len(canonicalOrder))
	copy(out, canonicalOrder)
	return out
}

// TrainingSet 학습용 피처 행렬과 타깃
type TrainingSet struct {
	X        [][]float64
	Y        []float64
	Ordering []string
}

// BuildTrainingSet engineers the feature matrix from trade history rows.
// rows는 executed_at 오름차순이어야 한다. 롤링 컬럼은 조회된
// 시퀀스 전체를 하나의 시계열로 보고 계산한다.
func BuildTrainingSet(rows []contracts.TradeRow) (*TrainingSet, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no trade rows to engineer features from")
	}

	prices := make([]float64, len(rows))
	for i, row := range rows {
		prices[i] = row.Price
	}

	vol7 := FillMissing(RollingStd(prices, 7))
	vol30 := FillMissing(RollingStd(prices, 30))
	mom7 := FillMissing(PctChange(prices, 7))
	mom30 := FillMissing(PctChange(prices, 30))

	x := make([][]float64, len(rows))
	y := make([]float64, len(rows))
	for i, row := range rows {
		values := map[string]float64{
			FeatCoupon:             row.Coupon,
			FeatRatingNumeric:      EncodeRating(row.Rating),
			FeatIssueSize:          row.IssueSize,
			FeatDaysSinceLastTrade: row.DaysSinceLastTrade,
			FeatDaysToMaturity:     row.DaysToMaturity,
			FeatYield:              yieldOf(row.Coupon, row.Price),
			FeatVolatility7D:       vol7[i],
			FeatVolatility30D:      vol30[i],
			FeatMomentum7D:         mom7[i],
			FeatMomentum30D:        mom30[i],
			FeatMonth:              float64(row.ExecutedAt.Month()),
			FeatQuarter:            quarterOf(row.ExecutedAt),
		}
		vec, err := Vector(values, canonicalOrder)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		x[i] = vec
		y[i] = row.Price
	}

	return &TrainingSet{X: x, Y: y, Ordering: Ordering()}, nil
}

// SnapshotFeatures engineers the inference feature map for a single bond.
// history는 최근 체결가 오름차순이며, 비어 있으면 롤링 피처는 0이 된다.
func SnapshotFeatures(snap *contracts.InstrumentSnapshot, history []contracts.PricePoint, now time.Time) map[string]float64 {
	prices := make([]float64, len(history))
	for i, p := range history {
		prices[i] = p.Price
	}

	return map[string]float64{
		FeatCoupon:             snap.Coupon,
		FeatRatingNumeric:      EncodeRating(snap.Rating),
		FeatIssueSize:          snap.IssueSize,
		FeatDaysSinceLastTrade: snap.DaysSinceLastTrade,
		FeatDaysToMaturity:     snap.MaturityDate.Sub(now).Hours() / 24,
		FeatYield:              yieldOf(snap.Coupon, snap.LastTradedPrice),
		FeatVolatility7D:       lastOrZero(FillMissing(RollingStd(prices, 7))),
		FeatVolatility30D:      lastOrZero(FillMissing(RollingStd(prices, 30))),
		FeatMomentum7D:         lastOrZero(FillMissing(PctChange(prices, 7))),
		FeatMomentum30D:        lastOrZero(FillMissing(PctChange(prices, 30))),
		FeatMonth:              float64(now.Month()),
		FeatQuarter:            quarterOf(now),
	}
}

// Vector assembles values into a positional vector following ordering.
// 키 누락/초과는 학습-추론 간 피처 드리프트이므로 에러로 드러낸다.
func Vector(values map[string]float64, ordering []string) ([]float64, error) {
	if len(values) != len(ordering) {
		return nil, fmt.Errorf("feature count mismatch: got %d values for %d columns", len(values), len(ordering))
	}
	vec := make([]float64, len(ordering))
	for i, key := range ordering {
		v, ok := values[key]
		if !ok {
			return nil, fmt.Errorf("feature %q missing from input", key)
		}
		vec[i] = v
	}
	return vec, nil
}

// yieldOf 쿠폰 수익률. 가격이 0 이하이면 0으로 처리한다.
func yieldOf(coupon, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return coupon / price * 100
}

func quarterOf(t time.Time) float64 {
	return float64((int(t.Month())-1)/3 + 1)
}
