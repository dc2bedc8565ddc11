package contracts

import "time"

// TradeRow 채권 체결 이력 한 건 (bonds 조인 포함)
// 학습 데이터셋의 원천 행이며 executed_at 오름차순으로 조회된다.
type TradeRow struct {
	BondID             int64     `json:"bond_id"`
	Coupon             float64   `json:"coupon"`
	Rating             string    `json:"rating"` // 신용등급 문자열 (AAA ~ BBB-)
	IssueSize          float64   `json:"issue_size"`
	DaysSinceLastTrade float64   `json:"days_since_last_trade"`
	Price              float64   `json:"price_per_unit"`
	ExecutedAt         time.Time `json:"executed_at"`
	DaysToMaturity     float64   `json:"days_to_maturity"` // 체결 시점 기준 잔존 일수
}

// InstrumentSnapshot 현재 시점의 채권 속성 (추론 입력)
type InstrumentSnapshot struct {
	BondID             int64     `json:"bond_id"`
	Coupon             float64   `json:"coupon"`
	Rating             string    `json:"rating"`
	IssueSize          float64   `json:"issue_size"`
	DaysSinceLastTrade float64   `json:"days_since_last_trade"`
	MaturityDate       time.Time `json:"maturity_date"`
	LastTradedPrice    float64   `json:"last_traded_price"`
}

// PricePoint 최근 체결가 한 점. 변동성/모멘텀 피처 보강에 쓰인다.
type PricePoint struct {
	Price      float64   `json:"price"`
	ExecutedAt time.Time `json:"executed_at"`
}
