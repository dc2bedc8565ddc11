package contracts

import "context"

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만

// BondRepository manages bond trade history and instrument snapshots
type BondRepository interface {
	// GetTradeHistory 특정 채권의 체결 이력 (executed_at 오름차순)
	GetTradeHistory(ctx context.Context, bondID int64) ([]TradeRow, error)
	// GetPooledTradeHistory 전 종목 체결 이력 (general 모델 학습용)
	GetPooledTradeHistory(ctx context.Context) ([]TradeRow, error)
	// GetInstrumentSnapshot 현재 채권 속성. 부재 시 ErrInstrumentNotFound 반환
	GetInstrumentSnapshot(ctx context.Context, bondID int64) (*InstrumentSnapshot, error)
	// GetRecentPrices 최근 체결가 limit건 (오름차순 정렬 반환)
	GetRecentPrices(ctx context.Context, bondID int64, limit int) ([]PricePoint, error)
}
