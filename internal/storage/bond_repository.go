package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shinchan-op/SEBI-Hackathon/internal/contracts"
)

// BondRepository implements contracts.BondRepository on PostgreSQL
// ⭐ SSOT: 채권/체결 데이터 조회는 여기서만. 테이블은 마켓플레이스 백엔드 소유(읽기 전용).
type BondRepository struct {
	pool *pgxpool.Pool
}

// NewBondRepository creates a new bond repository
func NewBondRepository(pool *pgxpool.Pool) *BondRepository {
	return &BondRepository{pool: pool}
}

// GetTradeHistory retrieves the trade history for one bond joined with
// its attributes. 행은 executed_at 오름차순으로 반환된다.
func (r *BondRepository) GetTradeHistory(ctx context.Context, bondID int64) ([]contracts.TradeRow, error) {
	query := `
		SELECT
			t.bond_id,
			b.coupon,
			b.rating,
			COALESCE(b.issue_size, 0),
			b.days_since_last_trade,
			t.price_per_unit,
			t.executed_at,
			EXTRACT(EPOCH FROM (b.maturity_date - t.executed_at)) / 86400 AS days_to_maturity
		FROM trades t
		JOIN bonds b ON t.bond_id = b.id
		WHERE t.bond_id = $1
		ORDER BY t.executed_at
	`

	rows, err := r.pool.Query(ctx, query, bondID)
	if err != nil {
		return nil, fmt.Errorf("query trade history for bond %d: %w", bondID, err)
	}
	defer rows.Close()

	return scanTradeRows(rows)
}

// GetPooledTradeHistory retrieves the full trade pool for the general model.
func (r *BondRepository) GetPooledTradeHistory(ctx context.Context) ([]contracts.TradeRow, error) {
	query := `
		SELECT
			t.bond_id,
			b.coupon,
			b.rating,
			COALESCE(b.issue_size, 0),
			b.days_since_last_trade,
			t.price_per_unit,
			t.executed_at,
			EXTRACT(EPOCH FROM (b.maturity_date - t.executed_at)) / 86400 AS days_to_maturity
		FROM trades t
		JOIN bonds b ON t.bond_id = b.id
		ORDER BY t.executed_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query pooled trade history: %w", err)
	}
	defer rows.Close()

	return scanTradeRows(rows)
}

func scanTradeRows(rows pgx.Rows) ([]contracts.TradeRow, error) {
	var out []contracts.TradeRow
	for rows.Next() {
		var row contracts.TradeRow
		if err := rows.Scan(
			&row.BondID, &row.Coupon, &row.Rating, &row.IssueSize,
			&row.DaysSinceLastTrade, &row.Price, &row.ExecutedAt, &row.DaysToMaturity,
		); err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetInstrumentSnapshot retrieves the current attributes of one bond.
// 부재는 contracts.ErrInstrumentNotFound로 구분한다.
func (r *BondRepository) GetInstrumentSnapshot(ctx context.Context, bondID int64) (*contracts.InstrumentSnapshot, error) {
	query := `
		SELECT id, coupon, rating, COALESCE(issue_size, 0),
		       days_since_last_trade, maturity_date, last_traded_price
		FROM bonds
		WHERE id = $1
	`

	var snap contracts.InstrumentSnapshot
	err := r.pool.QueryRow(ctx, query, bondID).Scan(
		&snap.BondID, &snap.Coupon, &snap.Rating, &snap.IssueSize,
		&snap.DaysSinceLastTrade, &snap.MaturityDate, &snap.LastTradedPrice,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("bond %d: %w", bondID, contracts.ErrInstrumentNotFound)
		}
		return nil, fmt.Errorf("query snapshot for bond %d: %w", bondID, err)
	}
	return &snap, nil
}

// GetRecentPrices retrieves up to limit most recent executed prices,
// returned in executed_at ascending order so rolling features can be
// computed over them directly.
func (r *BondRepository) GetRecentPrices(ctx context.Context, bondID int64, limit int) ([]contracts.PricePoint, error) {
	query := `
		SELECT price_per_unit, executed_at
		FROM (
			SELECT price_per_unit, executed_at
			FROM trades
			WHERE bond_id = $1
			ORDER BY executed_at DESC
			LIMIT $2
		) recent
		ORDER BY executed_at ASC
	`

	rows, err := r.pool.Query(ctx, query, bondID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent prices for bond %d: %w", bondID, err)
	}
	defer rows.Close()

	var points []contracts.PricePoint
	for rows.Next() {
		var p contracts.PricePoint
		if err := rows.Scan(&p.Price, &p.ExecutedAt); err != nil {
			return nil, fmt.Errorf("scan price point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
