package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
)

// PriceRepository persists daily ETF bars.
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository.
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// GetHistory retrieves all bars for an ETF from a date onward,
// ascending.
func (r *PriceRepository) GetHistory(ctx context.Context, code string, from time.Time) ([]contracts.PriceBar, error) {
	query := `
		SELECT etf_code, trade_date, open_price, high_price, low_price, close_price, volume, turnover
		FROM etf_prices
		WHERE etf_code = $1 AND trade_date >= $2
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, code, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []contracts.PriceBar
	for rows.Next() {
		var b contracts.PriceBar
		if err := rows.Scan(&b.Code, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &b.Turnover); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// GetLatest retrieves the most recent bar for an ETF.
func (r *PriceRepository) GetLatest(ctx context.Context, code string) (*contracts.PriceBar, error) {
	query := `
		SELECT etf_code, trade_date, open_price, high_price, low_price, close_price, volume, turnover
		FROM etf_prices
		WHERE etf_code = $1
		ORDER BY trade_date DESC
		LIMIT 1
	`

	var b contracts.PriceBar
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&b.Code, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &b.Turnover,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Save upserts a single bar.
func (r *PriceRepository) Save(ctx context.Context, bar contracts.PriceBar) error {
	query := `
		INSERT INTO etf_prices (etf_code, trade_date, open_price, high_price, low_price, close_price, volume, turnover)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (etf_code, trade_date) DO UPDATE SET
			open_price  = EXCLUDED.open_price,
			high_price  = EXCLUDED.high_price,
			low_price   = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume      = EXCLUDED.volume,
			turnover    = EXCLUDED.turnover
	`

	_, err := r.pool.Exec(ctx, query,
		bar.Code, bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume, bar.Turnover,
	)
	return err
}

// SaveBatch upserts bars one by one inside a transaction.
func (r *PriceRepository) SaveBatch(ctx context.Context, bars []contracts.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO etf_prices (etf_code, trade_date, open_price, high_price, low_price, close_price, volume, turnover)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (etf_code, trade_date) DO UPDATE SET
			open_price  = EXCLUDED.open_price,
			high_price  = EXCLUDED.high_price,
			low_price   = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume      = EXCLUDED.volume,
			turnover    = EXCLUDED.turnover
	`
	for _, bar := range bars {
		if _, err := tx.Exec(ctx, query,
			bar.Code, bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume, bar.Turnover,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
