package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
)

// CalendarRepository persists confirmed and predicted ex-dividend
// dates.
type CalendarRepository struct {
	pool *pgxpool.Pool
}

// NewCalendarRepository creates a new calendar repository.
func NewCalendarRepository(pool *pgxpool.Pool) *CalendarRepository {
	return &CalendarRepository{pool: pool}
}

// SaveCalendar upserts all dates in the calendar under the given
// source label.
func (r *CalendarRepository) SaveCalendar(ctx context.Context, calendar contracts.DividendCalendar, source string) error {
	if calendar.TotalDates() == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO dividend_dates (etf_code, ex_date, source)
		VALUES ($1, $2, $3)
		ON CONFLICT (etf_code, ex_date) DO UPDATE SET source = EXCLUDED.source
	`
	for _, code := range calendar.Codes() {
		for _, dateStr := range calendar[code] {
			exDate, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				continue
			}
			if _, err := tx.Exec(ctx, query, code, exDate, source); err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}

// GetCalendar retrieves all stored dates from a date onward, grouped
// by ETF code.
func (r *CalendarRepository) GetCalendar(ctx context.Context, from time.Time) (contracts.DividendCalendar, error) {
	query := `
		SELECT etf_code, ex_date
		FROM dividend_dates
		WHERE ex_date >= $1
		ORDER BY etf_code, ex_date
	`

	rows, err := r.pool.Query(ctx, query, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calendar := make(contracts.DividendCalendar)
	for rows.Next() {
		var code string
		var exDate time.Time
		if err := rows.Scan(&code, &exDate); err != nil {
			return nil, err
		}
		calendar[code] = append(calendar[code], exDate.Format("2006-01-02"))
	}
	return calendar, rows.Err()
}
