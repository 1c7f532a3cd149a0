package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
)

// OpportunityRepository persists analysis runs. The full opportunity
// is stored as JSONB so downstream consumers see every field without
// schema churn.
type OpportunityRepository struct {
	pool *pgxpool.Pool
}

// NewOpportunityRepository creates a new opportunity repository.
func NewOpportunityRepository(pool *pgxpool.Pool) *OpportunityRepository {
	return &OpportunityRepository{pool: pool}
}

// SaveRun inserts all opportunities from one analysis run.
func (r *OpportunityRepository) SaveRun(ctx context.Context, runAt time.Time, opportunities []contracts.Opportunity) error {
	if len(opportunities) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO opportunities (run_at, evaluation_date, etf_code, window_kind, action, confidence, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, opp := range opportunities {
		detail, err := json.Marshal(opp)
		if err != nil {
			return err
		}

		var action *string
		if opp.Recommendation != nil {
			a := string(opp.Recommendation.Action)
			action = &a
		}

		if _, err := tx.Exec(ctx, query,
			runAt, opp.EvaluationDate, opp.Window.Code, string(opp.Window.Kind),
			action, string(opp.Confidence), detail,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Latest retrieves the opportunities from the most recent run.
func (r *OpportunityRepository) Latest(ctx context.Context) ([]contracts.Opportunity, error) {
	query := `
		SELECT detail
		FROM opportunities
		WHERE run_at = (SELECT max(run_at) FROM opportunities)
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opportunities []contracts.Opportunity
	for rows.Next() {
		var detail []byte
		if err := rows.Scan(&detail); err != nil {
			return nil, err
		}
		var opp contracts.Opportunity
		if err := json.Unmarshal(detail, &opp); err != nil {
			return nil, err
		}
		opportunities = append(opportunities, opp)
	}
	return opportunities, rows.Err()
}
