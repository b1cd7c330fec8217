package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines usage persistence.
type Repository interface {
	Insert(ctx context.Context, record Record) error
	Totals(ctx context.Context, since time.Time) (int64, int64, float64, error)
	ByModel(ctx context.Context, since time.Time) ([]ModelTotal, error)
	ByDay(ctx context.Context, since time.Time) ([]DailyTotal, error)
	RollupDay(ctx context.Context, day string) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, record Record) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO usage_events (id, model, input_tokens, output_tokens, cost_usd, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		record.ID, record.Model, record.InputTokens, record.OutputTokens, record.CostUSD, record.OccurredAt)
	if err != nil {
		return fmt.Errorf("usage: insert: %w", err)
	}
	return nil
}

func (r *repository) Totals(ctx context.Context, since time.Time) (int64, int64, float64, error) {
	var in, out int64
	var cost float64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0), COALESCE(SUM(cost_usd), 0)
		 FROM usage_events WHERE occurred_at >= $1`, since).
		Scan(&in, &out, &cost)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("usage: totals: %w", err)
	}
	return in, out, cost, nil
}

func (r *repository) ByModel(ctx context.Context, since time.Time) ([]ModelTotal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT model, COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0), COALESCE(SUM(cost_usd), 0)
		 FROM usage_events WHERE occurred_at >= $1
		 GROUP BY model ORDER BY SUM(cost_usd) DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("usage: by model: %w", err)
	}
	defer rows.Close()

	var totals []ModelTotal
	for rows.Next() {
		var t ModelTotal
		if err := rows.Scan(&t.Model, &t.InputTokens, &t.OutputTokens, &t.CostUSD); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (r *repository) ByDay(ctx context.Context, since time.Time) ([]DailyTotal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT TO_CHAR(occurred_at, 'YYYY-MM-DD'), COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0), COALESCE(SUM(cost_usd), 0)
		 FROM usage_events WHERE occurred_at >= $1
		 GROUP BY 1 ORDER BY 1`, since)
	if err != nil {
		return nil, fmt.Errorf("usage: by day: %w", err)
	}
	defer rows.Close()

	var totals []DailyTotal
	for rows.Next() {
		var t DailyTotal
		if err := rows.Scan(&t.Day, &t.InputTokens, &t.OutputTokens, &t.CostUSD); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// RollupDay folds one day's raw events into the usage_daily table so old
// events can be pruned.
func (r *repository) RollupDay(ctx context.Context, day string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO usage_daily (day, model, input_tokens, output_tokens, cost_usd)
		 SELECT $1::date, model, COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0), COALESCE(SUM(cost_usd), 0)
		 FROM usage_events
		 WHERE occurred_at >= $1::date AND occurred_at < $1::date + INTERVAL '1 day'
		 GROUP BY model
		 ON CONFLICT (day, model) DO UPDATE SET
		   input_tokens = EXCLUDED.input_tokens,
		   output_tokens = EXCLUDED.output_tokens,
		   cost_usd = EXCLUDED.cost_usd`, day)
	if err != nil {
		return fmt.Errorf("usage: rollup %s: %w", day, err)
	}
	return nil
}
