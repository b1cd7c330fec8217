package rules

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

// Repository defines rule persistence.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Rule, int, error)
	Get(ctx context.Context, id string) (Rule, error)
	Create(ctx context.Context, rule Rule) (Rule, error)
	Update(ctx context.Context, rule Rule) (Rule, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const ruleColumns = `id, pattern, action, priority, enabled, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Rule, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where += ` AND pattern ILIKE $` + strconv.Itoa(len(args))
	}
	if filters.Enabled != nil {
		args = append(args, *filters.Enabled)
		where += ` AND enabled = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM rules`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("rules: count: %w", err)
	}

	query := `SELECT ` + ruleColumns + ` FROM rules` + where + ` ORDER BY priority ASC, pattern ASC`
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		args = append(args, filters.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("rules: list: %w", err)
	}
	defer rows.Close()

	var rules []Rule
	for rows.Next() {
		var rule Rule
		if err := rows.Scan(&rule.ID, &rule.Pattern, &rule.Action, &rule.Priority, &rule.Enabled, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
			return nil, 0, err
		}
		rules = append(rules, rule)
	}
	return rules, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Rule, error) {
	var rule Rule
	err := r.db.QueryRow(ctx, `SELECT `+ruleColumns+` FROM rules WHERE id = $1`, id).
		Scan(&rule.ID, &rule.Pattern, &rule.Action, &rule.Priority, &rule.Enabled, &rule.CreatedAt, &rule.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rule{}, httpx.ErrNotFound
	}
	if err != nil {
		return Rule{}, fmt.Errorf("rules: get: %w", err)
	}
	return rule, nil
}

func (r *repository) Create(ctx context.Context, rule Rule) (Rule, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx,
		`INSERT INTO rules (id, pattern, action, priority, enabled, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING created_at, updated_at`,
		rule.ID, rule.Pattern, rule.Action, rule.Priority, rule.Enabled, now,
	).Scan(&rule.CreatedAt, &rule.UpdatedAt)
	if isUniqueViolation(err) {
		return Rule{}, httpx.ErrDuplicate
	}
	if err != nil {
		return Rule{}, fmt.Errorf("rules: create: %w", err)
	}
	return rule, nil
}

func (r *repository) Update(ctx context.Context, rule Rule) (Rule, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE rules SET pattern = $2, action = $3, priority = $4, enabled = $5, updated_at = $6 WHERE id = $1`,
		rule.ID, rule.Pattern, rule.Action, rule.Priority, rule.Enabled, time.Now())
	if isUniqueViolation(err) {
		return Rule{}, httpx.ErrDuplicate
	}
	if err != nil {
		return Rule{}, fmt.Errorf("rules: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Rule{}, httpx.ErrNotFound
	}
	return r.Get(ctx, rule.ID)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("rules: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
