package hooks

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

// Repository defines hook persistence.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Hook, int, error)
	Get(ctx context.Context, id string) (Hook, error)
	Create(ctx context.Context, hook Hook) (Hook, error)
	Update(ctx context.Context, hook Hook) (Hook, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const hookColumns = `id, event, matcher, command, timeout_seconds, enabled, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Hook, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (matcher ILIKE $` + n + ` OR command ILIKE $` + n + `)`
	}
	if filters.Event != "" {
		args = append(args, filters.Event)
		where += ` AND event = $` + strconv.Itoa(len(args))
	}
	if filters.Enabled != nil {
		args = append(args, *filters.Enabled)
		where += ` AND enabled = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM hooks`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("hooks: count: %w", err)
	}

	query := `SELECT ` + hookColumns + ` FROM hooks` + where + ` ORDER BY event ASC, created_at ASC`
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		args = append(args, filters.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("hooks: list: %w", err)
	}
	defer rows.Close()

	var hooks []Hook
	for rows.Next() {
		var h Hook
		if err := rows.Scan(&h.ID, &h.Event, &h.Matcher, &h.Command, &h.TimeoutSeconds, &h.Enabled, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, 0, err
		}
		hooks = append(hooks, h)
	}
	return hooks, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Hook, error) {
	var h Hook
	err := r.db.QueryRow(ctx, `SELECT `+hookColumns+` FROM hooks WHERE id = $1`, id).
		Scan(&h.ID, &h.Event, &h.Matcher, &h.Command, &h.TimeoutSeconds, &h.Enabled, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Hook{}, httpx.ErrNotFound
	}
	if err != nil {
		return Hook{}, fmt.Errorf("hooks: get: %w", err)
	}
	return h, nil
}

func (r *repository) Create(ctx context.Context, hook Hook) (Hook, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx,
		`INSERT INTO hooks (id, event, matcher, command, timeout_seconds, enabled, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING created_at, updated_at`,
		hook.ID, hook.Event, hook.Matcher, hook.Command, hook.TimeoutSeconds, hook.Enabled, now,
	).Scan(&hook.CreatedAt, &hook.UpdatedAt)
	if err != nil {
		return Hook{}, fmt.Errorf("hooks: create: %w", err)
	}
	return hook, nil
}

func (r *repository) Update(ctx context.Context, hook Hook) (Hook, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE hooks SET event = $2, matcher = $3, command = $4, timeout_seconds = $5, enabled = $6, updated_at = $7 WHERE id = $1`,
		hook.ID, hook.Event, hook.Matcher, hook.Command, hook.TimeoutSeconds, hook.Enabled, time.Now())
	if err != nil {
		return Hook{}, fmt.Errorf("hooks: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Hook{}, httpx.ErrNotFound
	}
	return r.Get(ctx, hook.ID)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM hooks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("hooks: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
