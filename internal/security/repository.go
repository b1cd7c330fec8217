package security

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

// Repository defines scan persistence.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Scan, int, error)
	Get(ctx context.Context, id string) (Scan, error)
	Create(ctx context.Context, scan Scan) (Scan, error)
	MarkRunning(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string, critical, high, medium, low int) error
	MarkFailed(ctx context.Context, id string) error
	Summarize(ctx context.Context) (Summary, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const scanColumns = `id, target, status, critical, high, medium, low, started_at, completed_at, created_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Scan, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where += ` AND target ILIKE $` + strconv.Itoa(len(args))
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM security_scans`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("security: count: %w", err)
	}

	query := `SELECT ` + scanColumns + ` FROM security_scans` + where + ` ORDER BY created_at DESC`
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		args = append(args, filters.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("security: list: %w", err)
	}
	defer rows.Close()

	var scans []Scan
	for rows.Next() {
		var s Scan
		if err := rows.Scan(&s.ID, &s.Target, &s.Status, &s.Critical, &s.High, &s.Medium, &s.Low, &s.StartedAt, &s.CompletedAt, &s.CreatedAt); err != nil {
			return nil, 0, err
		}
		scans = append(scans, s)
	}
	return scans, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Scan, error) {
	var s Scan
	err := r.db.QueryRow(ctx, `SELECT `+scanColumns+` FROM security_scans WHERE id = $1`, id).
		Scan(&s.ID, &s.Target, &s.Status, &s.Critical, &s.High, &s.Medium, &s.Low, &s.StartedAt, &s.CompletedAt, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Scan{}, httpx.ErrNotFound
	}
	if err != nil {
		return Scan{}, fmt.Errorf("security: get: %w", err)
	}
	return s, nil
}

func (r *repository) Create(ctx context.Context, scan Scan) (Scan, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO security_scans (id, target, status, created_at) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		scan.ID, scan.Target, scan.Status, time.Now(),
	).Scan(&scan.CreatedAt)
	if err != nil {
		return Scan{}, fmt.Errorf("security: create: %w", err)
	}
	return scan, nil
}

func (r *repository) MarkRunning(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE security_scans SET status = $2, started_at = $3 WHERE id = $1`,
		id, StatusRunning, time.Now())
	if err != nil {
		return fmt.Errorf("security: mark running: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) MarkCompleted(ctx context.Context, id string, critical, high, medium, low int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE security_scans SET status = $2, critical = $3, high = $4, medium = $5, low = $6, completed_at = $7 WHERE id = $1`,
		id, StatusCompleted, critical, high, medium, low, time.Now())
	if err != nil {
		return fmt.Errorf("security: mark completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) MarkFailed(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE security_scans SET status = $2, completed_at = $3 WHERE id = $1`,
		id, StatusFailed, time.Now())
	if err != nil {
		return fmt.Errorf("security: mark failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Summarize(ctx context.Context) (Summary, error) {
	var s Summary
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'completed'),
		        COALESCE(SUM(critical) FILTER (WHERE status = 'completed'), 0),
		        COALESCE(SUM(high) FILTER (WHERE status = 'completed'), 0)
		 FROM security_scans`).
		Scan(&s.TotalScans, &s.CompletedScans, &s.OpenCritical, &s.OpenHigh)
	if err != nil {
		return Summary{}, fmt.Errorf("security: summarize: %w", err)
	}
	return s, nil
}
