package plugins

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

// Repository defines plugin persistence.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Plugin, int, error)
	Get(ctx context.Context, id string) (Plugin, error)
	Create(ctx context.Context, plugin Plugin) (Plugin, error)
	Update(ctx context.Context, plugin Plugin) (Plugin, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const pluginColumns = `id, name, version, description, source, enabled, installed_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Plugin, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (name ILIKE $` + n + ` OR description ILIKE $` + n + `)`
	}
	if filters.Enabled != nil {
		args = append(args, *filters.Enabled)
		where += ` AND enabled = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM plugins`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("plugins: count: %w", err)
	}

	query := `SELECT ` + pluginColumns + ` FROM plugins` + where + ` ORDER BY name ASC`
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		args = append(args, filters.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("plugins: list: %w", err)
	}
	defer rows.Close()

	var plugins []Plugin
	for rows.Next() {
		var p Plugin
		if err := rows.Scan(&p.ID, &p.Name, &p.Version, &p.Description, &p.Source, &p.Enabled, &p.InstalledAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		plugins = append(plugins, p)
	}
	return plugins, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Plugin, error) {
	var p Plugin
	err := r.db.QueryRow(ctx, `SELECT `+pluginColumns+` FROM plugins WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Version, &p.Description, &p.Source, &p.Enabled, &p.InstalledAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Plugin{}, httpx.ErrNotFound
	}
	if err != nil {
		return Plugin{}, fmt.Errorf("plugins: get: %w", err)
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, plugin Plugin) (Plugin, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx,
		`INSERT INTO plugins (id, name, version, description, source, enabled, installed_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING installed_at, updated_at`,
		plugin.ID, plugin.Name, plugin.Version, plugin.Description, plugin.Source, plugin.Enabled, now,
	).Scan(&plugin.InstalledAt, &plugin.UpdatedAt)
	if isUniqueViolation(err) {
		return Plugin{}, httpx.ErrDuplicate
	}
	if err != nil {
		return Plugin{}, fmt.Errorf("plugins: create: %w", err)
	}
	return plugin, nil
}

func (r *repository) Update(ctx context.Context, plugin Plugin) (Plugin, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE plugins SET name = $2, version = $3, description = $4, source = $5, enabled = $6, updated_at = $7 WHERE id = $1`,
		plugin.ID, plugin.Name, plugin.Version, plugin.Description, plugin.Source, plugin.Enabled, time.Now())
	if isUniqueViolation(err) {
		return Plugin{}, httpx.ErrDuplicate
	}
	if err != nil {
		return Plugin{}, fmt.Errorf("plugins: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Plugin{}, httpx.ErrNotFound
	}
	return r.Get(ctx, plugin.ID)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM plugins WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("plugins: delete: %w", err)
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
