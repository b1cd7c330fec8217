package commands

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

// Repository defines command persistence.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Command, int, error)
	Get(ctx context.Context, id string) (Command, error)
	Create(ctx context.Context, cmd Command) (Command, error)
	Update(ctx context.Context, cmd Command) (Command, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const commandColumns = `id, name, description, script, arguments, enabled, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Command, int, error) {
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
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM commands`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("commands: count: %w", err)
	}

	query := `SELECT ` + commandColumns + ` FROM commands` + where + ` ORDER BY name ASC`
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		args = append(args, filters.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("commands: list: %w", err)
	}
	defer rows.Close()

	var commands []Command
	for rows.Next() {
		var c Command
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Script, &c.Arguments, &c.Enabled, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		commands = append(commands, c)
	}
	return commands, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Command, error) {
	var c Command
	err := r.db.QueryRow(ctx, `SELECT `+commandColumns+` FROM commands WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.Script, &c.Arguments, &c.Enabled, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Command{}, httpx.ErrNotFound
	}
	if err != nil {
		return Command{}, fmt.Errorf("commands: get: %w", err)
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, cmd Command) (Command, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx,
		`INSERT INTO commands (id, name, description, script, arguments, enabled, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING created_at, updated_at`,
		cmd.ID, cmd.Name, cmd.Description, cmd.Script, cmd.Arguments, cmd.Enabled, now,
	).Scan(&cmd.CreatedAt, &cmd.UpdatedAt)
	if isUniqueViolation(err) {
		return Command{}, httpx.ErrDuplicate
	}
	if err != nil {
		return Command{}, fmt.Errorf("commands: create: %w", err)
	}
	return cmd, nil
}

func (r *repository) Update(ctx context.Context, cmd Command) (Command, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE commands SET name = $2, description = $3, script = $4, arguments = $5, enabled = $6, updated_at = $7 WHERE id = $1`,
		cmd.ID, cmd.Name, cmd.Description, cmd.Script, cmd.Arguments, cmd.Enabled, time.Now())
	if isUniqueViolation(err) {
		return Command{}, httpx.ErrDuplicate
	}
	if err != nil {
		return Command{}, fmt.Errorf("commands: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Command{}, httpx.ErrNotFound
	}
	return r.Get(ctx, cmd.ID)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM commands WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("commands: delete: %w", err)
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
