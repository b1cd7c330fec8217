package agents

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

// Repository defines agent persistence.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Agent, int, error)
	Get(ctx context.Context, id string) (Agent, error)
	Create(ctx context.Context, agent Agent) (Agent, error)
	Update(ctx context.Context, agent Agent) (Agent, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const agentColumns = `id, name, description, model, system_prompt, tools, enabled, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Agent, int, error) {
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
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM agents`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("agents: count: %w", err)
	}

	query := `SELECT ` + agentColumns + ` FROM agents` + where + ` ORDER BY name ASC`
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		args = append(args, filters.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("agents: list: %w", err)
	}
	defer rows.Close()

	var agents []Agent
	for rows.Next() {
		var a Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Model, &a.SystemPrompt, &a.Tools, &a.Enabled, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		agents = append(agents, a)
	}
	return agents, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Agent, error) {
	var a Agent
	err := r.db.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = $1`, id).
		Scan(&a.ID, &a.Name, &a.Description, &a.Model, &a.SystemPrompt, &a.Tools, &a.Enabled, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, httpx.ErrNotFound
	}
	if err != nil {
		return Agent{}, fmt.Errorf("agents: get: %w", err)
	}
	return a, nil
}

func (r *repository) Create(ctx context.Context, agent Agent) (Agent, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx,
		`INSERT INTO agents (id, name, description, model, system_prompt, tools, enabled, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8) RETURNING created_at, updated_at`,
		agent.ID, agent.Name, agent.Description, agent.Model, agent.SystemPrompt, agent.Tools, agent.Enabled, now,
	).Scan(&agent.CreatedAt, &agent.UpdatedAt)
	if isUniqueViolation(err) {
		return Agent{}, httpx.ErrDuplicate
	}
	if err != nil {
		return Agent{}, fmt.Errorf("agents: create: %w", err)
	}
	return agent, nil
}

func (r *repository) Update(ctx context.Context, agent Agent) (Agent, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE agents SET name = $2, description = $3, model = $4, system_prompt = $5, tools = $6, enabled = $7, updated_at = $8 WHERE id = $1`,
		agent.ID, agent.Name, agent.Description, agent.Model, agent.SystemPrompt, agent.Tools, agent.Enabled, time.Now())
	if isUniqueViolation(err) {
		return Agent{}, httpx.ErrDuplicate
	}
	if err != nil {
		return Agent{}, fmt.Errorf("agents: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Agent{}, httpx.ErrNotFound
	}
	return r.Get(ctx, agent.ID)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM agents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("agents: delete: %w", err)
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
