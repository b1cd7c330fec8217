package teams

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agentdeck/agentdeck/internal/platform/db"
	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

// Repository defines team persistence.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Team, int, error)
	Get(ctx context.Context, id string) (Team, error)
	Create(ctx context.Context, team Team) (Team, error)
	Update(ctx context.Context, team Team) (Team, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Team, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (name ILIKE $` + n + ` OR description ILIKE $` + n + `)`
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM teams`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("teams: count: %w", err)
	}

	query := `SELECT id, name, description, lead_agent_id, created_at, updated_at FROM teams` + where + ` ORDER BY name ASC`
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		args = append(args, filters.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("teams: list: %w", err)
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.LeadAgentID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range teams {
		members, err := r.members(ctx, teams[i].ID)
		if err != nil {
			return nil, 0, err
		}
		teams[i].Members = members
	}
	return teams, total, nil
}

func (r *repository) members(ctx context.Context, teamID string) ([]Member, error) {
	rows, err := r.db.Query(ctx,
		`SELECT agent_id, role FROM team_members WHERE team_id = $1 ORDER BY agent_id`, teamID)
	if err != nil {
		return nil, fmt.Errorf("teams: members: %w", err)
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.AgentID, &m.Role); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Team, error) {
	var t Team
	err := r.db.QueryRow(ctx,
		`SELECT id, name, description, lead_agent_id, created_at, updated_at FROM teams WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Description, &t.LeadAgentID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Team{}, httpx.ErrNotFound
	}
	if err != nil {
		return Team{}, fmt.Errorf("teams: get: %w", err)
	}
	members, err := r.members(ctx, id)
	if err != nil {
		return Team{}, err
	}
	t.Members = members
	return t, nil
}

func (r *repository) Create(ctx context.Context, team Team) (Team, error) {
	now := time.Now()
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO teams (id, name, description, lead_agent_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $5)`,
			team.ID, team.Name, team.Description, team.LeadAgentID, now); err != nil {
			return err
		}
		return insertMembers(ctx, tx, team.ID, team.Members)
	})
	if isUniqueViolation(err) {
		return Team{}, httpx.ErrDuplicate
	}
	if err != nil {
		return Team{}, fmt.Errorf("teams: create: %w", err)
	}
	return r.Get(ctx, team.ID)
}

func (r *repository) Update(ctx context.Context, team Team) (Team, error) {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE teams SET name = $2, description = $3, lead_agent_id = $4, updated_at = $5 WHERE id = $1`,
			team.ID, team.Name, team.Description, team.LeadAgentID, time.Now())
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return httpx.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM team_members WHERE team_id = $1`, team.ID); err != nil {
			return err
		}
		return insertMembers(ctx, tx, team.ID, team.Members)
	})
	if isUniqueViolation(err) {
		return Team{}, httpx.ErrDuplicate
	}
	if errors.Is(err, httpx.ErrNotFound) {
		return Team{}, httpx.ErrNotFound
	}
	if err != nil {
		return Team{}, fmt.Errorf("teams: update: %w", err)
	}
	return r.Get(ctx, team.ID)
}

func insertMembers(ctx context.Context, tx pgx.Tx, teamID string, members []Member) error {
	for _, m := range members {
		if _, err := tx.Exec(ctx,
			`INSERT INTO team_members (team_id, agent_id, role) VALUES ($1, $2, $3)`,
			teamID, m.AgentID, m.Role); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("teams: delete: %w", err)
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
