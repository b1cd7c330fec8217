package chat

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

// Repository defines chat persistence.
type Repository interface {
	ListSessions(ctx context.Context, filters ListFilters) ([]Session, int, error)
	GetSession(ctx context.Context, id string) (Session, error)
	CreateSession(ctx context.Context, session Session) (Session, error)
	DeleteSession(ctx context.Context, id string) error
	ListMessages(ctx context.Context, sessionID string) ([]Message, error)
	AppendMessage(ctx context.Context, message Message) (Message, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) ListSessions(ctx context.Context, filters ListFilters) ([]Session, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where += ` AND title ILIKE $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM chat_sessions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("chat: count sessions: %w", err)
	}

	query := `SELECT id, title, agent_id, created_at, updated_at FROM chat_sessions` + where + ` ORDER BY updated_at DESC`
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		args = append(args, filters.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("chat: list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Title, &s.AgentID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, s)
	}
	return sessions, total, rows.Err()
}

func (r *repository) GetSession(ctx context.Context, id string) (Session, error) {
	var s Session
	err := r.db.QueryRow(ctx,
		`SELECT id, title, agent_id, created_at, updated_at FROM chat_sessions WHERE id = $1`, id).
		Scan(&s.ID, &s.Title, &s.AgentID, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, httpx.ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("chat: get session: %w", err)
	}
	return s, nil
}

func (r *repository) CreateSession(ctx context.Context, session Session) (Session, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx,
		`INSERT INTO chat_sessions (id, title, agent_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4) RETURNING created_at, updated_at`,
		session.ID, session.Title, session.AgentID, now,
	).Scan(&session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return Session{}, fmt.Errorf("chat: create session: %w", err)
	}
	return session, nil
}

func (r *repository) DeleteSession(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM chat_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("chat: delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) ListMessages(ctx context.Context, sessionID string) ([]Message, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, role, content, created_at FROM chat_messages WHERE session_id = $1 ORDER BY created_at ASC`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("chat: list messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *repository) AppendMessage(ctx context.Context, message Message) (Message, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO chat_messages (id, session_id, role, content, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		message.ID, message.SessionID, message.Role, message.Content, time.Now(),
	).Scan(&message.CreatedAt)
	if err != nil {
		return Message{}, fmt.Errorf("chat: append message: %w", err)
	}
	_, _ = r.db.Exec(ctx, `UPDATE chat_sessions SET updated_at = $2 WHERE id = $1`, message.SessionID, time.Now())
	return message, nil
}
