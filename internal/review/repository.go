package review

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

// Repository defines review persistence.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]PRReview, int, error)
	Get(ctx context.Context, id string) (PRReview, error)
	Create(ctx context.Context, review PRReview) (PRReview, error)
	SetVerdict(ctx context.Context, id string, verdict Verdict, confidence float64, summary string) error
	ResetVerdict(ctx context.Context, id string) error
	Stats(ctx context.Context) (Stats, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const reviewColumns = `id, repo, number, title, author, verdict, confidence, summary, reviewed_at, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]PRReview, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (repo ILIKE $` + n + ` OR title ILIKE $` + n + ` OR author ILIKE $` + n + `)`
	}
	if filters.Verdict != "" {
		args = append(args, filters.Verdict)
		where += ` AND verdict = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM pr_reviews`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("review: count: %w", err)
	}

	query := `SELECT ` + reviewColumns + ` FROM pr_reviews` + where + ` ORDER BY created_at DESC`
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		args = append(args, filters.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("review: list: %w", err)
	}
	defer rows.Close()

	var reviews []PRReview
	for rows.Next() {
		var rv PRReview
		if err := rows.Scan(&rv.ID, &rv.Repo, &rv.Number, &rv.Title, &rv.Author, &rv.Verdict, &rv.Confidence, &rv.Summary, &rv.ReviewedAt, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (PRReview, error) {
	var rv PRReview
	err := r.db.QueryRow(ctx, `SELECT `+reviewColumns+` FROM pr_reviews WHERE id = $1`, id).
		Scan(&rv.ID, &rv.Repo, &rv.Number, &rv.Title, &rv.Author, &rv.Verdict, &rv.Confidence, &rv.Summary, &rv.ReviewedAt, &rv.CreatedAt, &rv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return PRReview{}, httpx.ErrNotFound
	}
	if err != nil {
		return PRReview{}, fmt.Errorf("review: get: %w", err)
	}
	return rv, nil
}

func (r *repository) Create(ctx context.Context, review PRReview) (PRReview, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx,
		`INSERT INTO pr_reviews (id, repo, number, title, author, verdict, confidence, summary, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9) RETURNING created_at, updated_at`,
		review.ID, review.Repo, review.Number, review.Title, review.Author, review.Verdict, review.Confidence, review.Summary, now,
	).Scan(&review.CreatedAt, &review.UpdatedAt)
	if isUniqueViolation(err) {
		return PRReview{}, httpx.ErrDuplicate
	}
	if err != nil {
		return PRReview{}, fmt.Errorf("review: create: %w", err)
	}
	return review, nil
}

func (r *repository) SetVerdict(ctx context.Context, id string, verdict Verdict, confidence float64, summary string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE pr_reviews SET verdict = $2, confidence = $3, summary = $4, reviewed_at = $5, updated_at = $5 WHERE id = $1`,
		id, verdict, confidence, summary, time.Now())
	if err != nil {
		return fmt.Errorf("review: set verdict: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) ResetVerdict(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE pr_reviews SET verdict = $2, confidence = 0, summary = '', reviewed_at = NULL, updated_at = $3 WHERE id = $1`,
		id, VerdictPending, time.Now())
	if err != nil {
		return fmt.Errorf("review: reset verdict: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE verdict = 'pending'),
		        COUNT(*) FILTER (WHERE verdict = 'approve'),
		        COUNT(*) FILTER (WHERE verdict = 'request_changes'),
		        COUNT(*) FILTER (WHERE verdict = 'comment')
		 FROM pr_reviews`).
		Scan(&s.Total, &s.Pending, &s.Approved, &s.ChangesAsked, &s.CommentedOnly)
	if err != nil {
		return Stats{}, fmt.Errorf("review: stats: %w", err)
	}
	return s, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
