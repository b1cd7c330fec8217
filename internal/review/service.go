package review

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

// RecheckEnqueuer submits review rechecks to the background queue.
type RecheckEnqueuer interface {
	EnqueueReviewRecheck(ctx context.Context, reviewID string) (string, error)
}

// Service handles review business logic.
type Service struct {
	repo     Repository
	queue    RecheckEnqueuer
	validate *validator.Validate
}

// NewService builds a Service instance.
func NewService(repo Repository, queue RecheckEnqueuer) *Service {
	return &Service{repo: repo, queue: queue, validate: validator.New()}
}

// List returns reviews matching the filters plus the unfiltered total.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]PRReview, int, error) {
	return s.repo.List(ctx, filters)
}

// Get returns one review.
func (s *Service) Get(ctx context.Context, id string) (PRReview, error) {
	return s.repo.Get(ctx, id)
}

// Register records a pull request awaiting review.
func (s *Service) Register(ctx context.Context, input CreateReviewInput) (PRReview, error) {
	if err := s.validate.Struct(input); err != nil {
		return PRReview{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	return s.repo.Create(ctx, PRReview{
		ID:      uuid.NewString(),
		Repo:    input.Repo,
		Number:  input.Number,
		Title:   input.Title,
		Author:  input.Author,
		Verdict: VerdictPending,
	})
}

// Recheck clears the verdict and queues a fresh review pass. It returns the
// pending review together with the queued task id.
func (s *Service) Recheck(ctx context.Context, id string) (PRReview, string, error) {
	if err := s.repo.ResetVerdict(ctx, id); err != nil {
		return PRReview{}, "", err
	}
	review, err := s.repo.Get(ctx, id)
	if err != nil {
		return PRReview{}, "", err
	}
	taskID, err := s.queue.EnqueueReviewRecheck(ctx, review.ID)
	if err != nil {
		return PRReview{}, "", err
	}
	return review, taskID, nil
}

// RecordVerdict stores the outcome of a completed review.
func (s *Service) RecordVerdict(ctx context.Context, id string, verdict Verdict, confidence float64, summary string) (PRReview, error) {
	switch verdict {
	case VerdictApprove, VerdictRequestChanges, VerdictComment:
	default:
		return PRReview{}, fmt.Errorf("%w: unknown verdict %q", httpx.ErrValidation, verdict)
	}
	if confidence < 0 || confidence > 1 {
		return PRReview{}, fmt.Errorf("%w: confidence out of range", httpx.ErrValidation)
	}
	if err := s.repo.SetVerdict(ctx, id, verdict, confidence, summary); err != nil {
		return PRReview{}, err
	}
	return s.repo.Get(ctx, id)
}

// Stats returns the dashboard aggregate.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}
