package security

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

// ScanEnqueuer submits scans to the background queue.
type ScanEnqueuer interface {
	EnqueueSecurityScan(ctx context.Context, scanID string) (string, error)
}

// Service handles scan business logic.
type Service struct {
	repo     Repository
	queue    ScanEnqueuer
	validate *validator.Validate
}

// NewService builds a Service instance.
func NewService(repo Repository, queue ScanEnqueuer) *Service {
	return &Service{repo: repo, queue: queue, validate: validator.New()}
}

// List returns scans matching the filters plus the unfiltered total.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Scan, int, error) {
	return s.repo.List(ctx, filters)
}

// Get returns one scan.
func (s *Service) Get(ctx context.Context, id string) (Scan, error) {
	return s.repo.Get(ctx, id)
}

// Run records a queued scan and enqueues the background run. Returns the scan
// and the task id.
func (s *Service) Run(ctx context.Context, input CreateScanInput) (Scan, string, error) {
	if err := s.validate.Struct(input); err != nil {
		return Scan{}, "", fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	scan, err := s.repo.Create(ctx, Scan{
		ID:     uuid.NewString(),
		Target: input.Target,
		Status: StatusQueued,
	})
	if err != nil {
		return Scan{}, "", err
	}
	taskID, err := s.queue.EnqueueSecurityScan(ctx, scan.ID)
	if err != nil {
		// The row stays queued; a later worker sweep can pick it up.
		return Scan{}, "", err
	}
	return scan, taskID, nil
}

// Summary returns the dashboard aggregate.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	return s.repo.Summarize(ctx)
}
