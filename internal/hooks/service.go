package hooks

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

const defaultTimeoutSeconds = 60

// Service handles hook business logic.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// List returns hooks matching the filters plus the unfiltered total.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Hook, int, error) {
	return s.repo.List(ctx, filters)
}

// Get returns one hook.
func (s *Service) Get(ctx context.Context, id string) (Hook, error) {
	return s.repo.Get(ctx, id)
}

// Create validates input and stores a new hook.
func (s *Service) Create(ctx context.Context, input CreateHookInput) (Hook, error) {
	if err := s.validate.Struct(input); err != nil {
		return Hook{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	enabled := true
	if input.Enabled != nil {
		enabled = *input.Enabled
	}
	timeout := input.TimeoutSeconds
	if timeout == 0 {
		timeout = defaultTimeoutSeconds
	}
	return s.repo.Create(ctx, Hook{
		ID:             uuid.NewString(),
		Event:          input.Event,
		Matcher:        input.Matcher,
		Command:        input.Command,
		TimeoutSeconds: timeout,
		Enabled:        enabled,
	})
}

// Update applies a partial update and returns the stored record.
func (s *Service) Update(ctx context.Context, id string, input UpdateHookInput) (Hook, error) {
	if err := s.validate.Struct(input); err != nil {
		return Hook{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	hook, err := s.repo.Get(ctx, id)
	if err != nil {
		return Hook{}, err
	}
	if input.Event != nil {
		hook.Event = *input.Event
	}
	if input.Matcher != nil {
		hook.Matcher = *input.Matcher
	}
	if input.Command != nil {
		hook.Command = *input.Command
	}
	if input.TimeoutSeconds != nil {
		hook.TimeoutSeconds = *input.TimeoutSeconds
	}
	if input.Enabled != nil {
		hook.Enabled = *input.Enabled
	}
	return s.repo.Update(ctx, hook)
}

// Delete removes a hook.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Toggle flips the enabled flag and returns the stored record.
func (s *Service) Toggle(ctx context.Context, id string) (Hook, error) {
	hook, err := s.repo.Get(ctx, id)
	if err != nil {
		return Hook{}, err
	}
	hook.Enabled = !hook.Enabled
	return s.repo.Update(ctx, hook)
}
