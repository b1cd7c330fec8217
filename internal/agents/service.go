package agents

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

// RunEnqueuer submits agent runs to the background queue.
type RunEnqueuer interface {
	EnqueueAgentRun(ctx context.Context, agentID string) (string, error)
}

// Service handles agent business logic.
type Service struct {
	repo     Repository
	queue    RunEnqueuer
	validate *validator.Validate
}

// NewService builds a Service instance.
func NewService(repo Repository, queue RunEnqueuer) *Service {
	return &Service{repo: repo, queue: queue, validate: validator.New()}
}

// List returns agents matching the filters plus the unfiltered total.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Agent, int, error) {
	return s.repo.List(ctx, filters)
}

// Get returns one agent.
func (s *Service) Get(ctx context.Context, id string) (Agent, error) {
	return s.repo.Get(ctx, id)
}

// Create validates input and stores a new agent. The id is generated here,
// never taken from the caller.
func (s *Service) Create(ctx context.Context, input CreateAgentInput) (Agent, error) {
	if err := s.validate.Struct(input); err != nil {
		return Agent{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	enabled := true
	if input.Enabled != nil {
		enabled = *input.Enabled
	}
	tools := input.Tools
	if tools == nil {
		tools = []string{}
	}
	return s.repo.Create(ctx, Agent{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Description:  input.Description,
		Model:        input.Model,
		SystemPrompt: input.SystemPrompt,
		Tools:        tools,
		Enabled:      enabled,
	})
}

// Update applies a partial update and returns the stored record.
func (s *Service) Update(ctx context.Context, id string, input UpdateAgentInput) (Agent, error) {
	if err := s.validate.Struct(input); err != nil {
		return Agent{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	agent, err := s.repo.Get(ctx, id)
	if err != nil {
		return Agent{}, err
	}
	if input.Name != nil {
		agent.Name = *input.Name
	}
	if input.Description != nil {
		agent.Description = *input.Description
	}
	if input.Model != nil {
		agent.Model = *input.Model
	}
	if input.SystemPrompt != nil {
		agent.SystemPrompt = *input.SystemPrompt
	}
	if input.Tools != nil {
		agent.Tools = *input.Tools
	}
	if input.Enabled != nil {
		agent.Enabled = *input.Enabled
	}
	return s.repo.Update(ctx, agent)
}

// Delete removes an agent.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Toggle flips the enabled flag and returns the stored record.
func (s *Service) Toggle(ctx context.Context, id string) (Agent, error) {
	agent, err := s.repo.Get(ctx, id)
	if err != nil {
		return Agent{}, err
	}
	agent.Enabled = !agent.Enabled
	return s.repo.Update(ctx, agent)
}

// Run enqueues a background run for an enabled agent and returns the task id.
func (s *Service) Run(ctx context.Context, id string) (string, error) {
	agent, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !agent.Enabled {
		return "", fmt.Errorf("%w: agent is disabled", httpx.ErrValidation)
	}
	return s.queue.EnqueueAgentRun(ctx, agent.ID)
}
