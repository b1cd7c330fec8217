package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

// RunEnqueuer submits command runs to the background queue.
type RunEnqueuer interface {
	EnqueueCommandRun(ctx context.Context, commandID string, arguments []string) (string, error)
}

// Service handles command business logic.
type Service struct {
	repo     Repository
	queue    RunEnqueuer
	validate *validator.Validate
}

// NewService builds a Service instance.
func NewService(repo Repository, queue RunEnqueuer) *Service {
	return &Service{repo: repo, queue: queue, validate: validator.New()}
}

// parseArguments rejects anything that is not a JSON array of non-empty
// strings. A nil raw value means no declared arguments.
func parseArguments(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var args []string
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("%w: arguments must be a JSON array of strings", httpx.ErrValidation)
	}
	for _, a := range args {
		if strings.TrimSpace(a) == "" {
			return nil, fmt.Errorf("%w: argument names must be non-empty", httpx.ErrValidation)
		}
	}
	return args, nil
}

// List returns commands matching the filters plus the unfiltered total.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Command, int, error) {
	return s.repo.List(ctx, filters)
}

// Get returns one command.
func (s *Service) Get(ctx context.Context, id string) (Command, error) {
	return s.repo.Get(ctx, id)
}

// Create validates input, including the argument shape, and stores a new
// command.
func (s *Service) Create(ctx context.Context, input CreateCommandInput) (Command, error) {
	if err := s.validate.Struct(input); err != nil {
		return Command{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	args, err := parseArguments(input.Arguments)
	if err != nil {
		return Command{}, err
	}
	enabled := true
	if input.Enabled != nil {
		enabled = *input.Enabled
	}
	return s.repo.Create(ctx, Command{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Script:      input.Script,
		Arguments:   args,
		Enabled:     enabled,
	})
}

// Update applies a partial update and returns the stored record.
func (s *Service) Update(ctx context.Context, id string, input UpdateCommandInput) (Command, error) {
	if err := s.validate.Struct(input); err != nil {
		return Command{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	cmd, err := s.repo.Get(ctx, id)
	if err != nil {
		return Command{}, err
	}
	if input.Name != nil {
		cmd.Name = *input.Name
	}
	if input.Description != nil {
		cmd.Description = *input.Description
	}
	if input.Script != nil {
		cmd.Script = *input.Script
	}
	if input.Arguments != nil {
		args, err := parseArguments(input.Arguments)
		if err != nil {
			return Command{}, err
		}
		cmd.Arguments = args
	}
	if input.Enabled != nil {
		cmd.Enabled = *input.Enabled
	}
	return s.repo.Update(ctx, cmd)
}

// Delete removes a command.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Toggle flips the enabled flag and returns the stored record.
func (s *Service) Toggle(ctx context.Context, id string) (Command, error) {
	cmd, err := s.repo.Get(ctx, id)
	if err != nil {
		return Command{}, err
	}
	cmd.Enabled = !cmd.Enabled
	return s.repo.Update(ctx, cmd)
}

// Run enqueues a background run. Provided argument values must match the
// declared argument count.
func (s *Service) Run(ctx context.Context, id string, input RunCommandInput) (string, error) {
	cmd, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !cmd.Enabled {
		return "", fmt.Errorf("%w: command is disabled", httpx.ErrValidation)
	}
	if len(input.Arguments) != len(cmd.Arguments) {
		return "", fmt.Errorf("%w: expected %d arguments, got %d", httpx.ErrValidation, len(cmd.Arguments), len(input.Arguments))
	}
	return s.queue.EnqueueCommandRun(ctx, cmd.ID, input.Arguments)
}
