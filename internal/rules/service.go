package rules

import (
	"context"
	"fmt"
	"path"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

// Service handles rule business logic.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// List returns rules matching the filters plus the unfiltered total.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Rule, int, error) {
	return s.repo.List(ctx, filters)
}

// Get returns one rule.
func (s *Service) Get(ctx context.Context, id string) (Rule, error) {
	return s.repo.Get(ctx, id)
}

// Create validates input and stores a new rule.
func (s *Service) Create(ctx context.Context, input CreateRuleInput) (Rule, error) {
	if err := s.validate.Struct(input); err != nil {
		return Rule{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	if !validPattern(input.Pattern) {
		return Rule{}, fmt.Errorf("%w: malformed pattern", httpx.ErrValidation)
	}
	enabled := true
	if input.Enabled != nil {
		enabled = *input.Enabled
	}
	return s.repo.Create(ctx, Rule{
		ID:       uuid.NewString(),
		Pattern:  input.Pattern,
		Action:   input.Action,
		Priority: input.Priority,
		Enabled:  enabled,
	})
}

// Update applies a partial update and returns the stored record.
func (s *Service) Update(ctx context.Context, id string, input UpdateRuleInput) (Rule, error) {
	if err := s.validate.Struct(input); err != nil {
		return Rule{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	rule, err := s.repo.Get(ctx, id)
	if err != nil {
		return Rule{}, err
	}
	if input.Pattern != nil {
		if !validPattern(*input.Pattern) {
			return Rule{}, fmt.Errorf("%w: malformed pattern", httpx.ErrValidation)
		}
		rule.Pattern = *input.Pattern
	}
	if input.Action != nil {
		rule.Action = *input.Action
	}
	if input.Priority != nil {
		rule.Priority = *input.Priority
	}
	if input.Enabled != nil {
		rule.Enabled = *input.Enabled
	}
	return s.repo.Update(ctx, rule)
}

// Delete removes a rule.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Toggle flips the enabled flag and returns the stored record.
func (s *Service) Toggle(ctx context.Context, id string) (Rule, error) {
	rule, err := s.repo.Get(ctx, id)
	if err != nil {
		return Rule{}, err
	}
	rule.Enabled = !rule.Enabled
	return s.repo.Update(ctx, rule)
}

// Match returns the action of the highest priority enabled rule whose glob
// pattern matches the subject, or ActionAsk when nothing matches.
func (s *Service) Match(ctx context.Context, subject string) (RuleAction, error) {
	enabled := true
	rules, _, err := s.repo.List(ctx, ListFilters{Enabled: &enabled})
	if err != nil {
		return "", err
	}
	for _, rule := range rules {
		if ok, _ := path.Match(rule.Pattern, subject); ok {
			return rule.Action, nil
		}
	}
	return ActionAsk, nil
}

func validPattern(pattern string) bool {
	_, err := path.Match(pattern, "sample")
	return err == nil
}
