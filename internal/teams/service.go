package teams

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

// Service handles team business logic.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// List returns teams matching the filters plus the unfiltered total.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Team, int, error) {
	return s.repo.List(ctx, filters)
}

// Get returns one team.
func (s *Service) Get(ctx context.Context, id string) (Team, error) {
	return s.repo.Get(ctx, id)
}

func toMembers(inputs []MemberInput) ([]Member, error) {
	members := make([]Member, 0, len(inputs))
	seen := map[string]bool{}
	for _, in := range inputs {
		if seen[in.AgentID] {
			return nil, fmt.Errorf("%w: duplicate member %s", httpx.ErrValidation, in.AgentID)
		}
		seen[in.AgentID] = true
		members = append(members, Member{AgentID: in.AgentID, Role: in.Role})
	}
	return members, nil
}

func leadIsMember(lead string, members []Member) bool {
	for _, m := range members {
		if m.AgentID == lead {
			return true
		}
	}
	return false
}

// Create validates input and stores a new team.
func (s *Service) Create(ctx context.Context, input CreateTeamInput) (Team, error) {
	if err := s.validate.Struct(input); err != nil {
		return Team{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	members, err := toMembers(input.Members)
	if err != nil {
		return Team{}, err
	}
	if !leadIsMember(input.LeadAgentID, members) {
		return Team{}, fmt.Errorf("%w: lead agent must be a member", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, Team{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		LeadAgentID: input.LeadAgentID,
		Members:     members,
	})
}

// Update applies a partial update and returns the stored record.
func (s *Service) Update(ctx context.Context, id string, input UpdateTeamInput) (Team, error) {
	if err := s.validate.Struct(input); err != nil {
		return Team{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	team, err := s.repo.Get(ctx, id)
	if err != nil {
		return Team{}, err
	}
	if input.Name != nil {
		team.Name = *input.Name
	}
	if input.Description != nil {
		team.Description = *input.Description
	}
	if input.LeadAgentID != nil {
		team.LeadAgentID = *input.LeadAgentID
	}
	if input.Members != nil {
		members, err := toMembers(*input.Members)
		if err != nil {
			return Team{}, err
		}
		team.Members = members
	}
	if !leadIsMember(team.LeadAgentID, team.Members) {
		return Team{}, fmt.Errorf("%w: lead agent must be a member", httpx.ErrValidation)
	}
	return s.repo.Update(ctx, team)
}

// Delete removes a team.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
