// Package teams manages agent teams: a named group of member agents with a
// designated lead.
package teams

import "time"

// Team represents an agent team.
type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	LeadAgentID string    `json:"lead_agent_id"`
	Members     []Member  `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Member is an agent's membership in a team.
type Member struct {
	AgentID string `json:"agent_id"`
	Role    string `json:"role"`
}

// CreateTeamInput carries fields for creating a team. The lead agent must be
// one of the members.
type CreateTeamInput struct {
	Name        string        `json:"name" validate:"required,min=1,max=120"`
	Description string        `json:"description" validate:"max=500"`
	LeadAgentID string        `json:"lead_agent_id" validate:"required,uuid4"`
	Members     []MemberInput `json:"members" validate:"required,min=1,dive"`
}

// MemberInput describes one member in a create or update request.
type MemberInput struct {
	AgentID string `json:"agent_id" validate:"required,uuid4"`
	Role    string `json:"role" validate:"max=80"`
}

// UpdateTeamInput carries partial updates. Nil fields are left unchanged.
type UpdateTeamInput struct {
	Name        *string        `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string        `json:"description" validate:"omitempty,max=500"`
	LeadAgentID *string        `json:"lead_agent_id" validate:"omitempty,uuid4"`
	Members     *[]MemberInput `json:"members" validate:"omitempty,min=1,dive"`
}

// ListFilters narrows team listings.
type ListFilters struct {
	Search string
	Limit  int
	Offset int
}
