package agents

// CreateAgentInput carries fields for creating an agent.
type CreateAgentInput struct {
	Name         string   `json:"name" validate:"required,min=1,max=120"`
	Description  string   `json:"description" validate:"max=500"`
	Model        string   `json:"model" validate:"required"`
	SystemPrompt string   `json:"system_prompt" validate:"required"`
	Tools        []string `json:"tools" validate:"dive,required"`
	Enabled      *bool    `json:"enabled"`
}

// UpdateAgentInput carries partial updates. Nil fields are left unchanged.
type UpdateAgentInput struct {
	Name         *string   `json:"name" validate:"omitempty,min=1,max=120"`
	Description  *string   `json:"description" validate:"omitempty,max=500"`
	Model        *string   `json:"model" validate:"omitempty,min=1"`
	SystemPrompt *string   `json:"system_prompt" validate:"omitempty,min=1"`
	Tools        *[]string `json:"tools" validate:"omitempty,dive,required"`
	Enabled      *bool     `json:"enabled"`
}

// ListFilters narrows agent listings.
type ListFilters struct {
	Search  string
	Enabled *bool
	Limit   int
	Offset  int
}
