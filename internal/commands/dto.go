package commands

import "encoding/json"

// CreateCommandInput carries fields for creating a command. Arguments is kept
// raw so malformed shapes can be rejected before touching storage.
type CreateCommandInput struct {
	Name        string          `json:"name" validate:"required,min=1,max=120"`
	Description string          `json:"description" validate:"max=500"`
	Script      string          `json:"script" validate:"required"`
	Arguments   json.RawMessage `json:"arguments"`
	Enabled     *bool           `json:"enabled"`
}

// UpdateCommandInput carries partial updates. Nil fields are left unchanged.
type UpdateCommandInput struct {
	Name        *string         `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string         `json:"description" validate:"omitempty,max=500"`
	Script      *string         `json:"script" validate:"omitempty,min=1"`
	Arguments   json.RawMessage `json:"arguments"`
	Enabled     *bool           `json:"enabled"`
}

// RunCommandInput carries caller-provided argument values for a run.
type RunCommandInput struct {
	Arguments []string `json:"arguments"`
}

// ListFilters narrows command listings.
type ListFilters struct {
	Search  string
	Enabled *bool
	Limit   int
	Offset  int
}
