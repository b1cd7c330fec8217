// Package hooks manages lifecycle hooks: shell commands bound to runtime
// events with an optional matcher.
package hooks

import "time"

// HookEvent enumerates the runtime events a hook can bind to.
type HookEvent string

const (
	EventPreToolUse   HookEvent = "pre_tool_use"
	EventPostToolUse  HookEvent = "post_tool_use"
	EventSessionStart HookEvent = "session_start"
	EventSessionEnd   HookEvent = "session_end"
	EventNotification HookEvent = "notification"
)

// Hook represents a configured hook.
type Hook struct {
	ID             string    `json:"id"`
	Event          HookEvent `json:"event"`
	Matcher        string    `json:"matcher"`
	Command        string    `json:"command"`
	TimeoutSeconds int       `json:"timeout_seconds"`
	Enabled        bool      `json:"enabled"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateHookInput carries fields for creating a hook.
type CreateHookInput struct {
	Event          HookEvent `json:"event" validate:"required,oneof=pre_tool_use post_tool_use session_start session_end notification"`
	Matcher        string    `json:"matcher" validate:"max=300"`
	Command        string    `json:"command" validate:"required"`
	TimeoutSeconds int       `json:"timeout_seconds" validate:"gte=0,lte=600"`
	Enabled        *bool     `json:"enabled"`
}

// UpdateHookInput carries partial updates. Nil fields are left unchanged.
type UpdateHookInput struct {
	Event          *HookEvent `json:"event" validate:"omitempty,oneof=pre_tool_use post_tool_use session_start session_end notification"`
	Matcher        *string    `json:"matcher" validate:"omitempty,max=300"`
	Command        *string    `json:"command" validate:"omitempty,min=1"`
	TimeoutSeconds *int       `json:"timeout_seconds" validate:"omitempty,gte=0,lte=600"`
	Enabled        *bool      `json:"enabled"`
}

// ListFilters narrows hook listings.
type ListFilters struct {
	Search  string
	Event   HookEvent
	Enabled *bool
	Limit   int
	Offset  int
}
