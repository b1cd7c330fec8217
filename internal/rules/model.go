// Package rules manages permission rules: pattern matched tool gates with a
// priority order.
package rules

import "time"

// RuleAction enumerates what a matching rule does.
type RuleAction string

const (
	ActionAllow RuleAction = "allow"
	ActionDeny  RuleAction = "deny"
	ActionAsk   RuleAction = "ask"
)

// Rule represents a permission rule. Lower Priority wins.
type Rule struct {
	ID        string     `json:"id"`
	Pattern   string     `json:"pattern"`
	Action    RuleAction `json:"action"`
	Priority  int        `json:"priority"`
	Enabled   bool       `json:"enabled"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CreateRuleInput carries fields for creating a rule.
type CreateRuleInput struct {
	Pattern  string     `json:"pattern" validate:"required,min=1,max=300"`
	Action   RuleAction `json:"action" validate:"required,oneof=allow deny ask"`
	Priority int        `json:"priority" validate:"gte=0"`
	Enabled  *bool      `json:"enabled"`
}

// UpdateRuleInput carries partial updates. Nil fields are left unchanged.
type UpdateRuleInput struct {
	Pattern  *string     `json:"pattern" validate:"omitempty,min=1,max=300"`
	Action   *RuleAction `json:"action" validate:"omitempty,oneof=allow deny ask"`
	Priority *int        `json:"priority" validate:"omitempty,gte=0"`
	Enabled  *bool       `json:"enabled"`
}

// ListFilters narrows rule listings.
type ListFilters struct {
	Search  string
	Enabled *bool
	Limit   int
	Offset  int
}
