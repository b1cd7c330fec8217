// Package agents manages agent definitions: named model configurations with a
// system prompt and a tool allowlist.
package agents

import "time"

// Agent represents a configured agent.
type Agent struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Model        string    `json:"model"`
	SystemPrompt string    `json:"system_prompt"`
	Tools        []string  `json:"tools"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
