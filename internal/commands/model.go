// Package commands manages stored command definitions: named scripts with a
// declared argument list.
package commands

import "time"

// Command represents a stored command.
type Command struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Script      string    `json:"script"`
	Arguments   []string  `json:"arguments"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
