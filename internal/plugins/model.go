// Package plugins manages installed plugins and the marketplace search that
// feeds the install flow.
package plugins

import "time"

// Plugin represents an installed plugin.
type Plugin struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	Enabled     bool      `json:"enabled"`
	InstalledAt time.Time `json:"installed_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MarketplaceEntry is a plugin listing from the marketplace.
type MarketplaceEntry struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

// InstallPluginInput carries fields for installing a plugin.
type InstallPluginInput struct {
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Version     string `json:"version" validate:"required"`
	Description string `json:"description" validate:"max=500"`
	Source      string `json:"source" validate:"required,url"`
	Enabled     *bool  `json:"enabled"`
}

// ListFilters narrows plugin listings.
type ListFilters struct {
	Search  string
	Enabled *bool
	Limit   int
	Offset  int
}
