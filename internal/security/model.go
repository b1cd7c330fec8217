// Package security manages security scans and the findings dashboard.
package security

import "time"

// ScanStatus enumerates scan lifecycle states.
type ScanStatus string

const (
	StatusQueued    ScanStatus = "queued"
	StatusRunning   ScanStatus = "running"
	StatusCompleted ScanStatus = "completed"
	StatusFailed    ScanStatus = "failed"
)

// Scan represents one security scan run.
type Scan struct {
	ID          string     `json:"id"`
	Target      string     `json:"target"`
	Status      ScanStatus `json:"status"`
	Critical    int        `json:"critical"`
	High        int        `json:"high"`
	Medium      int        `json:"medium"`
	Low         int        `json:"low"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CreateScanInput carries fields for queueing a scan.
type CreateScanInput struct {
	Target string `json:"target" validate:"required,min=1,max=300"`
}

// Summary aggregates the latest completed scan per target.
type Summary struct {
	TotalScans     int `json:"total_scans"`
	CompletedScans int `json:"completed_scans"`
	OpenCritical   int `json:"open_critical"`
	OpenHigh       int `json:"open_high"`
}

// ListFilters narrows scan listings.
type ListFilters struct {
	Search string
	Status ScanStatus
	Limit  int
	Offset int
}
