// Package review manages automated pull request reviews and the verdict
// dashboard.
package review

import "time"

// Verdict enumerates review outcomes.
type Verdict string

const (
	VerdictPending        Verdict = "pending"
	VerdictApprove        Verdict = "approve"
	VerdictRequestChanges Verdict = "request_changes"
	VerdictComment        Verdict = "comment"
)

// PRReview represents one reviewed pull request.
type PRReview struct {
	ID         string     `json:"id"`
	Repo       string     `json:"repo"`
	Number     int        `json:"number"`
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	Verdict    Verdict    `json:"verdict"`
	Confidence float64    `json:"confidence"`
	Summary    string     `json:"summary"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CreateReviewInput registers a pull request for review.
type CreateReviewInput struct {
	Repo   string `json:"repo" validate:"required,min=1,max=200"`
	Number int    `json:"number" validate:"required,gt=0"`
	Title  string `json:"title" validate:"required,max=300"`
	Author string `json:"author" validate:"required,max=120"`
}

// Stats aggregates verdict counts for the dashboard.
type Stats struct {
	Total         int `json:"total"`
	Pending       int `json:"pending"`
	Approved      int `json:"approved"`
	ChangesAsked  int `json:"changes_requested"`
	CommentedOnly int `json:"commented"`
}

// ListFilters narrows review listings.
type ListFilters struct {
	Search  string
	Verdict Verdict
	Limit   int
	Offset  int
}
