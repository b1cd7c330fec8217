// Package usage aggregates token usage into the dashboard shown on the
// console home screen.
package usage

import "time"

// Record is one raw usage event.
type Record struct {
	ID           string    `json:"id"`
	Model        string    `json:"model"`
	InputTokens  int64     `json:"input_tokens"`
	OutputTokens int64     `json:"output_tokens"`
	CostUSD      float64   `json:"cost_usd"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// ModelTotal aggregates usage per model.
type ModelTotal struct {
	Model        string  `json:"model"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// DailyTotal aggregates usage per day.
type DailyTotal struct {
	Day          string  `json:"day"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// Dashboard is the combined usage view.
type Dashboard struct {
	TotalInputTokens  int64        `json:"total_input_tokens"`
	TotalOutputTokens int64        `json:"total_output_tokens"`
	TotalCostUSD      float64      `json:"total_cost_usd"`
	ByModel           []ModelTotal `json:"by_model"`
	ByDay             []DailyTotal `json:"by_day"`
}

// RecordInput registers a raw usage event.
type RecordInput struct {
	Model        string  `json:"model" validate:"required"`
	InputTokens  int64   `json:"input_tokens" validate:"gte=0"`
	OutputTokens int64   `json:"output_tokens" validate:"gte=0"`
	CostUSD      float64 `json:"cost_usd" validate:"gte=0"`
}
