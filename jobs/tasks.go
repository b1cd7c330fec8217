// Package jobs defines the background task types and the Asynq worker that
// processes them.
package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskAgentRun executes an agent against its configured prompt.
	TaskAgentRun = "agent:run"
	// TaskCommandRun executes a stored command script.
	TaskCommandRun = "command:run"
	// TaskSecurityScan runs a security scan over a target path.
	TaskSecurityScan = "security:scan"
	// TaskUsageRollup aggregates raw token usage into daily rows.
	TaskUsageRollup = "usage:rollup"
	// TaskReviewRecheck re-reviews a registered pull request.
	TaskReviewRecheck = "review:recheck"
)

// AgentRunPayload identifies the agent to execute.
type AgentRunPayload struct {
	AgentID string `json:"agent_id"`
}

// CommandRunPayload identifies the command to execute with its arguments.
type CommandRunPayload struct {
	CommandID string   `json:"command_id"`
	Arguments []string `json:"arguments,omitempty"`
}

// SecurityScanPayload identifies the scan to run.
type SecurityScanPayload struct {
	ScanID string `json:"scan_id"`
}

// UsageRollupPayload bounds the rollup window. Empty Day means yesterday.
type UsageRollupPayload struct {
	Day string `json:"day,omitempty"`
}

// ReviewRecheckPayload identifies the review to run again.
type ReviewRecheckPayload struct {
	ReviewID string `json:"review_id"`
}

// NewAgentRunTask constructs an agent run task.
func NewAgentRunTask(payload AgentRunPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAgentRun, data), nil
}

// NewCommandRunTask constructs a command run task.
func NewCommandRunTask(payload CommandRunPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCommandRun, data), nil
}

// NewSecurityScanTask constructs a security scan task.
func NewSecurityScanTask(payload SecurityScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSecurityScan, data), nil
}

// NewUsageRollupTask constructs a usage rollup task.
func NewUsageRollupTask(payload UsageRollupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskUsageRollup, data), nil
}

// NewReviewRecheckTask constructs a review recheck task.
func NewReviewRecheckTask(payload ReviewRecheckPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReviewRecheck, data), nil
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueAgentRun enqueues an agent run and returns the queued task id.
func (c *Client) EnqueueAgentRun(ctx context.Context, agentID string) (string, error) {
	task, err := NewAgentRunTask(AgentRunPayload{AgentID: agentID})
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// EnqueueCommandRun enqueues a command run and returns the queued task id.
func (c *Client) EnqueueCommandRun(ctx context.Context, commandID string, arguments []string) (string, error) {
	task, err := NewCommandRunTask(CommandRunPayload{CommandID: commandID, Arguments: arguments})
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// EnqueueSecurityScan enqueues a security scan and returns the queued task id.
func (c *Client) EnqueueSecurityScan(ctx context.Context, scanID string) (string, error) {
	task, err := NewSecurityScanTask(SecurityScanPayload{ScanID: scanID})
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// EnqueueReviewRecheck enqueues a review recheck and returns the queued task id.
func (c *Client) EnqueueReviewRecheck(ctx context.Context, reviewID string) (string, error) {
	task, err := NewReviewRecheckTask(ReviewRecheckPayload{ReviewID: reviewID})
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
