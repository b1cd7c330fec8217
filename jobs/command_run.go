package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/agentdeck/agentdeck/internal/commands"
)

// CommandRunJob executes a queued command run.
type CommandRunJob struct {
	Commands *commands.Service
	Logger   *slog.Logger
}

// NewCommandRunJob initialises the command run handler.
func NewCommandRunJob(commandsSvc *commands.Service, logger *slog.Logger) *CommandRunJob {
	return &CommandRunJob{Commands: commandsSvc, Logger: logger}
}

// Handle executes the command run.
func (j *CommandRunJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Commands == nil {
		return errors.New("command run: handler not configured")
	}
	var payload CommandRunPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	cmd, err := j.Commands.Get(ctx, payload.CommandID)
	if err != nil {
		j.Logger.Warn("command run skipped", slog.String("command_id", payload.CommandID), slog.Any("error", err))
		return asynq.SkipRetry
	}
	if !cmd.Enabled {
		j.Logger.Info("command disabled since enqueue, skipping", slog.String("command_id", cmd.ID))
		return nil
	}

	// Script execution happens in the sandboxed runner; the worker records the
	// dispatch so operators can trace what ran and with which arguments.
	j.Logger.Info("command dispatched",
		slog.String("command_id", cmd.ID),
		slog.String("script", cmd.Script),
		slog.Any("arguments", payload.Arguments))
	return nil
}
