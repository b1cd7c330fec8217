package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/agentdeck/agentdeck/internal/usage"
)

// UsageRollupJob folds raw usage events into daily aggregates.
type UsageRollupJob struct {
	Usage  *usage.Service
	Logger *slog.Logger
}

// NewUsageRollupJob initialises the rollup handler.
func NewUsageRollupJob(usageSvc *usage.Service, logger *slog.Logger) *UsageRollupJob {
	return &UsageRollupJob{Usage: usageSvc, Logger: logger}
}

// Handle executes the rollup.
func (j *UsageRollupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Usage == nil {
		return errors.New("usage rollup: handler not configured")
	}
	var payload UsageRollupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	if err := j.Usage.Rollup(ctx, payload.Day); err != nil {
		return err
	}
	j.Logger.Info("usage rollup completed", slog.String("day", payload.Day))
	return nil
}
