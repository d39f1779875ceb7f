package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/umbra-img/umbra/internal/auth"
)

// SessionSweepJob removes expired tokens that no verification has touched.
// Lazy eviction during verification stays authoritative; the sweep is
// storage hygiene only.
type SessionSweepJob struct {
	manager *auth.Manager
	logger  *slog.Logger
}

// NewSessionSweepJob constructs the job.
func NewSessionSweepJob(manager *auth.Manager, logger *slog.Logger) *SessionSweepJob {
	return &SessionSweepJob{manager: manager, logger: logger}
}

// Handle processes TaskSessionSweep tasks.
func (j *SessionSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	removed, err := j.manager.SweepExpired(ctx)
	if err != nil {
		j.logger.Error("session sweep", slog.Any("error", err))
		return err
	}
	if removed > 0 {
		j.logger.Info("session sweep", slog.Int("removed", removed))
	}
	return nil
}
