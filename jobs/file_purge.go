package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/umbra-img/umbra/internal/images"
)

// FilePurgeJob deletes uploads and enhanced outputs past their retention.
type FilePurgeJob struct {
	store  *images.FileStore
	maxAge time.Duration
	logger *slog.Logger
}

// NewFilePurgeJob constructs the job. maxAge is the default retention when a
// task carries no explicit age.
func NewFilePurgeJob(store *images.FileStore, maxAge time.Duration, logger *slog.Logger) *FilePurgeJob {
	return &FilePurgeJob{store: store, maxAge: maxAge, logger: logger}
}

// Handle processes TaskFilePurge tasks.
func (j *FilePurgeJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload FilePurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	maxAge := j.maxAge
	if payload.MaxAgeHours > 0 {
		maxAge = time.Duration(payload.MaxAgeHours) * time.Hour
	}

	removed, err := j.store.PurgeOlderThan(time.Now().Add(-maxAge))
	if err != nil {
		j.logger.Error("file purge", slog.Any("error", err))
		return err
	}
	if removed > 0 {
		j.logger.Info("file purge", slog.Int("removed", removed))
	}
	return nil
}
