package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionSweep reclaims expired session tokens from the token store.
	TaskSessionSweep = "auth:session_sweep"
	// TaskFilePurge removes stale uploads and enhanced outputs from disk.
	TaskFilePurge = "images:file_purge"
)

// SessionSweepPayload carries no parameters; the sweep always covers the
// whole token store.
type SessionSweepPayload struct{}

// NewSessionSweepTask constructs an Asynq task.
func NewSessionSweepTask() (*asynq.Task, error) {
	data, err := json.Marshal(SessionSweepPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionSweep, data), nil
}

// FilePurgePayload limits the purge to files older than MaxAgeHours.
type FilePurgePayload struct {
	MaxAgeHours int `json:"max_age_hours"`
}

// NewFilePurgeTask constructs an Asynq task.
func NewFilePurgeTask(payload FilePurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFilePurge, data), nil
}
