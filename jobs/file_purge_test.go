package jobs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/umbra-img/umbra/internal/images"
	"github.com/umbra-img/umbra/jobs"
)

func TestFilePurgeRemovesStaleFiles(t *testing.T) {
	uploadDir, outputDir := t.TempDir(), t.TempDir()
	store, err := images.NewFileStore(uploadDir, outputDir)
	require.NoError(t, err)

	stale := filepath.Join(uploadDir, "old.jpg")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	fresh := filepath.Join(outputDir, "new_enhanced.jpg")
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0o644))

	task, err := jobs.NewFilePurgeTask(jobs.FilePurgePayload{MaxAgeHours: 24})
	require.NoError(t, err)

	job := jobs.NewFilePurgeJob(store, 24*time.Hour, discardLogger())
	require.NoError(t, job.Handle(context.Background(), task))

	_, err = os.Stat(stale)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	require.NoError(t, err)
}

func TestFilePurgeSkipsRetryOnBadPayload(t *testing.T) {
	store, err := images.NewFileStore(t.TempDir(), t.TempDir())
	require.NoError(t, err)

	job := jobs.NewFilePurgeJob(store, time.Hour, discardLogger())
	err = job.Handle(context.Background(), asynq.NewTask(jobs.TaskFilePurge, []byte("{broken")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
