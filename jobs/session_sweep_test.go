package jobs_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/umbra-img/umbra/internal/auth"
	"github.com/umbra-img/umbra/internal/platform/kv"
	"github.com/umbra-img/umbra/jobs"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSessionSweepRemovesExpiredTokens(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	manager := auth.NewManager(store, time.Nanosecond)

	_, err := manager.Register(ctx, "a@b.com", "secret123", "A")
	require.NoError(t, err)
	token, _, err := manager.Login(ctx, "a@b.com", "secret123")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	task, err := jobs.NewSessionSweepTask()
	require.NoError(t, err)

	job := jobs.NewSessionSweepJob(manager, discardLogger())
	require.NoError(t, job.Handle(ctx, task))

	entries, err := store.Scan(ctx, "tokens")
	require.NoError(t, err)
	require.Empty(t, entries)

	_, ok, err := manager.Verify(ctx, token)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSessionSweepKeepsLiveTokens(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	manager := auth.NewManager(store, 0)

	_, err := manager.Register(ctx, "a@b.com", "secret123", "A")
	require.NoError(t, err)
	token, _, err := manager.Login(ctx, "a@b.com", "secret123")
	require.NoError(t, err)

	task, err := jobs.NewSessionSweepTask()
	require.NoError(t, err)
	require.NoError(t, jobs.NewSessionSweepJob(manager, discardLogger()).Handle(ctx, task))

	_, ok, err := manager.Verify(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)
}
