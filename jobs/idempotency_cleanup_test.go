package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubKeyCleaner struct {
	olderThan time.Duration
	calls     int
}

func (s *stubKeyCleaner) Cleanup(ctx context.Context, olderThan time.Duration) error {
	s.calls++
	s.olderThan = olderThan
	return nil
}

func TestIdempotencyCleanupHandle(t *testing.T) {
	cleaner := &stubKeyCleaner{}
	job := NewIdempotencyCleanupJob(cleaner, nil, nil)

	task, err := NewIdempotencyCleanupTask(48 * time.Hour)
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, cleaner.calls)
	assert.Equal(t, 48*time.Hour, cleaner.olderThan)
}

func TestIdempotencyCleanupDefaultsRetention(t *testing.T) {
	cleaner := &stubKeyCleaner{}
	job := NewIdempotencyCleanupJob(cleaner, nil, nil)

	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskIdempotencyCleanup, []byte(`{}`))))
	assert.Equal(t, 7*24*time.Hour, cleaner.olderThan)
}
