package jobcontext

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobBegin_CarriesMetadata(t *testing.T) {
	jobID := uuid.New()
	ctx, cancel := JobBegin(context.Background(), jobID, "insight_pipeline", 3)
	defer cancel()

	gotID, ok := GetJobID(ctx)
	require.True(t, ok)
	assert.Equal(t, jobID, gotID)

	jobType, ok := GetJobType(ctx)
	require.True(t, ok)
	assert.Equal(t, "insight_pipeline", jobType)

	assert.Equal(t, 3, GetWorkerID(ctx))
	assert.Equal(t, 0, GetRetryAttempt(ctx))
	assert.Equal(t, 3, GetMaxRetries(ctx))

	start, ok := GetJobStartTime(ctx)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), start, time.Second)

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), deadline, time.Second)
}

func TestGetJobMetadata_DefaultsOnBareContext(t *testing.T) {
	meta := GetJobMetadata(context.Background())

	assert.Equal(t, uuid.Nil, meta.JobID)
	assert.Empty(t, meta.JobType)
	assert.Equal(t, -1, meta.WorkerID)
	assert.Equal(t, 0, meta.RetryAttempt)
	assert.Equal(t, 3, meta.MaxRetries)
}

func TestSetMaxRetries_OverridesDefault(t *testing.T) {
	ctx := SetMaxRetries(context.Background(), 1)
	assert.Equal(t, 1, GetMaxRetries(ctx))
}

func TestJobEnd_RunsOnce(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), "test_job", 0)
	defer cancel()

	calls := 0
	err := JobEnd(ctx, func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestJobEnd_NonRetryableFailsImmediately(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), "test_job", 0)
	defer cancel()

	calls := 0
	err := JobEnd(ctx, func(context.Context) error {
		calls++
		return errors.New("invalid payload shape")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-retryable")
	assert.Equal(t, 1, calls)
}

func TestJobEnd_RecoversPanic(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), "test_job", 0)
	defer cancel()

	err := JobEnd(ctx, func(context.Context) error {
		panic("boom")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic recovered")
}

func TestJobEnd_CancelledContextStopsRetries(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), "test_job", 0)
	cancel()

	calls := 0
	err := JobEnd(ctx, func(context.Context) error {
		calls++
		return nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
	assert.Zero(t, calls)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"timeout", errors.New("dial tcp: i/o timeout"), true},
		{"connection refused", errors.New("connection refused"), true},
		{"deadlock", errors.New("pq: deadlock detected"), true},
		{"rate limit", errors.New("429 too many requests"), true},
		{"upstream 5xx", errors.New("provider returned status 502: bad gateway"), true},
		{"transcript pending", errors.New("Transcript is not ready yet; try again shortly"), true},
		{"validation", errors.New("invalid meeting url"), false},
		{"not found", errors.New("meeting not found"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryableError(tt.err))
		})
	}
}
