package job_test

import (
	"testing"
	"time"

	"splitship/internal/core/domain/model/job"
	"splitship/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRetryJob(t *testing.T) {
	t.Run("should create job with first attempt recorded", func(t *testing.T) {
		retryJob, err := job.NewRetryJob("evt-1", "demo.example.com", "orders/create", []byte(`{}`), "boom")

		require.NoError(t, err)
		require.NoError(t, retryJob.ID.Validate())
		assert.Equal(t, "evt-1", retryJob.EventID)
		assert.Equal(t, "demo.example.com", retryJob.ShopDomain)
		assert.Equal(t, "orders/create", retryJob.Topic)
		assert.Equal(t, 1, retryJob.Attempts)
		assert.Equal(t, "boom", retryJob.LastError)
		assert.False(t, retryJob.Exhausted())
		// First retry is due after the base delay.
		assert.WithinDuration(t, time.Now().UTC().Add(5*time.Second), retryJob.NextAttemptAt, time.Second)
	})

	t.Run("should require event id and topic", func(t *testing.T) {
		_, err := job.NewRetryJob("", "demo.example.com", "orders/create", nil, "boom")
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)

		_, err = job.NewRetryJob("evt-1", "demo.example.com", "", nil, "boom")
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestRetryJob_RecordFailure(t *testing.T) {
	t.Run("should double the delay per attempt", func(t *testing.T) {
		retryJob, err := job.NewRetryJob("evt-1", "demo.example.com", "orders/create", nil, "boom")
		require.NoError(t, err)

		now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		expected := []time.Duration{
			10 * time.Second,
			20 * time.Second,
			40 * time.Second,
			80 * time.Second,
		}

		for i, delay := range expected {
			retryJob.RecordFailure("still broken", now)
			assert.Equal(t, i+2, retryJob.Attempts)
			assert.Equal(t, now.Add(delay), retryJob.NextAttemptAt)
		}
		assert.Equal(t, "still broken", retryJob.LastError)
	})

	t.Run("delay caps at one hour", func(t *testing.T) {
		retryJob, err := job.NewRetryJob("evt-1", "demo.example.com", "orders/create", nil, "boom")
		require.NoError(t, err)
		retryJob.Attempts = 40

		now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		retryJob.RecordFailure("still broken", now)

		assert.Equal(t, now.Add(time.Hour), retryJob.NextAttemptAt)
	})
}

func TestRetryJob_Exhausted(t *testing.T) {
	retryJob, err := job.NewRetryJob("evt-1", "demo.example.com", "orders/create", nil, "boom")
	require.NoError(t, err)

	for retryJob.Attempts < job.MaxAttempts-1 {
		retryJob.RecordFailure("still broken", time.Now().UTC())
		assert.False(t, retryJob.Exhausted())
	}

	retryJob.RecordFailure("still broken", time.Now().UTC())
	assert.Equal(t, job.MaxAttempts, retryJob.Attempts)
	assert.True(t, retryJob.Exhausted())
}

func TestNewDeadLetter(t *testing.T) {
	retryJob, err := job.NewRetryJob("evt-1", "demo.example.com", "orders/create", []byte(`{"id":"ord-1"}`), "boom")
	require.NoError(t, err)
	retryJob.Attempts = job.MaxAttempts

	deadLetter := job.NewDeadLetter(retryJob)

	require.NoError(t, deadLetter.ID.Validate())
	assert.NotEqual(t, retryJob.ID, deadLetter.ID)
	assert.Equal(t, retryJob.EventID, deadLetter.EventID)
	assert.Equal(t, retryJob.ShopDomain, deadLetter.ShopDomain)
	assert.Equal(t, retryJob.Topic, deadLetter.Topic)
	assert.Equal(t, retryJob.Payload, deadLetter.Payload)
	assert.Equal(t, job.MaxAttempts, deadLetter.Attempts)
	assert.Equal(t, "boom", deadLetter.LastError)
	assert.WithinDuration(t, time.Now().UTC(), deadLetter.FailedAt, time.Second)
}
