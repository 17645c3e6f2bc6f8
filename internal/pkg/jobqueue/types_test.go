package jobqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiaryGenerationJobPayloadRoundTrip(t *testing.T) {
	payload := DiaryGenerationJobPayload{SessionID: 12, UserID: 7}

	restored, err := DiaryGenerationJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)

	assert.Equal(t, payload.SessionID, restored.SessionID)
	assert.Equal(t, payload.UserID, restored.UserID)
}

func TestLyricAlignmentJobPayloadRoundTrip(t *testing.T) {
	payload := LyricAlignmentJobPayload{MusicID: 42}

	restored, err := LyricAlignmentJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, uint(42), restored.MusicID)
}

func TestAudioArchiveJobPayloadRoundTrip(t *testing.T) {
	payload := AudioArchiveJobPayload{MusicID: 42}

	restored, err := AudioArchiveJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, uint(42), restored.MusicID)
}

func TestJobIsRetryable(t *testing.T) {
	tests := []struct {
		name       string
		status     JobStatus
		retryCount int
		maxRetries int
		expected   bool
	}{
		{"failed below limit", JobStatusFailed, 1, 3, true},
		{"failed at limit", JobStatusFailed, 3, 3, false},
		{"pending never retryable", JobStatusPending, 0, 3, false},
		{"completed never retryable", JobStatusCompleted, 0, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &Job{Status: tt.status, RetryCount: tt.retryCount, MaxRetries: tt.maxRetries}
			assert.Equal(t, tt.expected, job.IsRetryable())
		})
	}
}

func TestJobStateTransitions(t *testing.T) {
	job := &Job{ID: "job-1", Type: JobTypeDiaryGeneration, Status: JobStatusPending, MaxRetries: 3}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	assert.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("provider timeout")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "provider timeout", job.ErrorMsg)
	assert.Equal(t, 1, job.RetryCount)
	assert.True(t, job.IsRetryable())

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.NotNil(t, job.CompletedAt)
	assert.Empty(t, job.ErrorMsg)
}
