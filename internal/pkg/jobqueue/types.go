package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeDiaryGeneration JobType = "diary_generation"
	JobTypeLyricAlignment  JobType = "lyric_alignment"
	JobTypeAudioArchive    JobType = "audio_archive"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// DiaryGenerationJobPayload contains the payload for diary generation jobs
type DiaryGenerationJobPayload struct {
	SessionID uint `json:"session_id"`
	UserID    uint `json:"user_id"`
}

// ToMap converts the payload to a map for storage
func (p DiaryGenerationJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"session_id": p.SessionID,
		"user_id":    p.UserID,
	}
}

// FromMap creates a payload from a map
func DiaryGenerationJobPayloadFromMap(data map[string]interface{}) (*DiaryGenerationJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload DiaryGenerationJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// LyricAlignmentJobPayload contains the payload for lyric alignment jobs
type LyricAlignmentJobPayload struct {
	MusicID uint `json:"music_id"`
}

// ToMap converts the payload to a map for storage
func (p LyricAlignmentJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"music_id": p.MusicID,
	}
}

// FromMap creates a payload from a map
func LyricAlignmentJobPayloadFromMap(data map[string]interface{}) (*LyricAlignmentJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload LyricAlignmentJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// AudioArchiveJobPayload contains the payload for audio archive jobs
type AudioArchiveJobPayload struct {
	MusicID uint `json:"music_id"`
}

// ToMap converts the payload to a map for storage
func (p AudioArchiveJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"music_id": p.MusicID,
	}
}

// FromMap creates a payload from a map
func AudioArchiveJobPayloadFromMap(data map[string]interface{}) (*AudioArchiveJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload AudioArchiveJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
