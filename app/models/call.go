package models

import "time"

const (
	CallJobStatusQueued    = "queued"
	CallJobStatusScheduled = "scheduled"
	CallJobStatusStarted   = "started"
	CallJobStatusCompleted = "completed"
	CallJobStatusFailed    = "failed"
	CallJobStatusCanceled  = "canceled"
)

// CallJob is a scheduled or inbound voice call tracked by this system.
// ProviderCallID is the dedup key for end-of-call reports; reports for
// calls we never tracked are acknowledged and ignored.
type CallJob struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"not null;index" json:"user_id"`
	ProviderCallID string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"provider_call_id"`
	PhoneNumber    string     `gorm:"type:varchar(32);index" json:"phone_number"`
	Status         string     `gorm:"type:varchar(16);not null;default:'queued';index" json:"status"`
	ScheduledAt    *time.Time `gorm:"type:timestamp;default:null" json:"scheduled_at,omitempty"`
	StartedAt      *time.Time `gorm:"type:timestamp;default:null" json:"started_at,omitempty"`
	EndedAt        *time.Time `gorm:"type:timestamp;default:null" json:"ended_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the job reached a final state. No handler
// transitions out of completed, failed or canceled.
func (j *CallJob) IsTerminal() bool {
	switch j.Status {
	case CallJobStatusCompleted, CallJobStatusFailed, CallJobStatusCanceled:
		return true
	default:
		return false
	}
}

// CanTransitionTo enforces queued -> scheduled -> started -> completed,
// with failed and canceled reachable from any non-terminal state.
func (j *CallJob) CanTransitionTo(next string) bool {
	if j.IsTerminal() {
		return false
	}
	switch next {
	case CallJobStatusFailed, CallJobStatusCanceled:
		return true
	case CallJobStatusScheduled:
		return j.Status == CallJobStatusQueued
	case CallJobStatusStarted:
		return j.Status == CallJobStatusQueued || j.Status == CallJobStatusScheduled
	case CallJobStatusCompleted:
		return j.Status == CallJobStatusStarted || j.Status == CallJobStatusScheduled || j.Status == CallJobStatusQueued
	default:
		return false
	}
}

// CallSession holds the metadata attached when a call completes. Exactly
// one diary entry may be generated per session; DiaryEntryID doubles as
// the guard against duplicate workflow scheduling.
type CallSession struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CallJobID       uint      `gorm:"not null;uniqueIndex" json:"call_job_id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	Transcript      string    `gorm:"type:longtext" json:"transcript"`
	MessagesJSON    string    `gorm:"type:longtext" json:"messages_json"`
	RecordingURL    string    `gorm:"type:varchar(512)" json:"recording_url"`
	EndedReason     string    `gorm:"type:varchar(100)" json:"ended_reason"`
	DurationSeconds float64   `gorm:"not null;default:0" json:"duration_seconds"`
	DiaryEntryID    *uint     `gorm:"index" json:"diary_entry_id,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// HasContent reports whether there is anything to generate a diary from.
func (s *CallSession) HasContent() bool {
	return s.Transcript != "" || s.MessagesJSON != "" && s.MessagesJSON != "[]"
}
