package voice

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/MelodiaryApp/Melodiary/app/models"
)

// DiaryScheduler schedules the follow-on diary generation workflow.
// Implemented by the job queue manager; injected so the service stays
// testable without Redis.
type DiaryScheduler interface {
	ScheduleDiaryGeneration(sessionID, userID uint) error
}

// CompletionResult describes how an end-of-call report was handled.
type CompletionResult struct {
	Ignored        bool
	Reason         string
	DiaryScheduled bool
	// ScheduleError is non-nil when the diary workflow could not be
	// enqueued. Scheduling is best-effort from the webhook's perspective;
	// the caller logs it but still acknowledges the delivery.
	ScheduleError error
}

// Service applies voice-provider webhooks to call state.
type Service struct {
	repo      Repository
	scheduler DiaryScheduler
}

// NewService creates a voice service from an injected repository and
// workflow scheduler.
func NewService(repo Repository, scheduler DiaryScheduler) *Service {
	return &Service{repo: repo, scheduler: scheduler}
}

// NewServiceFromDB creates a voice service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, scheduler DiaryScheduler) *Service {
	return NewService(NewRepository(db), scheduler)
}

// CompleteCall records an end-of-call report. Reports for calls this
// system never tracked are acknowledged and ignored — the provider also
// delivers reports for test calls. The diary-generation workflow is
// scheduled at most once per session: a session that already carries a
// diary entry short-circuits re-delivered reports.
func (s *Service) CompleteCall(ctx context.Context, report *EndOfCallReport) (*CompletionResult, error) {
	_ = ctx
	if report == nil || report.CallID == "" {
		return nil, errors.New("end-of-call report with call id is required")
	}

	job, err := s.repo.GetCallJobByProviderCallID(report.CallID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CompletionResult{Ignored: true, Reason: "Job not found"}, nil
		}
		return nil, err
	}

	if !job.IsTerminal() {
		now := time.Now()
		job.Status = models.CallJobStatusCompleted
		job.EndedAt = &now
		if err := s.repo.SaveCallJob(job); err != nil {
			return nil, err
		}
	}

	messagesJSON := ""
	if len(report.Messages) > 0 {
		if b, err := json.Marshal(report.Messages); err == nil {
			messagesJSON = string(b)
		}
	}
	session := &models.CallSession{
		CallJobID:       job.ID,
		UserID:          job.UserID,
		Transcript:      report.Transcript,
		MessagesJSON:    messagesJSON,
		RecordingURL:    report.RecordingURL,
		EndedReason:     report.EndedReason,
		DurationSeconds: report.DurationSeconds,
	}
	if err := s.repo.UpsertCallSession(session); err != nil {
		return nil, err
	}

	result := &CompletionResult{}
	switch {
	case session.DiaryEntryID != nil:
		result.Reason = "diary already exists, skipping"
	case !session.HasContent():
		result.Reason = "no transcript or messages"
	default:
		if err := s.scheduler.ScheduleDiaryGeneration(session.ID, session.UserID); err != nil {
			result.ScheduleError = err
		} else {
			result.DiaryScheduled = true
		}
	}
	return result, nil
}

// ResolveInboundCaller maps an inbound caller number to the owning user by
// way of their most recent call job.
func (s *Service) ResolveInboundCaller(ctx context.Context, phoneNumber string) (*models.User, error) {
	_ = ctx
	if phoneNumber == "" {
		return nil, errors.New("phone number is required")
	}
	job, err := s.repo.GetLatestCallJobByPhone(phoneNumber)
	if err != nil {
		return nil, err
	}
	return s.repo.GetUserByID(job.UserID)
}
