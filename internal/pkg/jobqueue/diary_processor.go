package jobqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/MelodiaryApp/Melodiary/app/models"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/database"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/voice"
)

// processDiaryGenerationJob turns a completed call session into a diary
// entry. The session's DiaryEntryID is the duplicate guard: a session that
// already has an entry is treated as done, not as an error, so retried or
// re-delivered work never produces a second entry.
func (q *Queue) processDiaryGenerationJob(ctx context.Context, job *Job) error {
	payload, err := DiaryGenerationJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse diary generation job payload: %w", err)
	}

	log.Infof("[DiaryGen] Processing diary generation for session %d (user %d)", payload.SessionID, payload.UserID)

	db := database.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	var session models.CallSession
	if err := db.First(&session, payload.SessionID).Error; err != nil {
		return fmt.Errorf("failed to load call session %d: %w", payload.SessionID, err)
	}

	if session.DiaryEntryID != nil {
		log.Infof("[DiaryGen] Session %d already has diary entry %d, skipping", session.ID, *session.DiaryEntryID)
		return nil
	}

	if !session.HasContent() {
		log.Warnf("[DiaryGen] Session %d has no transcript content, skipping", session.ID)
		return nil
	}

	title, content := voice.ComposeDiaryEntry(&session, time.Now())
	if content == "" {
		log.Warnf("[DiaryGen] Session %d produced empty diary content, skipping", session.ID)
		return nil
	}

	sessionID := session.ID
	entry := &models.DiaryEntry{
		UserID:        session.UserID,
		CallSessionID: &sessionID,
		Title:         title,
		Content:       content,
		Generated:     true,
	}

	// Entry creation and back-link are committed together so a crash
	// between the two cannot leave an unlinked entry behind.
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return tx.Model(&models.CallSession{}).
			Where("id = ? AND diary_entry_id IS NULL", session.ID).
			Update("diary_entry_id", entry.ID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create diary entry for session %d: %w", session.ID, err)
	}

	log.Infof("[DiaryGen] Created diary entry %d for session %d", entry.ID, session.ID)
	return nil
}
