package webhookevent

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MelodiaryApp/Melodiary/app/models"
)

// Input is the normalized input for webhook event persistence.
type Input struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// Service persists webhook payloads idempotently for audit and dedup.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Record stores the event unless the (provider, event ID) pair was already
// seen. Events without a provider-supplied ID are keyed by a payload hash.
func (s *Service) Record(ctx context.Context, in Input) (bool, *models.WebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.WebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	tx := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEvent
	if err := s.db.Where("provider = ? AND provider_event_id = ?", provider, eventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

// NeedsProcessing reports whether a recorded delivery still has work to do.
// A redelivery is skipped only when an earlier delivery finished without
// error; one that failed mid-mutation (or crashed before MarkProcessed)
// must be reapplied. That is safe because the mutations converge.
func NeedsProcessing(created bool, stored *models.WebhookEvent) bool {
	if created || stored == nil {
		return true
	}
	return stored.ProcessedAt == nil || stored.ProcessingError != ""
}

// MarkProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkProcessed(ctx context.Context, id uint, processingErr error) error {
	_ = ctx
	if id == 0 {
		return errors.New("webhook event id is required")
	}
	now := time.Now()
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"processed_at":     &now,
		"processing_error": errMsg,
	}).Error
}
