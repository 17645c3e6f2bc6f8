package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/MelodiaryApp/Melodiary/app/models"
)

// ErrUserNotFound means the billing app_user_id does not resolve to a
// local user.
var ErrUserNotFound = errors.New("no user for billing app_user_id")

// Service applies billing webhook events to local subscription state.
type Service struct {
	repo Repository
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// ApplyEvent updates the user's subscription from a billing event and
// appends the audit log row. Application is convergent: re-delivery of an
// identical event reapplies the same terminal state, and the audit row is
// write-once per provider event ID.
func (s *Service) ApplyEvent(ctx context.Context, ev *Event, rawPayload []byte) error {
	_ = ctx
	if ev == nil {
		return errors.New("billing event is required")
	}

	user, err := s.repo.GetUserByExternalID(ev.AppUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	// TEST events are audit-logged but never mutate subscription state.
	if ev.Type != EventTest {
		sub, err := s.repo.GetOrCreateSubscriptionStatus(user.ID)
		if err != nil {
			return err
		}

		now := time.Now()
		sub.Status = StatusForEventType(ev.Type)
		sub.Platform = ev.Platform
		sub.LastVerifiedAt = &now
		if ev.ProductID != "" {
			sub.ProductID = ev.ProductID
			sub.Tier = TierForEvent(ev.ProductID, ev.EntitlementIDs)
		}
		if ev.ExpiresAt != nil {
			sub.ExpiresAt = ev.ExpiresAt
		}
		if err := s.repo.SaveSubscriptionStatus(sub); err != nil {
			return err
		}
	}

	eventID := ev.ID
	if eventID == "" {
		sum := sha256.Sum256(rawPayload)
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}
	_, err = s.repo.AppendLogIfNotExists(&models.SubscriptionLog{
		UserID:          user.ID,
		Provider:        ProviderName,
		ProviderEventID: eventID,
		EventType:       ev.Type,
		ProductID:       ev.ProductID,
		Platform:        ev.Platform,
		RawPayloadJSON:  string(SanitizePayload(rawPayload)),
	})
	return err
}

// SanitizePayload strips provider fields that may carry tokens or device
// attributes before the payload is retained for replay.
func SanitizePayload(rawPayload []byte) []byte {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(rawPayload, &doc); err != nil {
		return rawPayload
	}
	var event map[string]json.RawMessage
	if err := json.Unmarshal(doc["event"], &event); err != nil {
		return rawPayload
	}
	changed := false
	for _, key := range []string{"subscriber_attributes", "api_key", "authorization"} {
		if _, ok := event[key]; ok {
			delete(event, key)
			changed = true
		}
	}
	if !changed {
		return rawPayload
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return rawPayload
	}
	doc["event"] = eventJSON
	out, err := json.Marshal(doc)
	if err != nil {
		return rawPayload
	}
	return out
}
