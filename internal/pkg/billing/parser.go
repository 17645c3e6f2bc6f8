package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/MelodiaryApp/Melodiary/app/models"
)

// App user IDs are the identity-provider IDs this app registers with the
// billing SDK. Anything outside this shape is rejected before lookup.
var appUserIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

var eventTypes = map[string]struct{}{
	EventInitialPurchase: {},
	EventRenewal:         {},
	EventCancellation:    {},
	EventUncancellation:  {},
	EventExpiration:      {},
	EventBillingIssue:    {},
	EventProductChange:   {},
	EventTransfer:        {},
	EventTest:            {},
}

// ParseEvent validates and normalizes a billing webhook payload.
func ParseEvent(payload []byte) (*Event, error) {
	type rawEvent struct {
		Event struct {
			ID             string   `json:"id"`
			Type           string   `json:"type"`
			AppUserID      string   `json:"app_user_id"`
			ProductID      string   `json:"product_id"`
			NewProductID   string   `json:"new_product_id"`
			Store          string   `json:"store"`
			EntitlementIDs []string `json:"entitlement_ids"`
			ExpirationAtMs int64    `json:"expiration_at_ms"`
			PurchasedAtMs  int64    `json:"purchased_at_ms"`
		} `json:"event"`
	}

	var raw rawEvent
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("invalid billing webhook payload: %w", err)
	}

	eventType := strings.ToUpper(strings.TrimSpace(raw.Event.Type))
	if eventType == "" {
		return nil, errors.New("billing event missing type")
	}
	if _, ok := eventTypes[eventType]; !ok {
		return nil, fmt.Errorf("unsupported billing event type: %s", eventType)
	}

	appUserID := strings.TrimSpace(raw.Event.AppUserID)
	if appUserID == "" {
		return nil, errors.New("billing event missing app_user_id")
	}
	if !appUserIDPattern.MatchString(appUserID) {
		return nil, fmt.Errorf("malformed app_user_id: %q", appUserID)
	}

	platform, err := storeToPlatform(raw.Event.Store)
	if err != nil {
		return nil, err
	}

	// PRODUCT_CHANGE carries the target product in new_product_id; prefer
	// it over the old product_id when present.
	productID := strings.TrimSpace(raw.Event.ProductID)
	if eventType == EventProductChange && strings.TrimSpace(raw.Event.NewProductID) != "" {
		productID = strings.TrimSpace(raw.Event.NewProductID)
	}

	ev := &Event{
		ID:             strings.TrimSpace(raw.Event.ID),
		Type:           eventType,
		AppUserID:      appUserID,
		ProductID:      productID,
		Platform:       platform,
		EntitlementIDs: raw.Event.EntitlementIDs,
	}
	if raw.Event.ExpirationAtMs > 0 {
		t := time.UnixMilli(raw.Event.ExpirationAtMs)
		ev.ExpiresAt = &t
	}
	if raw.Event.PurchasedAtMs > 0 {
		t := time.UnixMilli(raw.Event.PurchasedAtMs)
		ev.PurchasedAt = &t
	}
	return ev, nil
}

func storeToPlatform(store string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(store)) {
	case "APP_STORE":
		return models.PlatformAppStore, nil
	case "PLAY_STORE":
		return models.PlatformPlayStore, nil
	case "STRIPE":
		return models.PlatformStripe, nil
	case "AMAZON":
		return models.PlatformAmazon, nil
	case "MAC_APP_STORE":
		return models.PlatformMacAppStore, nil
	case "PROMOTIONAL":
		return models.PlatformPromotional, nil
	case "":
		return "", errors.New("billing event missing store")
	default:
		return "", fmt.Errorf("unsupported billing store: %s", store)
	}
}

// StatusForEventType maps a billing event type onto the subscription
// status it converges to. Re-delivery of the same event reapplies the same
// terminal state.
func StatusForEventType(eventType string) string {
	switch eventType {
	case EventCancellation:
		return models.SubscriptionStatusCanceled
	case EventExpiration:
		return models.SubscriptionStatusExpired
	case EventBillingIssue:
		return models.SubscriptionStatusInGrace
	default:
		return models.SubscriptionStatusActive
	}
}

// TierForEvent derives the internal tier from entitlement IDs, falling
// back to product-ID sniffing when the provider sends none.
func TierForEvent(productID string, entitlementIDs []string) string {
	for _, e := range entitlementIDs {
		switch strings.ToLower(strings.TrimSpace(e)) {
		case "premium_max":
			return "premium_max"
		case "premium":
			return "premium"
		}
	}
	p := strings.ToLower(productID)
	if strings.Contains(p, "premium_max") || strings.Contains(p, "max") {
		return "premium_max"
	}
	if strings.Contains(p, "premium") {
		return "premium"
	}
	return "free"
}
