package billing

import "time"

const ProviderName = "billing"

// Billing event types delivered by the subscription provider. Closed set;
// anything else fails parsing.
const (
	EventInitialPurchase = "INITIAL_PURCHASE"
	EventRenewal         = "RENEWAL"
	EventCancellation    = "CANCELLATION"
	EventUncancellation  = "UNCANCELLATION"
	EventExpiration      = "EXPIRATION"
	EventBillingIssue    = "BILLING_ISSUE"
	EventProductChange   = "PRODUCT_CHANGE"
	EventTransfer        = "TRANSFER"
	EventTest            = "TEST"
)

// Event is the provider-agnostic shape used when applying a billing
// webhook to local subscription state.
type Event struct {
	ID             string
	Type           string
	AppUserID      string
	ProductID      string
	Platform       string
	EntitlementIDs []string
	ExpiresAt      *time.Time
	PurchasedAt    *time.Time
}
