package models

import "time"

// Platform origin of a subscription. Closed set; anything else is rejected
// at the parser layer before it reaches the database.
const (
	PlatformAppStore     = "app_store"
	PlatformPlayStore    = "play_store"
	PlatformStripe       = "stripe"
	PlatformAmazon       = "amazon"
	PlatformMacAppStore  = "mac_app_store"
	PlatformPromotional  = "promotional"
	PlatformIdentityFree = "identity_free"
)

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusExpired  = "expired"
	SubscriptionStatusInGrace  = "in_grace"
)

// SubscriptionStatus is the single entitlement record for a user. It is
// never deleted, only status-transitioned by billing webhook events and
// internal usage-reset jobs.
type SubscriptionStatus struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	Platform        string     `gorm:"type:varchar(32);not null;default:'identity_free';index" json:"platform"`
	ProductID       string     `gorm:"type:varchar(191);not null;default:''" json:"product_id"`
	Status          string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	Tier            string     `gorm:"type:varchar(50);not null;default:'free'" json:"tier"`
	GenerationsUsed int        `gorm:"not null;default:0" json:"generations_used"`
	UsageResetAt    *time.Time `gorm:"type:timestamp;default:null" json:"usage_reset_at,omitempty"`
	LastVerifiedAt  *time.Time `gorm:"type:timestamp;default:null" json:"last_verified_at,omitempty"`
	ExpiresAt       *time.Time `gorm:"type:timestamp;default:null" json:"expires_at,omitempty"`
	OverrideLimit   *int       `gorm:"default:null" json:"override_limit,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsEntitled reports whether the subscription currently grants paid access.
func (s *SubscriptionStatus) IsEntitled() bool {
	switch s.Status {
	case SubscriptionStatusActive, SubscriptionStatusInGrace:
		return true
	default:
		return false
	}
}
