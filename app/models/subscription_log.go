package models

import "time"

// SubscriptionLog is the append-only audit trail of billing events applied
// to a user. The raw provider payload is retained for replay and debugging.
// Rows are write-once; the (provider, provider_event_id) pair dedupes
// at-least-once delivery.
type SubscriptionLog struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	Provider        string    `gorm:"type:varchar(20);not null;index:ux_subscription_logs_provider_event,unique,priority:1" json:"provider"`
	ProviderEventID string    `gorm:"type:varchar(191);not null;default:'';index:ux_subscription_logs_provider_event,unique,priority:2" json:"provider_event_id"`
	EventType       string    `gorm:"type:varchar(100);not null;index" json:"event_type"`
	ProductID       string    `gorm:"type:varchar(191);not null;default:''" json:"product_id"`
	Platform        string    `gorm:"type:varchar(32);not null;default:''" json:"platform"`
	RawPayloadJSON  string    `gorm:"type:longtext;not null" json:"raw_payload_json"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
