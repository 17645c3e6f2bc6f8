package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
)

// TagList stores free-text user tags as a JSON array column.
type TagList []string

func (t TagList) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *TagList) Scan(value interface{}) error {
	if value == nil {
		*t = TagList{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported type for TagList")
	}
	if len(raw) == 0 {
		*t = TagList{}
		return nil
	}
	return json.Unmarshal(raw, t)
}

// User is provisioned exactly once per identity-provider user.created event.
// ExternalID is the idempotency key; re-delivery must find the existing row.
type User struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	ExternalID           string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"external_id" validate:"required"`
	Email                string     `gorm:"type:varchar(200);index" json:"email" validate:"omitempty,email,max=200"`
	DisplayName          string     `gorm:"type:varchar(150)" json:"display_name" validate:"max=150"`
	Tags                 TagList    `gorm:"type:json" json:"tags"`
	ActiveSubscriptionID *uint      `gorm:"index" json:"active_subscription_id,omitempty"`
	LastSeenAt           *time.Time `gorm:"type:timestamp;default:null" json:"last_seen_at,omitempty"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}
