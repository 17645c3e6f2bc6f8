package models

import (
	"time"

	"gorm.io/gorm"
)

// DiaryEntry is a diary text, either written by the user or generated from
// a call transcript. Generated entries keep a back-reference to the call
// session so re-delivered call reports can detect the existing entry.
type DiaryEntry struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	CallSessionID *uint          `gorm:"uniqueIndex" json:"call_session_id,omitempty"`
	Title         string         `gorm:"type:varchar(255)" json:"title"`
	Content       string         `gorm:"type:longtext" json:"content"`
	Generated     bool           `gorm:"not null;default:false" json:"generated"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
