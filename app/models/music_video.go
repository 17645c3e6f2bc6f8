package models

import "time"

const (
	MusicVideoStatusPending = "pending"
	MusicVideoStatusReady   = "ready"
	MusicVideoStatusFailed  = "failed"
)

// MusicVideo is a generated video for a track, keyed by the provider task
// ID. The completion webhook attaches the asset URL and flips the status.
type MusicVideo struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MusicID   uint      `gorm:"not null;index" json:"music_id"`
	TaskID    string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"task_id"`
	Status    string    `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	VideoURL  string    `gorm:"type:varchar(512)" json:"video_url"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (v *MusicVideo) IsTerminal() bool {
	return v.Status == MusicVideoStatusReady || v.Status == MusicVideoStatusFailed
}
