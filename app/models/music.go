package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

const (
	MusicStatusPending = "pending"
	MusicStatusReady   = "ready"
	MusicStatusFailed  = "failed"
)

// AlignedWord is a single word with its playback time window, used for
// karaoke-style lyric highlighting.
type AlignedWord struct {
	Word    string  `json:"word"`
	StartS  float64 `json:"start_s"`
	EndS    float64 `json:"end_s"`
	Success bool    `json:"success"`
}

// WordAlignment stores the word-level lyric timing as a JSON column.
type WordAlignment []AlignedWord

func (a WordAlignment) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *WordAlignment) Scan(value interface{}) error {
	if value == nil {
		*a = WordAlignment{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported type for WordAlignment")
	}
	if len(raw) == 0 {
		*a = WordAlignment{}
		return nil
	}
	return json.Unmarshal(raw, a)
}

// Music is one generated track. A generation task produces two candidate
// tracks, so rows are keyed by (task_id, music_index) with index 0 or 1.
// That pair is the idempotency key for provider completion callbacks.
type Music struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	TaskID          string         `gorm:"type:varchar(191);not null;index:ux_music_task_index,unique,priority:1" json:"task_id"`
	MusicIndex      int            `gorm:"not null;default:0;index:ux_music_task_index,unique,priority:2" json:"music_index"`
	Status          string         `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	Title           string         `gorm:"type:varchar(255)" json:"title"`
	AudioURL        string         `gorm:"type:varchar(512)" json:"audio_url"`
	ImageURL        string         `gorm:"type:varchar(512)" json:"image_url"`
	Lyrics          string         `gorm:"type:text" json:"lyrics"`
	Alignment       WordAlignment  `gorm:"type:json" json:"alignment"`
	ArchiveKey      string         `gorm:"type:varchar(512)" json:"archive_key,omitempty"`
	FavoriteVideoID *uint          `gorm:"index" json:"favorite_video_id,omitempty"`
	ErrorMessage    string         `gorm:"type:varchar(512)" json:"error_message,omitempty"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsTerminal reports whether the track already reached ready or failed.
// Terminal rows with populated output must not be overwritten by repeated
// provider callbacks.
func (m *Music) IsTerminal() bool {
	return m.Status == MusicStatusReady || m.Status == MusicStatusFailed
}
