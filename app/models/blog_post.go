package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	BlogStatusDraft     = "draft"
	BlogStatusPublished = "published"
	BlogStatusArchived  = "archived"
)

// BlogPost is content staged by the automation provider. Drafts carry a
// single-use preview token; approve/dismiss actions require the
// (post id, token) pair to match and must stay safe under double clicks.
type BlogPost struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=3,max=255"`
	Slug         string         `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug" validate:"required,min=1,max=255"`
	Content      string         `gorm:"type:longtext" json:"content"`
	Excerpt      string         `gorm:"type:varchar(512)" json:"excerpt"`
	Status       string         `gorm:"type:varchar(16);not null;default:'draft';index" json:"status"`
	PreviewToken string         `gorm:"type:varchar(100);index" json:"-"`
	ReadingTime  int            `gorm:"not null;default:1" json:"reading_time"`
	RedirectTo   string         `gorm:"type:varchar(255)" json:"redirect_to,omitempty"`
	AuthorName   string         `gorm:"type:varchar(150)" json:"author_name"`
	PublishedAt  *time.Time     `gorm:"type:timestamp;default:null" json:"published_at,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the BlogPost model
func (BlogPost) TableName() string {
	return "blog_posts"
}
