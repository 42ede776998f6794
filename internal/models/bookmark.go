package models

import (
	"time"
)

// EditWindow is how long after creation a bookmark may still be edited or
// deleted by its owner.
const EditWindow = 24 * time.Hour

// Bookmark 用户分享的链接
type Bookmark struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	URL              string    `gorm:"type:text;not null" json:"url"`
	Comment          string    `gorm:"type:text;not null" json:"comment"`
	CategoryID       uint      `gorm:"not null;index" json:"category_id"`
	Category         Category  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	UserID           uint      `gorm:"not null;index" json:"user_id"`
	User             User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	PageTitle        *string   `gorm:"type:text" json:"page_title"`
	PageDescription  *string   `gorm:"type:text" json:"page_description"`
	PageThumbnailURL *string   `gorm:"type:text" json:"page_thumbnail_url"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsEditable reports whether something created at createdAt is still inside
// the edit window at now. Both update and delete go through this.
func IsEditable(createdAt, now time.Time) bool {
	return now.Sub(createdAt) < EditWindow
}

// EditableAt is IsEditable applied to the bookmark's creation time.
func (b *Bookmark) EditableAt(now time.Time) bool {
	return IsEditable(b.CreatedAt, now)
}

// DisplayTitle falls back to the URL when the page had no title.
func (b *Bookmark) DisplayTitle() string {
	if b.PageTitle != nil && *b.PageTitle != "" {
		return *b.PageTitle
	}
	return b.URL
}
