package models

import (
	"time"
)

// ShortLink represents a mapping from a short code to a destination URL.
//
// IsActive is a plain column rather than gorm's soft-delete marker: the
// unique index on Code must span deactivated rows so that a retired code can
// never be reissued.
type ShortLink struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	Code        string     `gorm:"size:50;uniqueIndex;not null" json:"code"`
	TargetURL   string     `gorm:"size:2048;not null" json:"target_url"`
	CustomAlias *string    `gorm:"size:50" json:"custom_alias,omitempty"`
	CreatedAt   time.Time  `gorm:"index:idx_short_links_active_created,priority:2" json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	IsActive    bool       `gorm:"default:true;not null;index:idx_short_links_active_created,priority:1" json:"is_active"`
	ClickCount  uint       `gorm:"default:0;not null" json:"click_count"`

	// Relationships
	Clicks []ClickEvent `gorm:"foreignKey:LinkID;constraint:OnDelete:CASCADE" json:"clicks,omitempty"`
}
