package models

import (
	"time"
)

// ClickEvent represents one successful redirect. Rows are append-only: they
// are created by the click recorder and only ever removed when the owning
// ShortLink is purged.
type ClickEvent struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	LinkID    uint      `gorm:"not null;index:idx_click_events_link_clicked,priority:1" json:"link_id"`
	ClickedAt time.Time `gorm:"not null;index:idx_click_events_link_clicked,priority:2" json:"clicked_at"`
	UserAgent *string   `gorm:"size:512" json:"user_agent,omitempty"`
	Referrer  *string   `gorm:"size:2048" json:"referrer,omitempty"`
	IPHash    *string   `gorm:"size:64" json:"ip_hash,omitempty"` // one-way hash, never the raw address
}
