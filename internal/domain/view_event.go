package domain

import "time"

// ViewEvent is one countable page view. Append-only; never mutated.
// ContentID is set only for news content.
type ViewEvent struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EventType    string    `gorm:"size:32;not null" json:"event_type"`
	ContentType  string    `gorm:"size:32;index;not null" json:"content_type"`
	ContentID    *string   `gorm:"size:64;index" json:"content_id,omitempty"`
	Slug         string    `gorm:"size:512" json:"slug"`
	Route        string    `gorm:"size:512;index;not null" json:"route"`
	CategorySlug string    `gorm:"size:128;index" json:"category_slug"`
	CitySlug     string    `gorm:"size:128;index" json:"city_slug"`
	SessionID    string    `gorm:"size:64;index;not null" json:"session_id"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

func (ViewEvent) TableName() string { return "analytics_events" }

const EventTypePageView = "page_view"
