package domain

import "time"

// ContentTypeNews is the only content type whose views are counted against
// an article counter.
const ContentTypeNews = "news"

// Session is an anonymous cookie-carried visitor identity. Raw IP and
// user-agent values are hashed before insert and never stored.
type Session struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"`
	IPHash        string    `gorm:"size:64;not null" json:"-"`
	UserAgentHash string    `gorm:"size:64;not null" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Session) TableName() string { return "analytics_sessions" }
