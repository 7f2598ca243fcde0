package domain

import "time"

// ViewLock suppresses repeated view signals for the same session and route
// until LockedUntil. Rows are overwritten on every countable view and never
// deleted; expiry is a timestamp comparison, not a physical delete.
type ViewLock struct {
	SessionID   string    `gorm:"primaryKey;size:64" json:"session_id"`
	Route       string    `gorm:"primaryKey;size:512" json:"route"`
	LockedUntil time.Time `gorm:"index;not null" json:"locked_until"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ViewLock) TableName() string { return "analytics_view_locks" }
