package domain

import "time"

// Ad is a carousel advertisement served by the read API.
type Ad struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ImagePath   string    `gorm:"size:1024;not null" json:"image_path"`
	RedirectURL string    `gorm:"size:1024" json:"redirect_url"`
	Active      bool      `gorm:"index;default:true" json:"-"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

func (Ad) TableName() string { return "ads" }
