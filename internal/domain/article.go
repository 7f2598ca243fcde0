package domain

import "time"

// Article carries the denormalized fields the read endpoints serve plus the
// view counter mutated by the ingestion path. The counter is only ever
// touched through an atomic in-database increment.
type Article struct {
	ID          string     `gorm:"primaryKey;size:64" json:"id"`
	Slug        string     `gorm:"size:512;uniqueIndex;not null" json:"slug"`
	Title       string     `gorm:"size:1024;not null" json:"title"`
	Summary     string     `gorm:"type:text" json:"summary"`
	Content     string     `gorm:"type:text" json:"content"`
	Category    string     `gorm:"size:128;index" json:"category"`
	CitySlug    string     `gorm:"size:128;index" json:"city_slug"`
	ImageURL    string     `gorm:"size:1024" json:"image_url"`
	SourceName  string     `gorm:"size:256" json:"source_name"`
	Breaking    bool       `gorm:"index" json:"breaking"`
	ChildSafe   bool       `json:"is_child_safe"`
	ViewCount   uint64     `gorm:"not null;default:0" json:"view_count"`
	PublishedAt *time.Time `gorm:"index" json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Article) TableName() string { return "articles" }
