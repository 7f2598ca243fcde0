package database

import (
	"github.com/kentbulteni/analytics-service/internal/domain"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Session{},
		&domain.ViewLock{},
		&domain.ViewEvent{},
		&domain.Article{},
		&domain.Ad{},
	)
}
