package repository

import (
	"context"

	"github.com/kentbulteni/analytics-service/internal/domain"
	"github.com/kentbulteni/analytics-service/internal/observability"

	"gorm.io/gorm"
)

type AdRepository interface {
	ListActive(ctx context.Context, limit int) ([]domain.Ad, error)
}

type GormAdRepository struct{ db *gorm.DB }

func NewAdRepository(db *gorm.DB) AdRepository { return &GormAdRepository{db: db} }

func (r *GormAdRepository) ListActive(ctx context.Context, limit int) ([]domain.Ad, error) {
	var ads []domain.Ad
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Limit(limit).
		Find(&ads).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "ad", "list_active", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "ad", "list_active", "success")
	return ads, nil
}
