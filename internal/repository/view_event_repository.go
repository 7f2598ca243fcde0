package repository

import (
	"context"

	"github.com/kentbulteni/analytics-service/internal/domain"
	"github.com/kentbulteni/analytics-service/internal/observability"

	"gorm.io/gorm"
)

type ViewEventRepository interface {
	Record(ctx context.Context, e *domain.ViewEvent) error
}

type GormViewEventRepository struct{ db *gorm.DB }

func NewViewEventRepository(db *gorm.DB) ViewEventRepository {
	return &GormViewEventRepository{db: db}
}

// Record appends one page-view event. The content id is dropped unless the
// content type is news, even when upstream forgot to do so.
func (r *GormViewEventRepository) Record(ctx context.Context, e *domain.ViewEvent) error {
	if e.EventType == "" {
		e.EventType = domain.EventTypePageView
	}
	if e.ContentType != domain.ContentTypeNews {
		e.ContentID = nil
	}
	err := r.db.WithContext(ctx).Create(e).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "view_event", "record", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "view_event", "record", "success")
	return nil
}
