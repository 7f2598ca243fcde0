package repository

import (
	"context"

	"github.com/kentbulteni/analytics-service/internal/domain"
	"github.com/kentbulteni/analytics-service/internal/observability"

	"gorm.io/gorm"
)

// SessionRepository only inserts: presented tokens are trusted by shape, so
// nothing on the hot path ever reads a session back.
type SessionRepository interface {
	Create(ctx context.Context, s *domain.Session) error
}

type GormSessionRepository struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &GormSessionRepository{db: db} }

func (r *GormSessionRepository) Create(ctx context.Context, s *domain.Session) error {
	err := r.db.WithContext(ctx).Create(s).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "session", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "session", "create", "success")
	return nil
}
