package service

import (
	"context"
	"errors"
	"time"

	"github.com/kentbulteni/analytics-service/internal/domain"
	"github.com/kentbulteni/analytics-service/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LockOutcome string

const (
	AlreadyLocked LockOutcome = "already_locked"
	NewlyLocked   LockOutcome = "newly_locked"
)

// ViewLockStore implements the dedup window: a (session, route) pair whose
// lock expiry lies in the future is not countable again yet.
type ViewLockStore interface {
	CheckAndLock(ctx context.Context, sessionID, route string, window time.Duration) (LockOutcome, error)
}

// GormViewLockStore keeps lock rows in the database. The check and the
// upsert are two statements, so two truly concurrent requests for the same
// pair can both observe an expired lock and both count; that residual race
// is accepted in favor of latency. The redis store closes it.
type GormViewLockStore struct{ db *gorm.DB }

func NewGormViewLockStore(db *gorm.DB) *GormViewLockStore { return &GormViewLockStore{db: db} }

func (s *GormViewLockStore) CheckAndLock(ctx context.Context, sessionID, route string, window time.Duration) (LockOutcome, error) {
	now := time.Now().UTC()

	var lock domain.ViewLock
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND route = ?", sessionID, route).
		First(&lock).Error
	switch {
	case err == nil:
		if lock.LockedUntil.After(now) {
			observability.RecordViewLockOutcome(ctx, "gorm", string(AlreadyLocked))
			return AlreadyLocked, nil
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first view of this route by this session
	default:
		observability.RecordViewLockOutcome(ctx, "gorm", "error")
		return "", err
	}

	upsert := domain.ViewLock{
		SessionID:   sessionID,
		Route:       route,
		LockedUntil: now.Add(window),
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "route"}},
			DoUpdates: clause.AssignmentColumns([]string{"locked_until", "updated_at"}),
		}).
		Create(&upsert).Error
	if err != nil {
		observability.RecordViewLockOutcome(ctx, "gorm", "error")
		return "", err
	}
	observability.RecordViewLockOutcome(ctx, "gorm", string(NewlyLocked))
	return NewlyLocked, nil
}
