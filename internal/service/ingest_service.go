package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kentbulteni/analytics-service/internal/domain"
	"github.com/kentbulteni/analytics-service/internal/observability"
	"github.com/kentbulteni/analytics-service/internal/repository"
	"github.com/kentbulteni/analytics-service/internal/security"
)

// ErrStoreUnavailable marks failures during session resolution or the lock
// check. The endpoint maps it to a 500; event and counter failures never
// carry it since they are best-effort.
var ErrStoreUnavailable = errors.New("store unavailable")

type IngestService struct {
	sessions repository.SessionRepository
	events   repository.ViewEventRepository
	articles repository.ArticleRepository
	locks    ViewLockStore
	hasher   *security.IdentityHasher
	window   time.Duration
	logger   *slog.Logger
}

func NewIngestService(
	sessions repository.SessionRepository,
	events repository.ViewEventRepository,
	articles repository.ArticleRepository,
	locks ViewLockStore,
	hasher *security.IdentityHasher,
	window time.Duration,
	logger *slog.Logger,
) *IngestService {
	return &IngestService{
		sessions: sessions,
		events:   events,
		articles: articles,
		locks:    locks,
		hasher:   hasher,
		window:   window,
		logger:   logger,
	}
}

// Track resolves the visitor session, runs the dedup check and, for a
// countable view, records the event and bumps the article counter. The lock
// is written before the best-effort steps: losing an analytics row is
// acceptable, over-counting is not.
func (s *IngestService) Track(ctx context.Context, input TrackInput) (*TrackResult, error) {
	sessionID, isNew, err := s.resolveSession(ctx, input)
	if err != nil {
		return nil, err
	}
	result := &TrackResult{SessionID: sessionID, NewSession: isNew}

	outcome, err := s.locks.CheckAndLock(ctx, sessionID, input.Route, s.window)
	if err != nil {
		return nil, fmt.Errorf("%w: check view lock: %w", ErrStoreUnavailable, err)
	}
	if outcome == AlreadyLocked {
		return result, nil
	}
	result.Counted = true

	// The client may disconnect while these run; they complete anyway.
	detached := context.WithoutCancel(ctx)
	s.recordEvent(detached, sessionID, input)
	s.incrementCounter(detached, input)

	return result, nil
}

// resolveSession trusts a well-formed client token without a store lookup;
// the token is a bucketing key, not a credential. Only a freshly minted
// session touches the database.
func (s *IngestService) resolveSession(ctx context.Context, input TrackInput) (string, bool, error) {
	if security.ValidSessionToken(input.SessionToken) {
		return input.SessionToken, false, nil
	}

	sessionID := security.NewSessionToken()
	session := &domain.Session{
		ID:            sessionID,
		IPHash:        s.hasher.Hash(input.ClientIP),
		UserAgentHash: s.hasher.Hash(input.UserAgent),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		// An unpersisted session id would make the dedup lock refer to
		// nothing; abort instead.
		return "", false, fmt.Errorf("%w: create session: %w", ErrStoreUnavailable, err)
	}
	return sessionID, true, nil
}

func (s *IngestService) recordEvent(ctx context.Context, sessionID string, input TrackInput) {
	event := &domain.ViewEvent{
		EventType:    domain.EventTypePageView,
		ContentType:  input.ContentType,
		Slug:         input.Slug,
		Route:        input.Route,
		CategorySlug: input.CategorySlug,
		CitySlug:     input.CitySlug,
		SessionID:    sessionID,
	}
	if input.ContentType == domain.ContentTypeNews && input.ContentID != "" {
		contentID := input.ContentID
		event.ContentID = &contentID
	}
	if err := s.events.Record(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "record view event failed",
			"route", input.Route,
			"content_type", input.ContentType,
			"error", err,
		)
	}
}

func (s *IngestService) incrementCounter(ctx context.Context, input TrackInput) {
	if input.ContentType != domain.ContentTypeNews || input.ContentID == "" {
		return
	}
	if err := s.articles.IncrementViewCount(ctx, input.ContentID); err != nil {
		observability.RecordCounterIncrement(ctx, "error")
		s.logger.ErrorContext(ctx, "increment view counter failed",
			"content_id", input.ContentID,
			"error", err,
		)
		return
	}
	observability.RecordCounterIncrement(ctx, "success")
}
