package service

import (
	"context"

	"github.com/kentbulteni/analytics-service/internal/domain"
)

// TrackInput is one page-view signal after HTTP parsing. SessionToken is the
// raw cookie value (may be empty); ClientIP and UserAgent are raw client
// identifiers that never reach storage unhashed.
type TrackInput struct {
	ContentType  string
	ContentID    string
	Slug         string
	Route        string
	CategorySlug string
	CitySlug     string

	SessionToken string
	ClientIP     string
	UserAgent    string
}

// TrackResult reports what happened to a signal. The HTTP layer must not
// leak Counted to the client; it exists for the cookie decision and tests.
type TrackResult struct {
	SessionID  string
	NewSession bool
	Counted    bool
}

type IngestServiceInterface interface {
	Track(ctx context.Context, input TrackInput) (*TrackResult, error)
}

type ContentServiceInterface interface {
	ListAds(ctx context.Context) ([]domain.Ad, error)
	ListBreaking(ctx context.Context) ([]domain.Article, error)
	GetArticleBySlug(ctx context.Context, slug string) (*domain.Article, error)
}
