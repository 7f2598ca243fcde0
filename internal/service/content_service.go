package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/kentbulteni/analytics-service/internal/domain"
	"github.com/kentbulteni/analytics-service/internal/repository"
)

const (
	adListLimit   = 200
	adCacheTTL    = 5 * time.Minute
	breakingLimit = 7
)

type ContentService struct {
	articles repository.ArticleRepository
	ads      repository.AdRepository
	adCache  AdCacheStore
	logger   *slog.Logger
}

func NewContentService(articles repository.ArticleRepository, ads repository.AdRepository, adCache AdCacheStore, logger *slog.Logger) *ContentService {
	return &ContentService{articles: articles, ads: ads, adCache: adCache, logger: logger}
}

func (s *ContentService) ListAds(ctx context.Context) ([]domain.Ad, error) {
	cached, hit, err := s.adCache.Get(ctx)
	if err != nil {
		// cache trouble degrades to a database read
		s.logger.WarnContext(ctx, "ad cache read failed", "error", err)
	} else if hit {
		return cached, nil
	}

	ads, err := s.ads.ListActive(ctx, adListLimit)
	if err != nil {
		return nil, err
	}
	if err := s.adCache.Set(ctx, ads, adCacheTTL); err != nil {
		s.logger.WarnContext(ctx, "ad cache write failed", "error", err)
	}
	return ads, nil
}

func (s *ContentService) ListBreaking(ctx context.Context) ([]domain.Article, error) {
	return s.articles.ListBreaking(ctx, breakingLimit)
}

func (s *ContentService) GetArticleBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	return s.articles.FindBySlug(ctx, slug)
}
