package repository

import (
	"context"
	"errors"

	"github.com/kentbulteni/analytics-service/internal/domain"
	"github.com/kentbulteni/analytics-service/internal/observability"

	"gorm.io/gorm"
)

var ErrArticleNotFound = errors.New("article not found")

type ArticleRepository interface {
	IncrementViewCount(ctx context.Context, articleID string) error
	FindBySlug(ctx context.Context, slug string) (*domain.Article, error)
	ListBreaking(ctx context.Context, limit int) ([]domain.Article, error)
}

type GormArticleRepository struct{ db *gorm.DB }

func NewArticleRepository(db *gorm.DB) ArticleRepository { return &GormArticleRepository{db: db} }

// IncrementViewCount bumps the counter with a single in-database increment.
// Unknown ids are a no-op: client-presented content ids are untrusted and
// must never fail the pipeline.
func (r *GormArticleRepository) IncrementViewCount(ctx context.Context, articleID string) error {
	res := r.db.WithContext(ctx).Model(&domain.Article{}).
		Where("id = ?", articleID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "article", "increment_view_count", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "article", "increment_view_count", "not_found")
		return nil
	}
	observability.RecordRepositoryOperation(ctx, "article", "increment_view_count", "success")
	return nil
}

func (r *GormArticleRepository) FindBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	var a domain.Article
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "article", "find_by_slug", "not_found")
			return nil, ErrArticleNotFound
		}
		observability.RecordRepositoryOperation(ctx, "article", "find_by_slug", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "article", "find_by_slug", "success")
	return &a, nil
}

func (r *GormArticleRepository) ListBreaking(ctx context.Context, limit int) ([]domain.Article, error) {
	var articles []domain.Article
	err := r.db.WithContext(ctx).
		Where("breaking = ?", true).
		Order("published_at DESC").
		Limit(limit).
		Find(&articles).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "article", "list_breaking", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "article", "list_breaking", "success")
	return articles, nil
}
