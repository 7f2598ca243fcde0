package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kentbulteni/analytics-service/internal/domain"
)

func TestArticleIncrementViewCount(t *testing.T) {
	db := newDBForTest(t, &domain.Article{})
	repo := NewArticleRepository(db)
	ctx := context.Background()

	seedArticle(t, db, &domain.Article{ID: "A1", Slug: "fener-haberi", Title: "t"})

	for i := 0; i < 3; i++ {
		if err := repo.IncrementViewCount(ctx, "A1"); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}

	var a domain.Article
	if err := db.First(&a, "id = ?", "A1").Error; err != nil {
		t.Fatalf("load article: %v", err)
	}
	if a.ViewCount != 3 {
		t.Fatalf("expected view_count=3, got %d", a.ViewCount)
	}
}

func TestArticleIncrementUnknownIDIsNoop(t *testing.T) {
	db := newDBForTest(t, &domain.Article{})
	repo := NewArticleRepository(db)

	if err := repo.IncrementViewCount(context.Background(), "missing"); err != nil {
		t.Fatalf("unknown id must not error, got %v", err)
	}
}

func TestArticleIncrementConcurrent(t *testing.T) {
	db := newDBForTest(t, &domain.Article{})
	repo := NewArticleRepository(db)
	ctx := context.Background()

	seedArticle(t, db, &domain.Article{ID: "A1", Slug: "s", Title: "t"})

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_ = repo.IncrementViewCount(ctx, "A1")
		}()
	}
	wg.Wait()

	var a domain.Article
	if err := db.First(&a, "id = ?", "A1").Error; err != nil {
		t.Fatalf("load article: %v", err)
	}
	if a.ViewCount != workers {
		t.Fatalf("expected view_count=%d, got %d", workers, a.ViewCount)
	}
}

func TestArticleFindBySlug(t *testing.T) {
	db := newDBForTest(t, &domain.Article{})
	repo := NewArticleRepository(db)
	ctx := context.Background()

	seedArticle(t, db, &domain.Article{ID: "A1", Slug: "fener-haberi", Title: "t"})

	a, err := repo.FindBySlug(ctx, "fener-haberi")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if a.ID != "A1" {
		t.Fatalf("unexpected article %+v", a)
	}

	if _, err := repo.FindBySlug(ctx, "yok"); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound, got %v", err)
	}
}

func TestArticleListBreakingOrderAndLimit(t *testing.T) {
	db := newDBForTest(t, &domain.Article{})
	repo := NewArticleRepository(db)
	ctx := context.Background()

	now := time.Now()
	for i := 0; i < 10; i++ {
		at := now.Add(-time.Duration(i) * time.Hour)
		seedArticle(t, db, &domain.Article{
			ID:          string(rune('a' + i)),
			Slug:        string(rune('a' + i)),
			Title:       "t",
			Breaking:    i%2 == 0,
			PublishedAt: &at,
		})
	}

	articles, err := repo.ListBreaking(ctx, 3)
	if err != nil {
		t.Fatalf("list breaking: %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(articles))
	}
	for i := 1; i < len(articles); i++ {
		if articles[i].PublishedAt.After(*articles[i-1].PublishedAt) {
			t.Fatal("breaking list not ordered by published_at desc")
		}
	}
	for _, a := range articles {
		if !a.Breaking {
			t.Fatalf("non-breaking article in list: %+v", a)
		}
	}
}
