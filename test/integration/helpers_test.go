package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kentbulteni/analytics-service/internal/database"
	"github.com/kentbulteni/analytics-service/internal/domain"
	"github.com/kentbulteni/analytics-service/internal/health"
	"github.com/kentbulteni/analytics-service/internal/http/handler"
	"github.com/kentbulteni/analytics-service/internal/http/router"
	"github.com/kentbulteni/analytics-service/internal/repository"
	"github.com/kentbulteni/analytics-service/internal/security"
	"github.com/kentbulteni/analytics-service/internal/service"
)

const testCookieName = "kb_session_id"

type testServerOptions struct {
	useRedisLocks bool
	lockWindow    time.Duration
}

type testServer struct {
	BaseURL string
	Client  *http.Client
	DB      *gorm.DB
	Redis   *miniredis.Miniredis
}

func newTrackTestServer(t *testing.T, opts testServerOptions) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:integration_%d?mode=memory&cache=shared", rand.Int63())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if opts.lockWindow == 0 {
		opts.lockWindow = 30 * time.Second
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := repository.NewSessionRepository(db)
	events := repository.NewViewEventRepository(db)
	articles := repository.NewArticleRepository(db)
	ads := repository.NewAdRepository(db)

	srv := &testServer{DB: db}

	var locks service.ViewLockStore
	if opts.useRedisLocks {
		mr := miniredis.RunT(t)
		srv.Redis = mr
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		locks = service.NewRedisViewLockStore(client, "viewlock")
	} else {
		locks = service.NewGormViewLockStore(db)
	}

	hasher := security.NewIdentityHasher("integration-pepper-0123456789")
	cookies := security.NewCookieManager(testCookieName, "", false, "lax", 720*time.Hour)
	ingest := service.NewIngestService(sessions, events, articles, locks, hasher, opts.lockWindow, logger)
	content := service.NewContentService(articles, ads, service.NewNoopAdCacheStore(), logger)

	h := router.NewRouter(router.Dependencies{
		TrackHandler:      handler.NewTrackHandler(ingest, cookies),
		ContentHandler:    handler.NewContentHandler(content),
		TrackRateLimitRPM: 100000,
		APIRateLimitRPM:   100000,
		Readiness:         health.NewProbeRunner(health.DatabaseProbe(db)),
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	srv.BaseURL = ts.URL
	srv.Client = &http.Client{Jar: jar, Timeout: 5 * time.Second}
	return srv
}

func (s *testServer) seedArticle(t *testing.T, id, slug string, viewCount uint64) {
	t.Helper()
	now := time.Now()
	article := domain.Article{
		ID:          id,
		Slug:        slug,
		Title:       "Seeded article " + slug,
		Category:    "economy",
		ViewCount:   viewCount,
		PublishedAt: &now,
	}
	if err := s.DB.Create(&article).Error; err != nil {
		t.Fatalf("seed article: %v", err)
	}
}

func (s *testServer) trackView(t *testing.T, body string) *http.Response {
	t.Helper()
	resp, err := s.Client.Post(s.BaseURL+"/track-view", "application/json", bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("track view request: %v", err)
	}
	return resp
}

func decodeTrackAck(t *testing.T, resp *http.Response) bool {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var ack struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		t.Fatalf("decode track ack: %v", err)
	}
	return ack.OK
}

func (s *testServer) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := s.DB.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

func (s *testServer) articleViewCount(t *testing.T, id string) uint64 {
	t.Helper()
	var article domain.Article
	if err := s.DB.First(&article, "id = ?", id).Error; err != nil {
		t.Fatalf("load article: %v", err)
	}
	return article.ViewCount
}
