package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"gorm.io/gorm"

	"github.com/kentbulteni/analytics-service/internal/app"
	"github.com/kentbulteni/analytics-service/internal/config"
	"github.com/kentbulteni/analytics-service/internal/database"
	"github.com/kentbulteni/analytics-service/internal/health"
	"github.com/kentbulteni/analytics-service/internal/http/handler"
	"github.com/kentbulteni/analytics-service/internal/http/middleware"
	"github.com/kentbulteni/analytics-service/internal/http/router"
	"github.com/kentbulteni/analytics-service/internal/observability"
	"github.com/kentbulteni/analytics-service/internal/repository"
	"github.com/kentbulteni/analytics-service/internal/security"
	"github.com/kentbulteni/analytics-service/internal/service"
)

var ConfigSet = wire.NewSet(provideConfig)

var ObservabilitySet = wire.NewSet(
	provideLogging,
	provideLogger,
	provideLoggerProvider,
	provideObservabilityRuntime,
)

var RuntimeInfraSet = wire.NewSet(
	provideOpenDB,
	provideRedisClient,
	provideReadiness,
)

var RepositorySet = wire.NewSet(
	repository.NewSessionRepository,
	repository.NewViewEventRepository,
	repository.NewArticleRepository,
	repository.NewAdRepository,
)

var SecuritySet = wire.NewSet(
	provideIdentityHasher,
	provideCookieManager,
)

var ServiceSet = wire.NewSet(
	provideViewLockStore,
	provideAdCacheStore,
	provideIngestService,
	provideContentService,
)

var HTTPSet = wire.NewSet(
	handler.NewTrackHandler,
	handler.NewContentHandler,
	provideTrackRateLimiter,
	provideAPIRateLimiter,
	provideRouterDependencies,
	provideHandler,
	provideHTTPServer,
)

var AppSet = wire.NewSet(app.New)

// logging bundles the two values InitLogger produces so wire can carry them.
type logging struct {
	Logger         *slog.Logger
	LoggerProvider *sdklog.LoggerProvider
}

func provideConfig() (*config.Config, error) {
	return config.Load()
}

func provideLogging(cfg *config.Config) (*logging, error) {
	logger, provider, err := observability.InitLogger(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return &logging{Logger: logger, LoggerProvider: provider}, nil
}

func provideLogger(l *logging) *slog.Logger { return l.Logger }

func provideLoggerProvider(l *logging) *sdklog.LoggerProvider { return l.LoggerProvider }

func provideObservabilityRuntime(cfg *config.Config, logger *slog.Logger, provider *sdklog.LoggerProvider) (*observability.Runtime, error) {
	return observability.InitRuntime(context.Background(), cfg, logger, provider)
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

// provideRedisClient may return nil; every consumer treats a nil client as
// "run on the database alone".
func provideRedisClient(cfg *config.Config) redis.UniversalClient {
	return database.OpenRedis(cfg)
}

func provideReadiness(db *gorm.DB, client redis.UniversalClient) *health.ProbeRunner {
	probes := []health.Probe{health.DatabaseProbe(db)}
	if client != nil {
		probes = append(probes, health.RedisProbe(client))
	}
	return health.NewProbeRunner(probes...)
}

func provideIdentityHasher(cfg *config.Config) *security.IdentityHasher {
	return security.NewIdentityHasher(cfg.HashPepper)
}

func provideCookieManager(cfg *config.Config) *security.CookieManager {
	return security.NewCookieManager(cfg.SessionCookieName, cfg.CookieDomain, cfg.CookieSecure, cfg.CookieSameSite, cfg.SessionCookieTTL)
}

func provideViewLockStore(cfg *config.Config, db *gorm.DB, client redis.UniversalClient) service.ViewLockStore {
	if client != nil {
		return service.NewRedisViewLockStore(client, "viewlock")
	}
	return service.NewGormViewLockStore(db)
}

func provideAdCacheStore(client redis.UniversalClient) service.AdCacheStore {
	if client != nil {
		return service.NewRedisAdCacheStore(client, "content:ads")
	}
	return service.NewNoopAdCacheStore()
}

func provideIngestService(
	cfg *config.Config,
	sessions repository.SessionRepository,
	events repository.ViewEventRepository,
	articles repository.ArticleRepository,
	locks service.ViewLockStore,
	hasher *security.IdentityHasher,
	logger *slog.Logger,
) service.IngestServiceInterface {
	return service.NewIngestService(sessions, events, articles, locks, hasher, cfg.ViewLockWindow, logger)
}

func provideContentService(
	articles repository.ArticleRepository,
	ads repository.AdRepository,
	adCache service.AdCacheStore,
	logger *slog.Logger,
) service.ContentServiceInterface {
	return service.NewContentService(articles, ads, adCache, logger)
}

func provideTrackRateLimiter(cfg *config.Config, client redis.UniversalClient) router.TrackRateLimiterFunc {
	if client == nil {
		return nil
	}
	limiter := middleware.NewRedisFixedWindowLimiter(client, "ratelimit:track")
	return middleware.NewDistributedRateLimiter(limiter, cfg.TrackRateLimitPerMin, time.Minute, middleware.FailOpen, "track").Middleware()
}

func provideAPIRateLimiter(cfg *config.Config, client redis.UniversalClient) router.APIRateLimiterFunc {
	if client == nil {
		return nil
	}
	limiter := middleware.NewRedisFixedWindowLimiter(client, "ratelimit:api")
	return middleware.NewDistributedRateLimiter(limiter, cfg.APIRateLimitPerMin, time.Minute, middleware.FailOpen, "api").Middleware()
}

func provideRouterDependencies(
	trackHandler *handler.TrackHandler,
	contentHandler *handler.ContentHandler,
	trackLimiter router.TrackRateLimiterFunc,
	apiLimiter router.APIRateLimiterFunc,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		TrackHandler:      trackHandler,
		ContentHandler:    contentHandler,
		TrackRateLimitRPM: cfg.TrackRateLimitPerMin,
		APIRateLimitRPM:   cfg.APIRateLimitPerMin,
		TrackRateLimiter:  trackLimiter,
		APIRateLimiter:    apiLimiter,
		Readiness:         readiness,
		EnableOTelHTTP:    cfg.OTELTracesEnabled,
	}
}

func provideHandler(dep router.Dependencies) http.Handler {
	return router.NewRouter(dep)
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// MigrationRunner applies the schema without starting the HTTP surface.
type MigrationRunner struct {
	db *gorm.DB
}

func NewMigrationRunner(db *gorm.DB) *MigrationRunner {
	return &MigrationRunner{db: db}
}

func (m *MigrationRunner) Run() error {
	return database.Migrate(m.db)
}
