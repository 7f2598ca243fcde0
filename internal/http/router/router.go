package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/kentbulteni/analytics-service/internal/health"
	"github.com/kentbulteni/analytics-service/internal/http/handler"
	"github.com/kentbulteni/analytics-service/internal/http/middleware"
	"github.com/kentbulteni/analytics-service/internal/http/response"
)

type Dependencies struct {
	TrackHandler      *handler.TrackHandler
	ContentHandler    *handler.ContentHandler
	TrackRateLimitRPM int
	APIRateLimitRPM   int
	TrackRateLimiter  TrackRateLimiterFunc
	APIRateLimiter    APIRateLimiterFunc
	Readiness         *health.ProbeRunner
	EnableOTelHTTP    bool
}

type TrackRateLimiterFunc func(http.Handler) http.Handler
type APIRateLimiterFunc func(http.Handler) http.Handler

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.BodyLimit(1 << 20))

	trackLimiter := dep.TrackRateLimiter
	if trackLimiter == nil {
		trackLimiter = middleware.NewRateLimiter(dep.TrackRateLimitRPM, time.Minute).Middleware()
	}
	apiLimiter := dep.APIRateLimiter
	if apiLimiter == nil {
		apiLimiter = middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute).Middleware()
	}

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	r.With(trackLimiter).Post("/track-view", dep.TrackHandler.TrackView)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiLimiter)
		r.Get("/ads", dep.ContentHandler.ListAds)
		r.Get("/news/breaking", dep.ContentHandler.ListBreaking)
		r.Get("/news/{slug}", dep.ContentHandler.GetArticleBySlug)
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
