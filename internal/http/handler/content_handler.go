package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kentbulteni/analytics-service/internal/http/response"
	"github.com/kentbulteni/analytics-service/internal/repository"
	"github.com/kentbulteni/analytics-service/internal/service"
)

// adsCacheControl lets the CDN serve the ad list for five minutes and
// revalidate in the background for another ten.
const adsCacheControl = "public, s-maxage=300, stale-while-revalidate=600"

type ContentHandler struct {
	content service.ContentServiceInterface
}

func NewContentHandler(content service.ContentServiceInterface) *ContentHandler {
	return &ContentHandler{content: content}
}

func (h *ContentHandler) ListAds(w http.ResponseWriter, r *http.Request) {
	ads, err := h.content.ListAds(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list ads failed", "error", err)
		w.Header().Set("Cache-Control", "no-store")
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load ads", nil)
		return
	}
	w.Header().Set("Cache-Control", adsCacheControl)
	response.JSON(w, r, http.StatusOK, ads)
}

func (h *ContentHandler) ListBreaking(w http.ResponseWriter, r *http.Request) {
	articles, err := h.content.ListBreaking(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list breaking failed", "error", err)
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load breaking news", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, articles)
}

func (h *ContentHandler) GetArticleBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	article, err := h.content.GetArticleBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "article not found", nil)
			return
		}
		slog.ErrorContext(r.Context(), "get article failed", "slug", slug, "error", err)
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load article", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, article)
}
