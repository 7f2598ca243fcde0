package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kentbulteni/analytics-service/internal/observability"
	"github.com/kentbulteni/analytics-service/internal/security"
	"github.com/kentbulteni/analytics-service/internal/service"
)

type TrackHandler struct {
	ingest  service.IngestServiceInterface
	cookies *security.CookieManager
}

func NewTrackHandler(ingest service.IngestServiceInterface, cookies *security.CookieManager) *TrackHandler {
	return &TrackHandler{ingest: ingest, cookies: cookies}
}

type trackRequest struct {
	ContentType string `json:"contentType"`
	ContentID   string `json:"contentId"`
	Slug        string `json:"slug"`
	Route       string `json:"route"`
	Category    string `json:"category"`
	City        string `json:"city"`
}

// TrackView handles POST /track-view. The body is always a bare
// {"ok":bool}; a duplicate is indistinguishable from a counted view so
// probing clients learn nothing about dedup state.
func (h *TrackHandler) TrackView(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.ErrorContext(r.Context(), "track view panic", "panic", rec)
			observability.RecordTrackRequest(r.Context(), "error")
			writeAck(w, http.StatusInternalServerError, false)
		}
	}()

	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordTrackRequest(r.Context(), "bad_request")
		writeAck(w, http.StatusBadRequest, false)
		return
	}
	if req.ContentType == "" || req.Route == "" {
		observability.RecordTrackRequest(r.Context(), "bad_request")
		writeAck(w, http.StatusBadRequest, false)
		return
	}

	result, err := h.ingest.Track(r.Context(), service.TrackInput{
		ContentType:  req.ContentType,
		ContentID:    req.ContentID,
		Slug:         req.Slug,
		Route:        req.Route,
		CategorySlug: req.Category,
		CitySlug:     req.City,
		SessionToken: security.GetCookie(r, h.cookies.Name),
		ClientIP:     clientIP(r),
		UserAgent:    userAgent(r),
	})
	if err != nil {
		// the cookie is only ever issued after a fully persisted session,
		// so a failed request leaves the client's cookie untouched and a
		// retry reuses the same identity instead of reopening locked routes
		slog.ErrorContext(r.Context(), "track view failed", "route", req.Route, "error", err)
		observability.RecordTrackRequest(r.Context(), "error")
		writeAck(w, http.StatusInternalServerError, false)
		return
	}

	if result.NewSession {
		h.cookies.SetSessionCookie(w, result.SessionID)
	}
	if result.Counted {
		observability.RecordTrackRequest(r.Context(), "counted")
	} else {
		observability.RecordTrackRequest(r.Context(), "duplicate")
	}
	writeAck(w, http.StatusOK, true)
}

func writeAck(w http.ResponseWriter, status int, ok bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if ok {
		_, _ = w.Write([]byte(`{"ok":true}`))
		return
	}
	_, _ = w.Write([]byte(`{"ok":false}`))
}

// clientIP takes the first X-Forwarded-For hop, then X-Real-Ip, then a
// sentinel. The value is only ever hashed.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, found := strings.Cut(xff, ","); found {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xff)
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	return "0.0.0.0"
}

func userAgent(r *http.Request) string {
	if ua := r.Header.Get("User-Agent"); ua != "" {
		return ua
	}
	return "unknown"
}
