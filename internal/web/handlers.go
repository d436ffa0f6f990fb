package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/tobiasmay/go-playlist-fingerprint/internal/analysis"
	"github.com/tobiasmay/go-playlist-fingerprint/internal/catalog"
	"github.com/tobiasmay/go-playlist-fingerprint/internal/mood"
	"github.com/tobiasmay/go-playlist-fingerprint/internal/store"
)

// Handlers contains the HTTP handlers for the analysis API.
type Handlers struct {
	catalog   *catalog.Client
	appSource analysis.Source // optional pre-authorized fallback, may be nil
	analyzer  *analysis.Service
	moods     *mood.Scheduler
	store     store.Store
	logger    *log.Logger
}

// HandlersConfig holds the collaborators for NewHandlers.
type HandlersConfig struct {
	Catalog   *catalog.Client
	AppSource analysis.Source
	Analyzer  *analysis.Service
	Moods     *mood.Scheduler
	Store     store.Store
	Logger    *log.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg HandlersConfig) *Handlers {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Handlers{
		catalog:   cfg.Catalog,
		appSource: cfg.AppSource,
		analyzer:  cfg.Analyzer,
		moods:     cfg.Moods,
		store:     cfg.Store,
		logger:    logger,
	}
}

// analyzeResponse is a report optionally extended with per-track moods.
type analyzeResponse struct {
	*analysis.Report
	Moods map[string]string `json:"moods,omitempty"`
}

// AnalyzePlaylist handles GET /api/playlist/{playlistID}. The caller's
// bearer token authorizes the catalog calls; with ?moods=1 the response
// also carries per-track mood labels.
func (h *Handlers) AnalyzePlaylist(w http.ResponseWriter, r *http.Request) {
	src, ok := h.sourceFor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
		return
	}

	playlistID := chi.URLParam(r, "playlistID")

	report, err := h.analyzer.Run(r.Context(), src, playlistID)
	if errors.Is(err, analysis.ErrNoTracks) {
		writeError(w, http.StatusNotFound, "Playlist not found or empty")
		return
	}
	var upstream *catalog.UpstreamError
	if errors.As(err, &upstream) {
		h.logger.Warn("catalog request failed", "playlist", playlistID, "err", err)
		writeError(w, http.StatusBadGateway, "Upstream catalog request failed")
		return
	}
	if err != nil {
		h.logger.Error("analysis failed", "playlist", playlistID, "err", err)
		writeError(w, http.StatusInternalServerError, "Analysis failed")
		return
	}

	id, err := h.store.Save(r.Context(), report)
	if err != nil {
		h.logger.Error("saving analysis failed", "playlist", playlistID, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to save analysis")
		return
	}
	report.AnalysisID = id

	resp := analyzeResponse{Report: report}
	if wantMoods(r) {
		resp.Moods = h.moods.ClassifyAll(r.Context(), report.Tracks)
	}
	writeJSON(w, http.StatusOK, resp)
}

// PlaylistMoods handles GET /api/playlist/{playlistID}/moods: the mood
// pipeline alone, without computing or persisting a report.
func (h *Handlers) PlaylistMoods(w http.ResponseWriter, r *http.Request) {
	src, ok := h.sourceFor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
		return
	}

	playlistID := chi.URLParam(r, "playlistID")

	tracks, err := src.PlaylistTracks(r.Context(), playlistID)
	if err != nil {
		h.logger.Warn("catalog request failed", "playlist", playlistID, "err", err)
		writeError(w, http.StatusBadGateway, "Upstream catalog request failed")
		return
	}
	if len(tracks) == 0 {
		writeError(w, http.StatusNotFound, "Playlist not found or empty")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"playlist_id": playlistID,
		"moods":       h.moods.ClassifyAll(r.Context(), tracks),
	})
}

// GetAnalysis handles GET /api/analysis/{analysisID}.
func (h *Handlers) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	analysisID := chi.URLParam(r, "analysisID")

	report, err := h.store.Load(r.Context(), analysisID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Analysis not found")
		return
	}
	if err != nil {
		h.logger.Error("loading analysis failed", "analysis", analysisID, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to load analysis")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// sourceFor picks the catalog source for a request: the caller's bearer
// token when present, otherwise the pre-authorized app source if one is
// configured.
func (h *Handlers) sourceFor(r *http.Request) (analysis.Source, bool) {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok && token != "" {
		return h.catalog.WithToken(token), true
	}
	if h.appSource != nil {
		return h.appSource, true
	}
	return nil, false
}

func wantMoods(r *http.Request) bool {
	switch r.URL.Query().Get("moods") {
	case "1", "true", "yes":
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
