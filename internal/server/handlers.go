package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/devansh3112/product-harmony-sphere/internal/analytics"
	"github.com/devansh3112/product-harmony-sphere/internal/catalog"
	"github.com/devansh3112/product-harmony-sphere/internal/models"
	"github.com/devansh3112/product-harmony-sphere/internal/search"
	"github.com/devansh3112/product-harmony-sphere/internal/storage"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.RecentQueries = s.recentQueries()
	s.logger.Debug("search request", zap.String("query", req.Query), zap.Int("limit", req.Limit))

	start := time.Now()
	response, err := s.engine.Search(r.Context(), &req)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.tracker != nil && strings.TrimSpace(req.Query) != "" {
		s.tracker.RecordSearchPerformance(req.Query, time.Since(start), response.Total)
		s.tracker.RecordSearch(req.Query, response.Total, response.Filters)
	}
	s.respondJSON(w, http.StatusOK, response)
}

type selectRequest struct {
	Query        string               `json:"query"`
	ID           string               `json:"id"`
	Type         models.CandidateType `json:"type"`
	Title        string               `json:"title"`
	Category     string               `json:"category"`
	URL          string               `json:"url"`
	Position     int                  `json:"position"`
	ResultsCount *int                 `json:"results_count,omitempty"`
}

// handleSelect records a result click: the query goes to history, the click to
// analytics, and the response carries the URL to navigate to.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" || !req.Type.Valid() {
		s.respondError(w, http.StatusBadRequest, "id and a valid type are required")
		return
	}
	if req.Position < 0 {
		s.respondError(w, http.StatusBadRequest, "position must not be negative")
		return
	}

	c := models.Candidate{ID: req.ID, Type: req.Type, Title: req.Title, Category: req.Category, URL: req.URL}
	if s.editor != nil {
		stored, err := s.editor.Get(r.Context(), req.Type, req.ID)
		switch {
		case err == nil:
			c = stored
		case errors.Is(err, models.ErrCandidateNotFound):
			s.respondError(w, http.StatusNotFound, "candidate not found")
			return
		default:
			s.logger.Warn("select: candidate lookup failed", zap.String("key", c.Key()), zap.Error(err))
		}
	}

	if s.history != nil {
		if err := s.history.Add(r.Context(), req.Query); err != nil {
			s.logger.Warn("failed to save recent search", zap.String("query", req.Query), zap.Error(err))
		}
	}
	if s.tracker != nil {
		count := analytics.UnknownCount
		if req.ResultsCount != nil {
			count = *req.ResultsCount
		}
		s.tracker.RecordResultClick(req.Query, c.Summary(req.Position), c.Category, count)
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "recorded", "url": c.URL})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	suggestions := s.engine.Suggest(q, s.recentQueries())
	if suggestions == nil {
		suggestions = []string{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"query": q, "suggestions": suggestions})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries := []models.HistoryEntry{}
	if s.history != nil {
		entries = append(entries, s.history.Entries()...)
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, http.StatusNotImplemented, "history not enabled")
		return
	}
	if err := s.history.Clear(r.Context()); err != nil {
		s.logger.Error("clear history failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"commands":    search.DefaultCommands,
		"placeholder": search.Placeholder(s.recentQueries()),
	})
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"trending": search.TrendingSearches})
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	if s.editor == nil {
		s.respondError(w, http.StatusNotImplemented, catalog.ErrReadOnly.Error())
		return
	}
	t := models.CandidateType(chi.URLParam(r, "type"))
	id := chi.URLParam(r, "id")
	c, err := s.editor.Get(r.Context(), t, id)
	if err != nil {
		s.respondCatalogError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpsertCandidate(w http.ResponseWriter, r *http.Request) {
	if s.editor == nil {
		s.respondError(w, http.StatusNotImplemented, catalog.ErrReadOnly.Error())
		return
	}
	var c models.Candidate
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("upsert candidate request", zap.String("key", c.Key()), zap.String("title", c.Title))
	if err := s.editor.Upsert(r.Context(), c); err != nil {
		s.respondCatalogError(w, err)
		return
	}
	s.engine.Invalidate()
	s.respondJSON(w, http.StatusOK, map[string]string{"key": c.Key(), "status": "saved"})
}

func (s *Server) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	if s.editor == nil {
		s.respondError(w, http.StatusNotImplemented, catalog.ErrReadOnly.Error())
		return
	}
	t := models.CandidateType(chi.URLParam(r, "type"))
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete candidate request", zap.String("key", models.CandidateKey(t, id)))
	if err := s.editor.Delete(r.Context(), t, id); err != nil {
		s.respondCatalogError(w, err)
		return
	}
	s.engine.Invalidate()
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusResponse struct {
	Source         string `json:"source"`
	Candidates     *int64 `json:"candidates,omitempty"`
	CachedQueries  int    `json:"cached_queries"`
	RecentSearches int    `json:"recent_searches"`
	Editable       bool   `json:"editable"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	DiskUsageBytes *int64 `json:"disk_usage_bytes,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Source:        s.config.Search.Source,
		CachedQueries: s.engine.CacheLen(),
		Editable:      s.editor != nil,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}
	if s.history != nil {
		resp.RecentSearches = len(s.history.Entries())
	}
	if n, ok, err := s.candidateCount(r.Context()); err != nil {
		s.logger.Error("status: count candidates failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	} else if ok {
		resp.Candidates = &n
	}
	st := s.config.Storage
	if diskBytes, err := storage.DiskUsageBytes(st.DatabasePath, st.BleveIndexPath, st.CatalogPath, st.HistoryDir); err == nil {
		resp.DiskUsageBytes = &diskBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) candidateCount(ctx context.Context) (int64, bool, error) {
	if s.counter != nil {
		n, err := s.counter.Count(ctx)
		return n, err == nil, err
	}
	switch e := s.editor.(type) {
	case interface {
		Count(context.Context) (int64, error)
	}:
		n, err := e.Count(ctx)
		return n, err == nil, err
	case interface{ Len() int }:
		return int64(e.Len()), true, nil
	}
	return 0, false, nil
}

func (s *Server) recentQueries() []string {
	if s.history == nil {
		return nil
	}
	return s.history.Queries()
}

func (s *Server) respondCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrCandidateNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidCandidate):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrReadOnly):
		s.respondError(w, http.StatusNotImplemented, err.Error())
	default:
		s.logger.Error("catalog operation failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
