// Package server exposes the read API and a manual refresh trigger over
// HTTP.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/wirefeedr/wirefeedr/internal/ingest"
	"github.com/wirefeedr/wirefeedr/internal/scheduler"
	"github.com/wirefeedr/wirefeedr/internal/store"
	"github.com/wirefeedr/wirefeedr/pkg/cluster"
	"github.com/wirefeedr/wirefeedr/pkg/trends"
)

// Options carry the default listing behavior applied when a request does
// not override it.
type Options struct {
	Port                int
	MinScore            int
	Recency             time.Duration
	MaxPerSource        int
	SimilarityThreshold float64
}

// Server provides the HTTP API.
type Server struct {
	store     store.Store
	refresher *ingest.Refresher
	opts      Options
}

// New creates a new HTTP server.
func New(s store.Store, refresher *ingest.Refresher, opts Options) *Server {
	if opts.Port == 0 {
		opts.Port = 8080
	}
	if opts.Recency == 0 {
		opts.Recency = 24 * time.Hour
	}
	if opts.SimilarityThreshold == 0 {
		opts.SimilarityThreshold = cluster.DefaultThreshold
	}
	return &Server{store: s, refresher: refresher, opts: opts}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/articles", s.handleArticles)
	mux.HandleFunc("/api/v1/topics", s.handleTopics)
	mux.HandleFunc("/api/v1/feeds", s.handleFeeds)
	mux.HandleFunc("/api/v1/trends/publishers", s.handlePublisherTrends)
	mux.HandleFunc("/api/v1/trends/authors", s.handleAuthorTrends)
	mux.HandleFunc("/api/v1/anomalies", s.handleAnomalies)
	mux.HandleFunc("/api/v1/refresh", s.handleRefresh)
	return mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.opts.Port)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listOpts builds article listing options from query parameters, falling
// back to the configured defaults.
func (s *Server) listOpts(r *http.Request) store.ListOpts {
	q := r.URL.Query()
	opts := store.ListOpts{
		MinScore:     s.opts.MinScore,
		MaxPerSource: s.opts.MaxPerSource,
		Since:        time.Now().Add(-s.opts.Recency),
		Limit:        200,
	}
	if v := q.Get("min_score"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.MinScore = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Limit = n
		}
	}
	if v := q.Get("feed"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			opts.FeedIDs = []int64{id}
		}
	}
	if v := q.Get("since"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			opts.Since = t
		}
	}
	if q.Get("all") == "true" {
		opts.Since = time.Time{}
		opts.MinScore = 0
	}
	opts.UnreadOnly = q.Get("unread") == "true"
	opts.FavoritesOnly = q.Get("favorites") == "true"
	opts.Search = q.Get("search")
	opts.Category = q.Get("category")
	return opts
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	articles, err := s.store.ListArticles(r.Context(), s.listOpts(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  articles,
		"count": len(articles),
	})
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	threshold := s.opts.SimilarityThreshold
	if v := r.URL.Query().Get("threshold"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 1 {
			threshold = f
		}
	}

	articles, err := s.store.ListArticles(r.Context(), s.listOpts(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	clusters := cluster.Group(articles, threshold)
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  clusters,
		"count": len(clusters),
	})
}

func (s *Server) handleFeeds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	feeds, err := s.store.ListFeeds(r.Context(), false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  feeds,
		"count": len(feeds),
	})
}

func (s *Server) handlePublisherTrends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	history, err := s.store.PublisherHistory(r.Context(), r.URL.Query().Get("domain"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	data := trends.Aggregate(history)
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  data,
		"count": len(data),
	})
}

func (s *Server) handleAuthorTrends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	history, err := s.store.AuthorHistory(r.Context(), r.URL.Query().Get("author"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	data := trends.Aggregate(history)
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  data,
		"count": len(data),
	})
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	since := time.Now().Add(-s.opts.Recency)
	if v := r.URL.Query().Get("since"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			since = t
		}
	}

	anomalies, err := scheduler.DetectAnomalies(r.Context(), s.store, since)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  anomalies,
		"count": len(anomalies),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats, err := s.refresher.RefreshAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"feeds":    stats.Feeds,
		"fetched":  stats.Fetched,
		"inserted": stats.Inserted,
		"failed":   stats.Failed,
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
