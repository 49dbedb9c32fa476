// Package ops exposes the operator surface on a separate listener so
// the decoy-facing API can stay locked down independently.
package ops

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"honeytrap-lab/internal/domain/services/session"
	"honeytrap-lab/internal/infrastructure/cache"
	"honeytrap-lab/internal/infrastructure/database/repository"
	"honeytrap-lab/pkg/logger"
)

// Server is the ops/admin HTTP server
type Server struct {
	manager *session.Manager
	reports *repository.ReportRepository
	cache   *cache.RedisCache
	logger  *logger.Logger
	srv     *http.Server
}

// NewServer creates the ops server bound to addr
func NewServer(addr string, m *session.Manager, reports *repository.ReportRepository, c *cache.RedisCache, log *logger.Logger) *Server {
	s := &Server{
		manager: m,
		reports: reports,
		cache:   c,
		logger:  log.WithComponent("ops-server"),
	}

	r := mux.NewRouter()
	r.HandleFunc("/ops/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/ops/stats", s.handleStats).Methods("GET")
	r.HandleFunc("/ops/sessions", s.handleListSessions).Methods("GET")
	r.HandleFunc("/ops/sessions/recent", s.handleRecentReports).Methods("GET")
	r.HandleFunc("/ops/sessions/{id}", s.handleGetSession).Methods("GET")
	r.HandleFunc("/ops/sessions/{id}/finalize", s.handleFinalize).Methods("POST")

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins serving. Blocks until the listener closes.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.srv.Addr).Msg("ops server starting")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.manager.Stats()

	payload := map[string]any{
		"engine": stats,
	}
	if s.reports != nil {
		if n, err := s.reports.CountDelivered(r.Context()); err == nil {
			payload["archived_delivered_reports"] = n
		}
	}

	s.respondWithJSON(w, http.StatusOK, payload)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	views := s.manager.ListSessions()
	s.respondWithJSON(w, http.StatusOK, map[string]any{
		"sessions": views,
		"count":    len(views),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if view, ok := s.manager.GetSession(id); ok {
		s.respondWithJSON(w, http.StatusOK, view)
		return
	}

	if s.cache != nil {
		var archived json.RawMessage
		if err := s.cache.GetArchivedSession(r.Context(), id, &archived); err == nil {
			s.respondWithJSON(w, http.StatusOK, archived)
			return
		}
	}

	s.respondWithError(w, http.StatusNotFound, "session not found")
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if !s.manager.ForceFinalize(id) {
		s.respondWithError(w, http.StatusNotFound, "session not found")
		return
	}

	s.logger.Info().Str("session_id", id).Msg("session finalization forced via ops")
	s.respondWithJSON(w, http.StatusAccepted, map[string]any{
		"session_id": id,
		"status":     "finalizing",
	})
}

func (s *Server) handleRecentReports(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		s.respondWithError(w, http.StatusNotImplemented, "report archive not configured")
		return
	}

	recs, err := s.reports.ListRecent(r.Context(), 50)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list recent reports")
		s.respondWithError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]any{
		"reports": recs,
		"count":   len(recs),
	})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]any{"error": message})
}
