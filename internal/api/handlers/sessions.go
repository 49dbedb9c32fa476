package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"honeytrap-lab/internal/domain/models"
	"honeytrap-lab/internal/domain/services/session"
	"honeytrap-lab/internal/infrastructure/cache"
	"honeytrap-lab/internal/infrastructure/database/repository"
	"honeytrap-lab/pkg/logger"
)

// SessionsHandler handles session inspection and control endpoints
type SessionsHandler struct {
	manager *session.Manager
	reports *repository.ReportRepository
	cache   *cache.RedisCache
	logger  *logger.Logger
}

// NewSessionsHandler creates a new SessionsHandler
func NewSessionsHandler(m *session.Manager, reports *repository.ReportRepository, c *cache.RedisCache, log *logger.Logger) *SessionsHandler {
	return &SessionsHandler{
		manager: m,
		reports: reports,
		cache:   c,
		logger:  log.WithComponent("sessions-handler"),
	}
}

// List handles GET /api/v1/sessions - lists live sessions
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	views := h.manager.ListSessions()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"sessions": views,
		"count":    len(views),
	})
}

// Get handles GET /api/v1/sessions/{id} - returns one session snapshot.
// Completed sessions fall through to the Redis archive.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, `{"error":"session id is required"}`, http.StatusBadRequest)
		return
	}

	if view, ok := h.manager.GetSession(id); ok {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(view)
		return
	}

	if h.cache != nil {
		var archived models.SessionView
		if err := h.cache.GetArchivedSession(r.Context(), id, &archived); err == nil {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(archived)
			return
		}
	}

	http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
}

// Finalize handles POST /api/v1/sessions/{id}/finalize - operator-forced wrap-up
func (h *SessionsHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, `{"error":"session id is required"}`, http.StatusBadRequest)
		return
	}

	if !h.manager.ForceFinalize(id) {
		http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
		return
	}

	h.logger.Info().Str("session_id", id).Msg("session finalization forced")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"session_id": id,
		"status":     "finalizing",
	})
}

// Report handles GET /api/v1/sessions/{id}/report - the delivered report record
func (h *SessionsHandler) Report(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, `{"error":"session id is required"}`, http.StatusBadRequest)
		return
	}

	if h.reports == nil {
		http.Error(w, `{"error":"report archive not configured"}`, http.StatusNotImplemented)
		return
	}

	rec, err := h.reports.GetBySession(r.Context(), id)
	if err != nil {
		http.Error(w, `{"error":"report not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// Recent handles GET /api/v1/sessions/recent - recent report records
func (h *SessionsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	if h.reports == nil {
		http.Error(w, `{"error":"report archive not configured"}`, http.StatusNotImplemented)
		return
	}

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	recs, err := h.reports.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list recent reports")
		http.Error(w, `{"error":"failed to list reports"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"reports": recs,
		"count":   len(recs),
	})
}
