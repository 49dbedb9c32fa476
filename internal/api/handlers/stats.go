package handlers

import (
	"encoding/json"
	"net/http"

	"honeytrap-lab/internal/domain/services/session"
	"honeytrap-lab/internal/infrastructure/database/repository"
	"honeytrap-lab/pkg/logger"
)

// StatsHandler handles statistics endpoints
type StatsHandler struct {
	manager *session.Manager
	reports *repository.ReportRepository
	logger  *logger.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(m *session.Manager, reports *repository.ReportRepository, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		manager: m,
		reports: reports,
		logger:  log.WithComponent("stats"),
	}
}

// Get handles GET /api/v1/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats := h.manager.Stats()

	payload := map[string]any{
		"engine": stats,
	}
	if h.reports != nil {
		if n, err := h.reports.CountDelivered(r.Context()); err == nil {
			payload["archived_delivered_reports"] = n
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}
