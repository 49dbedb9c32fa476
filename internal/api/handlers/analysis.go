package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"honeytrap-lab/internal/config"
	"honeytrap-lab/internal/domain/models"
	"honeytrap-lab/internal/domain/services/detection"
	"honeytrap-lab/internal/domain/services/extraction"
	"honeytrap-lab/internal/infrastructure/cache"
	"honeytrap-lab/pkg/logger"
)

// AnalysisHandler handles stateless detection endpoints
type AnalysisHandler struct {
	detector  *detection.Engine
	extractor *extraction.Extractor
	cache     *cache.RedisCache
	cfg       config.DetectionConfig
	logger    *logger.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler
func NewAnalysisHandler(d *detection.Engine, e *extraction.Extractor, c *cache.RedisCache, cfg config.DetectionConfig, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		detector:  d,
		extractor: e,
		cache:     c,
		cfg:       cfg,
		logger:    log.WithComponent("analysis-handler"),
	}
}

// Analyze handles POST /api/v1/analyze - scores one text without a session.
// Results are cached by text hash when Redis is configured.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug().Err(err).Msg("invalid request body")
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	if req.Text == "" {
		http.Error(w, `{"error":"text is required"}`, http.StatusBadRequest)
		return
	}
	if len(req.Text) > maxMessageLength {
		http.Error(w, `{"error":"text exceeds maximum length"}`, http.StatusBadRequest)
		return
	}

	if h.cache != nil && h.cfg.CacheResults {
		var cached models.AnalyzeResponse
		if err := h.cache.GetCachedAnalysis(r.Context(), req.Text, &cached); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			json.NewEncoder(w).Encode(cached)
			return
		}
	}

	resp := models.AnalyzeResponse{
		Detection:    h.detector.Analyze(r.Context(), req.Text, nil),
		Intelligence: h.extractor.Extract(req.Text),
	}

	if h.cache != nil && h.cfg.CacheResults {
		now := time.Now().UTC()
		cached := resp
		cached.CachedAt = &now
		if err := h.cache.CacheAnalysis(r.Context(), req.Text, cached, h.cfg.CacheTTL); err != nil {
			h.logger.Debug().Err(err).Msg("failed to cache analysis")
		}
	}

	h.logger.Info().
		Bool("is_scam", resp.Detection.IsScam).
		Float64("confidence", resp.Detection.Confidence).
		Str("scam_type", string(resp.Detection.ScamType)).
		Msg("text analyzed")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
