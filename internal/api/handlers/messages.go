package handlers

import (
	"encoding/json"
	"net/http"

	"honeytrap-lab/internal/domain/models"
	"honeytrap-lab/internal/domain/services/session"
	"honeytrap-lab/pkg/logger"
)

// maxMessageLength guards against oversized message bodies
const maxMessageLength = 10000

// MessagesHandler handles inbound scammer message endpoints
type MessagesHandler struct {
	manager *session.Manager
	logger  *logger.Logger
}

// NewMessagesHandler creates a new MessagesHandler
func NewMessagesHandler(m *session.Manager, log *logger.Logger) *MessagesHandler {
	return &MessagesHandler{
		manager: m,
		logger:  log.WithComponent("messages-handler"),
	}
}

// Process handles POST /api/v1/messages - runs one message through the engine
func (h *MessagesHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req models.ProcessMessageRequest
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

	resp := h.manager.ProcessMessage(r.Context(), req)

	h.logger.Info().
		Str("session_id", resp.SessionID).
		Str("stage", string(resp.Stage)).
		Bool("is_scam", resp.Detection.IsScam).
		Float64("confidence", resp.Detection.Confidence).
		Bool("should_finalize", resp.ShouldFinalize).
		Msg("message processed")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
