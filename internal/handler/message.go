package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"mynth/internal/domain/services"
	"mynth/internal/httputil"
)

// MessageHandler handles HTTP requests for chat message threads
type MessageHandler struct {
	threadService services.ThreadService
	logger        *slog.Logger
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(threadService services.ThreadService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		threadService: threadService,
		logger:        logger,
	}
}

// ListMessages returns one linear root-to-leaf thread of a chat
// GET /api/chats/{id}/messages?branch_id={messageID}
func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	chatID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var branchID *string
	if branch := r.URL.Query().Get("branch_id"); branch != "" {
		if _, err := uuid.Parse(branch); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "invalid branch_id")
			return
		}
		branchID = &branch
	}

	messages, err := h.threadService.ListMessages(r.Context(), chatID, branchID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, messages)
}

// UpsertMessage inserts or replaces a message by id. Streaming clients
// call this repeatedly with the same id as a response accumulates.
// PUT /api/messages/{id}
func (h *MessageHandler) UpsertMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req services.UpsertMessageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.ID = id

	message, err := h.threadService.UpsertMessage(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, message)
}
