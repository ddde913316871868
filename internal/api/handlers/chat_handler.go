package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rmullur/medist/internal/core/orchestrator"
)

type ChatHandler struct {
	orch *orchestrator.Orchestrator
}

func NewChatHandler(orch *orchestrator.Orchestrator) *ChatHandler {
	return &ChatHandler{orch: orch}
}

type chatRequest struct {
	Message string `json:"message"`
}

// Chat accepts one text turn and returns one assistant turn. Failures keep
// the {error, reply} shape so the caller always has displayable text.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "No message provided")
		return
	}

	result := h.orch.TextTurn(r.Context(), req.Message)
	if result.Err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": result.Err.Error(),
			"reply": result.Reply,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": result.Reply})
}
