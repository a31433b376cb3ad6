package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
)

type chatRequest struct {
	Message string `json:"message"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body", ProgressRetained: true})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "message is required", ProgressRetained: true})
		return
	}
	res, err := h.planner.Chat(r.Context(), id, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
