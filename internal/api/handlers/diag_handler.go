package handlers

import (
	"fmt"
	"net/http"
)

type DiagHandler struct {
	apiKey string
}

func NewDiagHandler(apiKey string) *DiagHandler {
	return &DiagHandler{apiKey: apiKey}
}

// APIKeyStatus reports whether the generative-service key is configured.
// Only a masked fragment ever leaves the server.
func (h *DiagHandler) APIKeyStatus(w http.ResponseWriter, r *http.Request) {
	if h.apiKey == "" {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": "Gemini API Key is not defined in environment variables",
		})
		return
	}

	masked := "****"
	if len(h.apiKey) >= 8 {
		masked = fmt.Sprintf("%s...%s", h.apiKey[:4], h.apiKey[len(h.apiKey)-4:])
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "API key is configured",
		"details": map[string]any{
			"keyLength": len(h.apiKey),
			"maskedKey": masked,
		},
	})
}
