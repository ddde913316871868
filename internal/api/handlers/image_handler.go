package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/rmullur/medist/internal/core/orchestrator"
)

const maxImageSize = 10 << 20 // 10MB

type ImageHandler struct {
	orch   *orchestrator.Orchestrator
	logger *zap.Logger
}

func NewImageHandler(orch *orchestrator.Orchestrator, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{orch: orch, logger: logger}
}

type imageResponse struct {
	Category      string `json:"category,omitempty"`
	Prediction    string `json:"prediction,omitempty"`
	PredictionIdx int    `json:"prediction_idx,omitempty"`
	Reply         string `json:"reply"`
	Error         string `json:"error,omitempty"`
}

// Analyze runs one image turn: classify the upload, then generate a
// condition explanation. An optional "message" field lets the turn degrade
// to a plain chat answer when the classifier is unavailable.
func (h *ImageHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeError(w, http.StatusBadRequest, "No image provided")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No image provided")
		return
	}
	defer file.Close()

	if header.Size > maxImageSize {
		writeError(w, http.StatusBadRequest, "File too large")
		return
	}

	message := r.FormValue("message")

	result := h.orch.ImageTurn(r.Context(), message, header.Filename, file)
	if result.Err != nil {
		writeJSON(w, http.StatusInternalServerError, imageResponse{
			Error: result.Err.Error(),
			Reply: result.Reply,
		})
		return
	}

	resp := imageResponse{Reply: result.Reply}
	if result.Classification != nil {
		resp.Category = result.Classification.Category
		resp.Prediction = result.Classification.Prediction
		resp.PredictionIdx = result.Classification.PredictionIdx
	}
	writeJSON(w, http.StatusOK, resp)
}
