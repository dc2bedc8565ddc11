package handlers

import (
	"net/http"

	"github.com/shinchan-op/SEBI-Hackathon/internal/contracts"
)

// ModelLister exposes the registry's installed model summaries
type ModelLister interface {
	Infos() []contracts.ModelInfo
	Len() int
}

// ModelsHandler handles model listing endpoints
type ModelsHandler struct {
	registry ModelLister
}

// NewModelsHandler creates a new models handler
func NewModelsHandler(registry ModelLister) *ModelsHandler {
	return &ModelsHandler{registry: registry}
}

// List returns every installed model with its recorded metrics.
// 모델이 없으면 빈 배열 — 이 엔드포인트는 실패하지 않는다.
// GET /api/models
func (h *ModelsHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.registry.Infos())
}
