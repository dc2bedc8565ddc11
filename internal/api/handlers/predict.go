package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/shinchan-op/SEBI-Hackathon/internal/contracts"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/logger"
)

// BondPredictor resolves one bond's T+7 price estimate
type BondPredictor interface {
	Predict(ctx context.Context, bondID int64) (*contracts.PredictionResult, error)
}

// PredictHandler handles prediction API endpoints
// ⭐ SSOT: 예측 API 핸들러는 이 구조체에서만
type PredictHandler struct {
	predictor BondPredictor
	logger    *logger.Logger
}

// NewPredictHandler creates a new predict handler
func NewPredictHandler(predictor BondPredictor, log *logger.Logger) *PredictHandler {
	return &PredictHandler{
		predictor: predictor,
		logger:    log,
	}
}

// Predict returns the T+7 price prediction for one bond
// GET /api/predict/{bond_id}
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	bondID, err := strconv.ParseInt(mux.Vars(r)["bond_id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid bond_id (expected integer)")
		return
	}

	result, err := h.predictor.Predict(r.Context(), bondID)
	if err != nil {
		switch {
		case errors.Is(err, contracts.ErrInstrumentNotFound):
			respondError(w, http.StatusNotFound, fmt.Sprintf("Bond %d not found or insufficient data", bondID))
		case errors.Is(err, contracts.ErrModelUnavailable):
			respondError(w, http.StatusServiceUnavailable, "Model not available")
		default:
			h.logger.WithError(err).WithField("bond_id", bondID).Error("Prediction failed")
			respondError(w, http.StatusInternalServerError, "Prediction failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, result)
}
