package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shinchan-op/SEBI-Hackathon/internal/contracts"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/logger"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/redis"
)

// ModelTrainer runs one training pass for a bond or the pooled model
type ModelTrainer interface {
	Train(ctx context.Context, bondID *int64) (*contracts.TrainingReport, error)
}

// TrainHandler handles training API endpoints
// ⭐ SSOT: 학습 API 핸들러는 이 구조체에서만
type TrainHandler struct {
	trainer ModelTrainer
	limiter *redis.RateLimiter
	logger  *logger.Logger
}

// NewTrainHandler creates a new train handler. limiter는 nil일 수 있다
// (Redis 비활성 배포에서는 레이트 리밋 없이 동작).
func NewTrainHandler(trainer ModelTrainer, limiter *redis.RateLimiter, log *logger.Logger) *TrainHandler {
	return &TrainHandler{
		trainer: trainer,
		limiter: limiter,
		logger:  log,
	}
}

// TrainResponse represents a training trigger response
type TrainResponse struct {
	Message string                    `json:"message"`
	Report  *contracts.TrainingReport `json:"report"`
}

// Train triggers model training for one bond or the general model
// POST /api/train?bond_id=101 (bond_id 생략 시 general)
func (h *TrainHandler) Train(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.limiter != nil {
		allowed, _, err := h.limiter.Allow(ctx, redis.TrainRateLimit)
		if err != nil {
			// 리밋 판정 실패가 학습을 막아서는 안 된다
			h.logger.WithError(err).Warn("Train rate limit check failed, allowing request")
		} else if !allowed {
			respondError(w, http.StatusTooManyRequests, "Training rate limit exceeded, retry later")
			return
		}
	}

	var bondID *int64
	target := "general"
	if raw := r.URL.Query().Get("bond_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid bond_id (expected integer)")
			return
		}
		bondID = &id
		target = raw
	}

	report, err := h.trainer.Train(ctx, bondID)
	if err != nil {
		switch {
		case errors.Is(err, contracts.ErrNoTrainingData):
			respondError(w, http.StatusNotFound, fmt.Sprintf("No training data available for bond %s", target))
		default:
			h.logger.WithError(err).WithField("target", target).Error("Training failed")
			respondError(w, http.StatusInternalServerError, "Model training failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, TrainResponse{
		Message: fmt.Sprintf("Model training completed for bond %s", target),
		Report:  report,
	})
}
