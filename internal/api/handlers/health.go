package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/shinchan-op/SEBI-Hackathon/pkg/logger"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/redis"
)

// DBPinger reports database liveness
type DBPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles the health check endpoint
type HealthHandler struct {
	db       DBPinger
	redis    *redis.Client
	registry ModelLister
	logger   *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db DBPinger, redisClient *redis.Client, registry ModelLister, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:       db,
		redis:    redisClient,
		registry: registry,
		logger:   log,
	}
}

// Check reports service health including collaborator reachability
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := "healthy"

	dbStatus := "ok"
	if err := h.db.Ping(ctx); err != nil {
		h.logger.WithError(err).Warn("Health check: database unreachable")
		dbStatus = "unreachable"
		status = "degraded"
	}

	// Redis는 영속화 전용이라 죽어도 서빙은 된다. degraded로만 표시한다.
	redisStatus := "disabled"
	if h.redis.Enabled() {
		redisStatus = "ok"
		if err := h.redis.Redis().Ping(ctx).Err(); err != nil {
			h.logger.WithError(err).Warn("Health check: redis unreachable")
			redisStatus = "unreachable"
			status = "degraded"
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":        status,
		"timestamp":     time.Now().Format(time.RFC3339),
		"models_loaded": h.registry.Len(),
		"database":      dbStatus,
		"redis":         redisStatus,
	})
}
