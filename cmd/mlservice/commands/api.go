package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shinchan-op/SEBI-Hackathon/internal/api"
	"github.com/shinchan-op/SEBI-Hackathon/internal/api/handlers"
	"github.com/shinchan-op/SEBI-Hackathon/internal/contracts"
	"github.com/shinchan-op/SEBI-Hackathon/internal/model"
	"github.com/shinchan-op/SEBI-Hackathon/internal/predict"
	"github.com/shinchan-op/SEBI-Hackathon/internal/storage"
	"github.com/shinchan-op/SEBI-Hackathon/internal/training"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/config"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/database"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/logger"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `예측/학습 REST API 서버를 시작합니다.

이 명령어는:
- 저장된 모델 번들 복원 (없으면 풀링 모델 학습)
- HTTP API 서버 시작
- 예측/학습/모델 조회 엔드포인트 제공

Endpoints:
  GET  /health                  - Health check
  GET  /api/predict/{bond_id}   - T+7 가격 예측
  POST /api/train?bond_id=101   - 모델 학습 트리거
  GET  /api/models              - 등록된 모델 목록

Example:
  go run ./cmd/mlservice api
  go run ./cmd/mlservice api --port 8001`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT 환경변수)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Bond ML Service API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	// 4. Connect to Redis (optional; bundles fall back to in-memory only)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	cache := redis.NewCache(redisClient, "mlservice")
	limiter := redis.NewRateLimiter(redisClient, "mlservice")

	// 5. Create repositories and bundle store
	bondRepo := storage.NewBondRepository(db.Pool)
	bundleStore := storage.NewBundleStore(cache, log.Zerolog())

	// 6. Create model registry
	registry := model.NewRegistry(log.Zerolog())

	// 7. Create trainer and predictor
	trainer := training.New(bondRepo, registry, bundleStore, cfg.ML, log.Zerolog())
	predictor := predict.New(bondRepo, registry, uncertaintyPolicy(cfg), cfg.ML.SnapshotHistory, log.Zerolog())

	// 8. Restore persisted bundles, or train the pooled model cold
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	bootstrap := training.NewBootstrap(trainer, registry, bundleStore, log.Zerolog())
	if err := bootstrap.Run(bootCtx); err != nil {
		bootCancel()
		return fmt.Errorf("bootstrap models: %w", err)
	}
	bootCancel()

	log.WithField("models_loaded", registry.Len()).Info("Model registry ready")

	// 9. Create handlers
	healthHandler := handlers.NewHealthHandler(db, redisClient, registry, log)
	predictHandler := handlers.NewPredictHandler(predictor, log)
	trainHandler := handlers.NewTrainHandler(trainer, limiter, log)
	modelsHandler := handlers.NewModelsHandler(registry)

	// 10. Create router
	router := api.NewRouter(healthHandler, predictHandler, trainHandler, modelsHandler, log)

	// 11. Create server
	server := api.New(cfg, log, router)

	// 12. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/predict/{bond_id}")
	fmt.Println("  POST /api/train?bond_id=101")
	fmt.Println("  GET  /api/models")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

// uncertaintyPolicy builds the configured prediction interval policy
func uncertaintyPolicy(cfg *config.Config) contracts.UncertaintyPolicy {
	if cfg.ML.UncertaintyMode == "residual" {
		return contracts.ResidualUncertainty{
			FloorSigma:      cfg.ML.Sigma,
			ConfidenceValue: cfg.ML.Confidence,
			FallbackWeight:  cfg.ML.AttributionFallback,
		}
	}
	return contracts.FixedUncertainty{
		SigmaValue:      cfg.ML.Sigma,
		ConfidenceValue: cfg.ML.Confidence,
		FallbackWeight:  cfg.ML.AttributionFallback,
	}
}
