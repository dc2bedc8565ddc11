package commands

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/shinchan-op/SEBI-Hackathon/internal/model"
	"github.com/shinchan-op/SEBI-Hackathon/internal/predict"
	"github.com/shinchan-op/SEBI-Hackathon/internal/storage"
	"github.com/shinchan-op/SEBI-Hackathon/internal/training"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/config"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/database"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/logger"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/redis"
)

// predictCmd represents the predict command
var predictCmd = &cobra.Command{
	Use:   "predict <bond_id>",
	Short: "T+7 가격 예측",
	Long: `채권의 7일 후 예상 가격을 출력합니다.

저장된 모델 번들을 복원한 뒤 (없으면 풀링 모델을 학습) 예측합니다.
채권 전용 모델이 없으면 풀링(general) 모델로 폴백합니다.

Example:
  go run ./cmd/mlservice predict 101`,
	Args: cobra.ExactArgs(1),
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	bondID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid bond_id %q: %w", args[0], err)
	}

	fmt.Printf("=== Bond ML Service Prediction (bond %d) ===\n", bondID)

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	// 4. Connect to Redis
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	cache := redis.NewCache(redisClient, "mlservice")

	// 5. Restore models (or train the pooled model cold)
	bondRepo := storage.NewBondRepository(db.Pool)
	bundleStore := storage.NewBundleStore(cache, log.Zerolog())
	registry := model.NewRegistry(log.Zerolog())
	trainer := training.New(bondRepo, registry, bundleStore, cfg.ML, log.Zerolog())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	bootstrap := training.NewBootstrap(trainer, registry, bundleStore, log.Zerolog())
	if err := bootstrap.Run(ctx); err != nil {
		return fmt.Errorf("bootstrap models: %w", err)
	}

	// 6. Predict
	predictor := predict.New(bondRepo, registry, uncertaintyPolicy(cfg), cfg.ML.SnapshotHistory, log.Zerolog())

	result, err := predictor.Predict(ctx, bondID)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	fmt.Println("\n✅ Prediction completed")
	fmt.Printf("   Model:         %s (%s)\n", result.ModelKey, result.ModelVersion)
	fmt.Printf("   T+7 Price:     %.4f\n", result.T7PriceMean)
	fmt.Printf("   Interval:      [%.4f, %.4f]\n", result.T7Low, result.T7High)
	fmt.Printf("   Confidence:    %.2f\n", result.Confidence)

	// 기여도는 내림차순으로 표시
	type weighted struct {
		name   string
		weight float64
	}
	features := make([]weighted, 0, len(result.FeatureImportance))
	for name, w := range result.FeatureImportance {
		features = append(features, weighted{name, w})
	}
	sort.Slice(features, func(i, j int) bool { return features[i].weight > features[j].weight })

	fmt.Println("\n   Feature Importance:")
	for _, f := range features {
		fmt.Printf("     %-25s %.4f\n", f.name, f.weight)
	}

	return nil
}
