package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/shinchan-op/SEBI-Hackathon/internal/model"
	"github.com/shinchan-op/SEBI-Hackathon/internal/storage"
	"github.com/shinchan-op/SEBI-Hackathon/internal/training"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/config"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/database"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/logger"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/redis"
)

// trainCmd represents the train command
var trainCmd = &cobra.Command{
	Use:   "train [bond_id]",
	Short: "모델 학습",
	Long: `채권 가격 예측 모델을 학습합니다.

bond_id를 지정하면 해당 채권 전용 모델을,
생략하면 전체 거래 데이터로 풀링(general) 모델을 학습합니다.

학습된 번들은 Redis에 저장되어 재시작 시 복원됩니다.

Example:
  go run ./cmd/mlservice train        # 풀링 모델
  go run ./cmd/mlservice train 101    # 채권 101 전용 모델`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Bond ML Service Model Training ===")

	// Parse optional bond ID
	var bondID *int64
	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid bond_id %q: %w", args[0], err)
		}
		bondID = &id
	}

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

	// 5. Create trainer
	bondRepo := storage.NewBondRepository(db.Pool)
	bundleStore := storage.NewBundleStore(cache, log.Zerolog())
	registry := model.NewRegistry(log.Zerolog())
	trainer := training.New(bondRepo, registry, bundleStore, cfg.ML, log.Zerolog())

	// 6. Train
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := trainer.Train(ctx, bondID)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	fmt.Println("\n✅ Training completed")
	fmt.Printf("   Model Key:     %s\n", report.ModelKey)
	fmt.Printf("   Samples:       %d (train %d / test %d)\n", report.Samples, report.TrainSamples, report.TestSamples)
	fmt.Printf("   Train R²:      %.4f\n", report.TrainR2)
	fmt.Printf("   Test R²:       %.4f\n", report.TestR2)
	fmt.Printf("   MAE:           %.4f\n", report.MAE)
	fmt.Printf("   RMSE:          %.4f\n", report.RMSE)
	fmt.Printf("   Trained At:    %s\n", report.TrainedAt.Format(time.RFC3339))

	return nil
}
