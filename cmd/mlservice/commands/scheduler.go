package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shinchan-op/SEBI-Hackathon/internal/model"
	"github.com/shinchan-op/SEBI-Hackathon/internal/scheduler"
	"github.com/shinchan-op/SEBI-Hackathon/internal/scheduler/jobs"
	"github.com/shinchan-op/SEBI-Hackathon/internal/storage"
	"github.com/shinchan-op/SEBI-Hackathon/internal/training"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/config"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/database"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/logger"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

이 명령어는:
- 스케줄러 데몬 시작
- 등록된 작업 조회
- 작업 실행 이력 조회

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행
  status  - 작업 실행 상태 조회

Example:
  go run ./cmd/mlservice scheduler start
  go run ./cmd/mlservice scheduler list
  go run ./cmd/mlservice scheduler run model_retraining`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- model_retraining: 매일 오후 6시 30분 (풀링 + 개별 모델 재학습)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "작업 실행 상태 조회",
		RunE:  showStatus,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Bond ML Service Scheduler ===")

	// Initialize dependencies
	sched, bootstrap, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	// Restore models so the retrain job sees the installed per-bond keys
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := bootstrap.Run(ctx); err != nil {
		cancel()
		return fmt.Errorf("bootstrap models: %w", err)
	}
	cancel()

	// Start scheduler
	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, _, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	jobs := sched.GetAllJobs()

	fmt.Println("Registered jobs:")
	for _, jobName := range jobs {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	fmt.Printf("Running job: %s\n", jobName)

	sched, bootstrap, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	// Restore models first so per-bond keys get refreshed too
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := bootstrap.Run(ctx); err != nil {
		return fmt.Errorf("bootstrap models: %w", err)
	}

	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	fmt.Println("Job started (running in background)")

	// RunJob is asynchronous; give the retrain cycle time to finish
	time.Sleep(5 * time.Second)
	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	sched, _, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	stats := sched.GetJobStats()

	fmt.Println("Job Statistics:")
	fmt.Println()

	for jobName, stat := range stats {
		fmt.Printf("📊 %s\n", jobName)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d\n", stat.FailureCount)

		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}

		if stat.LastSuccess != nil {
			fmt.Printf("   Last Success: %s\n", stat.LastSuccess.Format("2006-01-02 15:04:05"))
		}

		if stat.LastFailure != nil {
			fmt.Printf("   Last Failure: %s\n", stat.LastFailure.Format("2006-01-02 15:04:05"))
		}

		fmt.Println()
	}

	return nil
}

func initScheduler() (*scheduler.Scheduler, *training.Bootstrap, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	// 4. Connect to Redis
	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}

	cache := redis.NewCache(redisClient, "mlservice")

	// 5. Create trainer
	bondRepo := storage.NewBondRepository(db.Pool)
	bundleStore := storage.NewBundleStore(cache, log.Zerolog())
	registry := model.NewRegistry(log.Zerolog())
	trainer := training.New(bondRepo, registry, bundleStore, cfg.ML, log.Zerolog())
	bootstrap := training.NewBootstrap(trainer, registry, bundleStore, log.Zerolog())

	// 6. Create scheduler
	sched := scheduler.New(log)

	// 7. Register jobs
	sched.AddJob(jobs.NewRetrainJob(trainer, registry, cfg.ML, log))

	return sched, bootstrap, nil
}
