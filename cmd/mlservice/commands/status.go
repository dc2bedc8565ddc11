package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shinchan-op/SEBI-Hackathon/internal/contracts"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/config"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/httputil"
	"github.com/shinchan-op/SEBI-Hackathon/pkg/logger"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "서비스 상태 모니터링",
	Long: `실행 중인 API 서버의 상태를 실시간으로 모니터링합니다.

표시 정보:
- Health: 전체 상태 / DB / Redis
- Models: 등록된 모델과 성능 지표

Example:
  go run ./cmd/mlservice status start
  go run ./cmd/mlservice status start --refresh 5s`,
}

// statusStartCmd represents the start subcommand
var statusStartCmd = &cobra.Command{
	Use:   "start",
	Short: "상태 모니터링 시작",
	Long: `서비스 상태를 주기적으로 갱신하며 표시합니다.

Features:
- 실시간 갱신 (--refresh 간격)
- 모델별 성능 지표
- Ctrl+C로 종료

Example:
  go run ./cmd/mlservice status start
  go run ./cmd/mlservice status start --refresh 5s`,
	RunE: runStatusStart,
}

var (
	// Status flags
	statusRefresh time.Duration
	statusBaseURL string
)

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.AddCommand(statusStartCmd)

	// Flags
	statusStartCmd.Flags().DurationVar(&statusRefresh, "refresh", 3*time.Second, "갱신 간격")
	statusStartCmd.Flags().StringVar(&statusBaseURL, "url", "", "API 서버 주소 (기본: http://localhost:$PORT)")
}

// healthSnapshot mirrors the /health response body
type healthSnapshot struct {
	Status       string `json:"status"`
	Timestamp    string `json:"timestamp"`
	ModelsLoaded int    `json:"models_loaded"`
	Database     string `json:"database"`
	Redis        string `json:"redis"`
}

func runStatusStart(cmd *cobra.Command, args []string) error {
	// Load config for the default server address
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)
	client := httputil.NewWithTimeout(cfg, log, 5*time.Second).DisableRetry()

	baseURL := statusBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%s", cfg.Port)
	}

	fmt.Println("=== Bond ML Service Status Monitor ===")
	fmt.Printf("Server: %s | Refresh: %v\n", baseURL, statusRefresh)
	fmt.Printf("Press Ctrl+C to stop\n\n")

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Status monitoring loop
	ticker := time.NewTicker(statusRefresh)
	defer ticker.Stop()

	// Initial display
	displayStatus(client, baseURL)

	for {
		select {
		case <-sigChan:
			fmt.Println("\n✅ Status monitor stopped")
			return nil

		case <-ticker.C:
			// Clear screen (ANSI escape code)
			fmt.Print("\033[H\033[2J")

			fmt.Println("=== Bond ML Service Status Monitor ===")
			fmt.Printf("Server: %s | Refresh: %v | Last update: %s\n\n", baseURL, statusRefresh, time.Now().Format("15:04:05"))

			displayStatus(client, baseURL)
		}
	}
}

func displayStatus(client *httputil.Client, baseURL string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fmt.Println("🏥 Health")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	health, err := fetchHealth(ctx, client, baseURL)
	if err != nil {
		fmt.Printf("   ❌ unreachable: %v\n\n", err)
		fmt.Println("Press Ctrl+C to stop")
		return
	}

	fmt.Printf("%-15s %10s\n", "Status:", health.Status)
	fmt.Printf("%-15s %10s\n", "Database:", health.Database)
	fmt.Printf("%-15s %10s\n", "Redis:", health.Redis)
	fmt.Printf("%-15s %10d\n", "Models:", health.ModelsLoaded)
	fmt.Println()

	fmt.Println("🤖 Models")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	models, err := fetchModels(ctx, client, baseURL)
	if err != nil {
		fmt.Printf("   ❌ %v\n", err)
	} else if len(models) == 0 {
		fmt.Println("   (no models installed)")
	} else {
		for _, m := range models {
			fmt.Printf("%-20s r2=%.4f rmse=%.4f trained=%s\n",
				m.ModelID,
				m.PerformanceMetrics["r2"],
				m.PerformanceMetrics["rmse"],
				m.TrainingDate.Format("01-02 15:04"))
		}
	}
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop")
}

func fetchHealth(ctx context.Context, client *httputil.Client, baseURL string) (*healthSnapshot, error) {
	resp, err := client.Get(ctx, baseURL+"/health")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// /health responds 200 even when degraded
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var health healthSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("decode health response: %w", err)
	}

	return &health, nil
}

func fetchModels(ctx context.Context, client *httputil.Client, baseURL string) ([]contracts.ModelInfo, error) {
	resp, err := client.Get(ctx, baseURL+"/api/models")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var models []contracts.ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		return nil, fmt.Errorf("decode models response: %w", err)
	}

	return models, nil
}
