package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mlservice",
	Short: "채권 T+7 가격 예측 ML 서비스",
	Long: `Bond Price Prediction ML Service

릿지 회귀 기반 채권 7일 후 가격 예측.
거래 이력 수집부터 학습, 예측 API 제공까지.

Usage:
  go run ./cmd/mlservice [command]

Examples:
  go run ./cmd/mlservice api
  go run ./cmd/mlservice train 101
  go run ./cmd/mlservice predict 101
  go run ./cmd/mlservice scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
