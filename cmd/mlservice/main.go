package main

import (
	"os"

	"github.com/shinchan-op/SEBI-Hackathon/cmd/mlservice/commands"
)

// main is the entry point for the ML service CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/mlservice [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
