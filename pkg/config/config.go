package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the ML service
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Model training/prediction
	ML MLConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// MLConfig holds training and prediction parameters
// ⭐ SSOT: 학습/예측 파라미터는 여기서만 (재현성을 위해 리터럴 금지)
type MLConfig struct {
	// Ridge regularization strength
	Alpha float64

	// Holdout proportion and shuffle seed for the train/test split
	TestRatio float64
	SplitSeed int64

	// Minimum usable rows before training short-circuits
	MinSamples int

	// Uncertainty policy: fixed sigma/confidence, or residual-derived sigma
	Sigma               float64
	Confidence          float64
	AttributionFallback float64
	UncertaintyMode     string // fixed, residual

	// Trailing trades fetched for inference volatility/momentum
	SnapshotHistory int

	// Scheduled retraining
	RetrainSchedule string
	TrainRatePerSec float64
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8001"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		// Model parameters
		ML: MLConfig{
			Alpha:               getEnvAsFloat("ML_RIDGE_ALPHA", 1.0),
			TestRatio:           getEnvAsFloat("ML_TEST_RATIO", 0.2),
			SplitSeed:           int64(getEnvAsInt("ML_SPLIT_SEED", 42)),
			MinSamples:          getEnvAsInt("ML_MIN_SAMPLES", 10),
			Sigma:               getEnvAsFloat("ML_SIGMA", 0.5),
			Confidence:          getEnvAsFloat("ML_CONFIDENCE", 0.85),
			AttributionFallback: getEnvAsFloat("ML_ATTRIBUTION_FALLBACK", 0.5),
			UncertaintyMode:     getEnv("ML_UNCERTAINTY_MODE", "fixed"),
			SnapshotHistory:     getEnvAsInt("ML_SNAPSHOT_HISTORY", 30),
			RetrainSchedule:     getEnv("RETRAIN_SCHEDULE", "0 30 18 * * *"),
			TrainRatePerSec:     getEnvAsFloat("TRAIN_RATE_PER_SEC", 2.0),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Database URL is required
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.ML.TestRatio <= 0 || c.ML.TestRatio >= 1 {
		return fmt.Errorf("ML_TEST_RATIO must be in (0, 1)")
	}

	if c.ML.Alpha < 0 {
		return fmt.Errorf("ML_RIDGE_ALPHA must be non-negative")
	}

	if c.ML.UncertaintyMode != "fixed" && c.ML.UncertaintyMode != "residual" {
		return fmt.Errorf("ML_UNCERTAINTY_MODE must be one of: fixed, residual")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
