package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Midtrans MidtransConfig
	Credits  CreditsConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type MidtransConfig struct {
	ServerKey    string
	IsProduction bool
	FinishURL    string
}

type CreditsConfig struct {
	// BaseRatePerCredit is the standard tier unit price in minor currency units.
	BaseRatePerCredit int64
	Currency          string
	LockTimeout       time.Duration
	SnowflakeNode     int64
	ReconcileInterval time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Midtrans: MidtransConfig{
			ServerKey:    getEnv("MIDTRANS_SERVER_KEY", ""),
			IsProduction: getEnv("MIDTRANS_IS_PRODUCTION", "false") == "true",
			FinishURL:    getEnv("MIDTRANS_FINISH_URL", "http://localhost:5173/billing?payment=success"),
		},
		Credits: CreditsConfig{
			BaseRatePerCredit: getEnvAsInt64("CREDITS_BASE_RATE", 15000),
			Currency:          getEnv("CREDITS_CURRENCY", "IDR"),
			LockTimeout:       getEnvAsDuration("CREDITS_LOCK_TIMEOUT", 5*time.Second),
			SnowflakeNode:     getEnvAsInt64("CREDITS_SNOWFLAKE_NODE", 1),
			ReconcileInterval: getEnvAsDuration("CREDITS_RECONCILE_INTERVAL", 10*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseInt(strValue, 10, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
