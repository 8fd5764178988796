package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	DatabaseURL        string
	JWTSecret          string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	SyncStaleness      time.Duration
	SyncWorkers        int
	TickerEnabled      bool
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	staleness := 5 * time.Minute
	if s := os.Getenv("SYNC_STALENESS"); s != "" {
		if parsed, err := time.ParseDuration(s); err == nil {
			staleness = parsed
		}
	}

	workers := 8
	if w := os.Getenv("SYNC_WORKERS"); w != "" {
		if parsed, err := strconv.Atoi(w); err == nil && parsed > 0 {
			workers = parsed
		}
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=newsletterbox port=5432 sslmode=disable"),
		JWTSecret:          getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:8080/oauth/callback"),
		SyncStaleness:      staleness,
		SyncWorkers:        workers,
		TickerEnabled:      getEnv("SYNC_TICKER_ENABLED", "true") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
