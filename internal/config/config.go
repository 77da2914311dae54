package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds defaults that flags may override
type Config struct {
	LedgerPath string
	LogLevel   string
	NoArchive  bool
}

// Load reads an optional .env file from the working directory, then the
// COCO2YOLO_* environment variables.
func Load() *Config {
	// Missing .env is fine
	_ = godotenv.Load()

	return &Config{
		LedgerPath: getEnv("COCO2YOLO_LEDGER", ""),
		LogLevel:   getEnv("COCO2YOLO_LOG_LEVEL", "info"),
		NoArchive:  getEnvAsBool("COCO2YOLO_NO_ARCHIVE", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
