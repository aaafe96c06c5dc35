package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file when one is present.
// Deployed environments inject real env vars, so a missing file is fine.
func LoadEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}

// GetEnv returns the value of key or fallback when unset.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
