package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs from the environment. It is loaded
// once in main and passed down to constructors; nothing reads os.Getenv after
// startup.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	GCSProjectID  string
	GCSBucketName string
	GCSCredFile   string

	// GeminiAPIKey is optional. When empty the vision provider is not
	// constructed and enrichment runs in fallback-only mode.
	GeminiAPIKey string
}

// Load reads .env (if present) and the process environment. Missing required
// keys are reported together so a broken deployment fails with one message.
func Load() (*Config, error) {
	// .env is a development convenience, absence is fine in production
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "3000"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		GCSProjectID:  os.Getenv("GCS_PROJECT_ID"),
		GCSBucketName: os.Getenv("GCS_BUCKET_NAME"),
		GCSCredFile:   getEnv("GOOGLE_APPLICATION_CREDENTIALS", "./credentials.json"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
	}

	var missing []string
	for _, kv := range []struct{ key, val string }{
		{"DATABASE_URL", cfg.DatabaseURL},
		{"JWT_SECRET", cfg.JWTSecret},
		{"GCS_PROJECT_ID", cfg.GCSProjectID},
		{"GCS_BUCKET_NAME", cfg.GCSBucketName},
	} {
		if kv.val == "" {
			missing = append(missing, kv.key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missing)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
