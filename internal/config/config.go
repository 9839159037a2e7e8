package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port           string
	Environment    string
	BackendURL     string        // External REST backend, e.g. http://127.0.0.1:8000/api
	BackendTimeout time.Duration // Per-request timeout for backend calls
	DriveAPIURL    string        // Google Drive v3 base URL
	JWKSURL        string        // Empty = tokens are parsed without signature verification
	CORSOrigins    string
	// Session workspaces
	SessionIdleTimeout time.Duration
	UploadConcurrency  int
	// Logging
	LogDir      string // Empty = log to stdout only
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:               getEnv("PORT", "8080"),
		Environment:        env,
		BackendURL:         getEnv("BACKEND_URL", "http://127.0.0.1:8000/api"),
		BackendTimeout:     getDuration("BACKEND_TIMEOUT", 30*time.Second),
		DriveAPIURL:        getEnv("DRIVE_API_URL", "https://www.googleapis.com/drive/v3"),
		JWKSURL:            getEnv("JWKS_URL", ""),
		CORSOrigins:        getEnv("CORS_ORIGINS", "http://localhost:5173"),
		SessionIdleTimeout: getDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		UploadConcurrency:  getInt("UPLOAD_CONCURRENCY", DefaultUploadConcurrency),
		LogDir:             getEnv("LOG_DIR", ""),
		LogMaxFiles:        getInt("LOG_MAX_FILES", 10),
	}
}

// IsDev reports whether debug logging and relaxed token checks are expected.
func (c *Config) IsDev() bool {
	return c.Environment == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
