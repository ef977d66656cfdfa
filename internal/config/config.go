// Package config reads the service settings from the environment. A .env
// file in the working directory is loaded first when present.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreFirestore = "firestore"
	StoreMongo     = "mongo"
	StoreMemory    = "memory"
)

type Config struct {
	HTTPAddr     string
	LogLevel     slog.Level
	ImageBaseURL string

	// SessionIdleTimeout closes sessions without requests for this long. It
	// is also the TTL of session cache entries in Redis.
	SessionIdleTimeout time.Duration

	// StoreBackend selects the document store: firestore, mongo or memory.
	StoreBackend string
	MongoURI     string
	MongoDB      string

	FirebaseProjectID       string
	FirebaseCredentialsJSON string
	FirebaseCredentialsFile string

	// DatabaseURL enables the Postgres cart journal when set.
	DatabaseURL string

	// RedisAddr enables the Redis session cache when set.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// KafkaBrokers enables out-of-process domain events when set.
	KafkaBrokers []string

	CloudinaryCloudName    string
	CloudinaryPreset       string
	CloudinaryUploadPrefix string
}

// Load builds the Config from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		HTTPAddr:                getEnv("HTTP_ADDR", ":8080"),
		ImageBaseURL:            getEnv("IMAGE_BASE_URL", "http://localhost:5173"),
		StoreBackend:            strings.ToLower(getEnv("STORE_BACKEND", StoreFirestore)),
		MongoURI:                getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:                 getEnv("MONGO_DB", "blaban"),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),
		FirebaseCredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
		RedisPassword:           getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:            splitList(getEnv("KAFKA_BROKERS", "")),
		CloudinaryCloudName:     getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryPreset:        getEnv("CLOUDINARY_UPLOAD_PRESET", ""),
		CloudinaryUploadPrefix:  getEnv("CLOUDINARY_UPLOAD_PREFIX", ""),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	idle, err := time.ParseDuration(getEnv("SESSION_IDLE_TIMEOUT", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_IDLE_TIMEOUT: %w", err)
	}
	if idle <= 0 {
		return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive, got %s", idle)
	}
	cfg.SessionIdleTimeout = idle

	switch cfg.StoreBackend {
	case StoreFirestore:
		if cfg.FirebaseProjectID == "" {
			return nil, fmt.Errorf("FIREBASE_PROJECT_ID is required for the firestore backend")
		}
	case StoreMongo, StoreMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	return cfg, nil
}

// UploadsEnabled reports whether profile pictures can be uploaded.
func (c *Config) UploadsEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryPreset != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
