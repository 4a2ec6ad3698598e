package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values
type Config struct {
	// Server configuration
	Port        string
	Environment string

	// MongoDB configuration
	MongoURI      string
	MongoDatabase string

	// Storage backend: "mongo" or "memory" (memory is for local development)
	StorageBackend string

	// Session store configuration
	SessionBackend string // "memory" or "redis"
	RedisURI       string
	RedisPassword  string
	RedisDB        int
	SessionTTL     time.Duration

	// Campaign configuration
	OperatorID    int64
	BroadcastPace time.Duration

	// Outbound transport endpoint for participant messages
	TransportURL string

	// Token guarding the admin HTTP surface
	AdminToken string
}

// Load reads configuration from the environment. A .env file is loaded
// first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	operatorID, err := strconv.ParseInt(GetEnv("OPERATOR_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OPERATOR_ID: %w", err)
	}
	if operatorID == 0 {
		return nil, fmt.Errorf("OPERATOR_ID environment variable is required")
	}

	redisDB, err := strconv.Atoi(GetEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	sessionTTL, err := time.ParseDuration(GetEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	broadcastPace, err := time.ParseDuration(GetEnv("BROADCAST_PACE", "50ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid BROADCAST_PACE: %w", err)
	}

	return &Config{
		Port:        GetEnv("PORT", "8080"),
		Environment: GetEnv("ENVIRONMENT", "development"),

		MongoURI:      GetEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: GetEnv("MONGODB_DATABASE", "promo_campaign"),

		StorageBackend: GetEnv("STORAGE_BACKEND", "mongo"),

		SessionBackend: GetEnv("SESSION_BACKEND", "memory"),
		RedisURI:       GetEnv("REDIS_URI", "localhost:6379"),
		RedisPassword:  GetEnv("REDIS_PASSWORD", ""),
		RedisDB:        redisDB,
		SessionTTL:     sessionTTL,

		OperatorID:    operatorID,
		BroadcastPace: broadcastPace,

		TransportURL: GetEnv("TRANSPORT_URL", ""),
		AdminToken:   os.Getenv("ADMIN_TOKEN"),
	}, nil
}

// GetEnv returns environment variable value or default if not set
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
