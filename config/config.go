package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string
	AppMode string

	// Content store
	MaxAssetBytes  int64
	CapacityBytes  int64
	DefaultTTL     time.Duration
	SweepInterval  time.Duration
	EvictionPolicy string

	// Upstream proxy
	UpstreamBaseURL string
	UpstreamTimeout time.Duration
	HostRewrites    string
	WriteThrough    bool

	// Rate limiting (optional, enabled when REDIS_ADDR is set)
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	IngestRateLimit  int
	IngestRateWindow time.Duration

	// Archive tier (optional, enabled when S3_BUCKET is set)
	S3Region     string
	S3Bucket     string
	S3AccessKey  string
	S3SecretKey  string
	S3Endpoint   string
	S3PublicBase string
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppPort: getEnv("APP_PORT", "8080"),
		AppMode: getEnv("APP_MODE", "debug"),

		MaxAssetBytes:  getEnvAsInt64("MAX_ASSET_BYTES", 8<<20),
		CapacityBytes:  getEnvAsInt64("STORE_CAPACITY_BYTES", 256<<20),
		DefaultTTL:     getEnvAsDuration("DEFAULT_TTL", 24*time.Hour),
		SweepInterval:  getEnvAsDuration("SWEEP_INTERVAL", time.Minute),
		EvictionPolicy: getEnv("EVICTION_POLICY", "oldest"),

		UpstreamBaseURL: getEnv("UPSTREAM_BASE_URL", "https://cdn.discordapp.com"),
		UpstreamTimeout: getEnvAsDuration("UPSTREAM_TIMEOUT", 5*time.Second),
		HostRewrites:    getEnv("HOST_REWRITES", ""),
		WriteThrough:    getEnvAsBool("WRITE_THROUGH", false),

		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvAsInt("REDIS_DB", 0),
		IngestRateLimit:  getEnvAsInt("INGEST_RATE_LIMIT", 30),
		IngestRateWindow: getEnvAsDuration("INGEST_RATE_WINDOW", 60*time.Second),

		S3Region:     getEnv("S3_REGION", ""),
		S3Bucket:     getEnv("S3_BUCKET", ""),
		S3AccessKey:  getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:  getEnv("S3_SECRET_KEY", ""),
		S3Endpoint:   getEnv("S3_ENDPOINT", ""),
		S3PublicBase: getEnv("S3_PUBLIC_BASE", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return fallback
}
