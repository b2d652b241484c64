package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	Port        string
	GinMode     string
	LogLevel    string
	DBUrl       string
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Result cache
	CacheTTL        time.Duration
	CacheMaxEntries int
	// Keyword engine
	StopWordsFile string
	// Rate Limiting Configuration
	RateLimitWindowSeconds    int
	RateLimitGlobalThreshold  int
	RateLimitAnalyzeThreshold int
	// Uploads
	MaxUploadBytes   int64
	UploadsPerMinute int
	UploadsPerDay    int
	ClamAVAddress    string
	// Object storage for stored resumes
	S3Provider        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3Bucket          string
	S3Endpoint        string
	// Analysis events
	RabbitMQURL      string
	RabbitMQExchange string
	// CORS
	AllowedOrigins []string
	// Honour X-Forwarded-For when resolving client IPs
	TrustProxy bool
}

func LoadConfig() (*Config, error) {
	// .env is optional; in production the environment is set directly
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "resume-matcher"),
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Result cache
		CacheTTL:        getEnvDuration("CACHE_TTL_SECONDS", 15*time.Minute),
		CacheMaxEntries: getEnvInt("CACHE_MAX_ENTRIES", 1000),
		StopWordsFile:   getEnv("STOP_WORDS_FILE", ""),
		// Rate Limiting Configuration (with sensible defaults)
		RateLimitWindowSeconds:    getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),    // 1 minute window
		RateLimitGlobalThreshold:  getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100), // 100 requests per window
		RateLimitAnalyzeThreshold: getEnvInt("RATE_LIMIT_ANALYZE_THRESHOLD", 30), // 30 analyses per window
		MaxUploadBytes:            int64(getEnvInt("MAX_UPLOAD_BYTES", 5<<20)),   // 5 MiB
		UploadsPerMinute:          getEnvInt("UPLOAD_LIMIT_PER_MINUTE", 10),
		UploadsPerDay:             getEnvInt("UPLOAD_LIMIT_PER_DAY", 200),
		ClamAVAddress:             getEnv("CLAMAV_ADDRESS", ""),
		// Object storage
		S3Provider:        getEnv("S3_PROVIDER", "aws"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Region:          getEnv("S3_REGION", "auto"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Endpoint:        strings.TrimRight(getEnv("S3_ENDPOINT", ""), "/"),
		// Events
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "analysis_events"),
		AllowedOrigins:   getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000"}),
		TrustProxy:       getEnvBool("TRUST_PROXY", false),
	}

	if cfg.RateLimitWindowSeconds <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW_SECONDS must be positive, got %d", cfg.RateLimitWindowSeconds)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", cfg.MaxUploadBytes)
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Analysis history will be disabled.")
	}
	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Cache and rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// IsProduction reports whether gin runs in release mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// StorageConfigured reports whether object storage credentials are present
func (c *Config) StorageConfigured() bool {
	return c.S3Bucket != "" && c.S3AccessKeyID != "" && c.S3SecretAccessKey != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration reads a whole number of seconds
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

// getEnvList splits a comma-separated variable, dropping empty items
func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimRight(strings.TrimSpace(item), "/"); item != "" {
			out = append(out, item)
		}
	}
	return out
}
