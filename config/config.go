package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Retention RetentionConfig
	Batch     BatchConfig
	LogLevel  string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds the schedule store location. An empty Path selects the
// in-memory repository.
type DatabaseConfig struct {
	Path string
}

// CacheConfig selects Redis when RedisAddr is set, the in-process cache otherwise.
type CacheConfig struct {
	RedisAddr string
	TTL       time.Duration
}

type RateLimitConfig struct {
	Capacity int
	Window   time.Duration
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// RetentionConfig controls the purge of stored schedules.
type RetentionConfig struct {
	MaxAge   time.Duration
	Schedule string
}

type BatchConfig struct {
	Concurrency int
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cacheTTL, err := getDuration("CACHE_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	window, err := getDuration("RATE_LIMIT_WINDOW", time.Minute)
	if err != nil {
		return nil, err
	}
	capacity, err := getInt("RATE_LIMIT_CAPACITY", 30)
	if err != nil {
		return nil, err
	}
	retentionDays, err := getInt("RETENTION_DAYS", 30)
	if err != nil {
		return nil, err
	}
	concurrency, err := getInt("BATCH_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: os.Getenv("DB_PATH"),
		},
		Cache: CacheConfig{
			RedisAddr: os.Getenv("REDIS_ADDR"),
			TTL:       cacheTTL,
		},
		RateLimit: RateLimitConfig{
			Capacity: capacity,
			Window:   window,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Retention: RetentionConfig{
			MaxAge:   time.Duration(retentionDays) * 24 * time.Hour,
			Schedule: getEnv("RETENTION_SCHEDULE", "@every 1h"),
		},
		Batch: BatchConfig{
			Concurrency: concurrency,
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, value)
	}
	return n, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, value)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
