package config

import (
	"os"
	"strconv"
	"time"
)

// Application settings
type Config struct {
	Server      ServerConfig
	Logging     LoggingConfig
	Attribution AttributionConfig
	External    ExternalConfig
}

// Server settings
type ServerConfig struct {
	Port string
}

type AttributionConfig struct {
	CookieMaxAge       time.Duration
	RequestTimeout     time.Duration
	RateLimitPerSecond int
}

type ExternalConfig struct {
	GHLAPIURL        string
	GHLAPIKey        string
	GHLWebhookSecret string
	RedisAddr        string
	RedisPassword    string
}

// Logging settings
type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Attribution: AttributionConfig{
			CookieMaxAge:       getDurationEnv("COOKIE_MAX_AGE", "720h"),
			RequestTimeout:     getDurationEnv("REQUEST_TIMEOUT", "30s"),
			RateLimitPerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 100),
		},
		External: ExternalConfig{
			GHLAPIURL:        getEnv("GHL_API_URL", ""),
			GHLAPIKey:        getEnv("GHL_API_KEY", ""),
			GHLWebhookSecret: getEnv("GHL_WEBHOOK_SECRET", ""),
			RedisAddr:        getEnv("REDIS_ADDR", ""),
			RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
