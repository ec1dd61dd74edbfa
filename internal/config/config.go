package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries process configuration, read from the environment with
// development defaults.
type Config struct {
	MongoURI          string
	MongoDatabase     string
	RedisAddr         string
	HTTPPort          string
	JWTSecret         string
	StoreReadyTimeout time.Duration
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:     getEnv("MONGO_DATABASE", "whodunnit"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:          getEnv("PORT", "8080"),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		StoreReadyTimeout: getDuration("STORE_READY_TIMEOUT_SEC", 15*time.Second),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if secs, err := strconv.Atoi(val); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultVal
}
