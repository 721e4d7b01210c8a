package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"

	"github.com/dharmasatrya/flightbooking/internal/cache"
)

type Config struct {
	Port string

	GatewayBaseURL string
	GatewayTimeout time.Duration
	GatewayRPS     float64
	GatewayBurst   int

	CacheEnabled bool
	Redis        cache.RedisConfig

	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	FormTimezone         string

	LogLevel string
	LogFile  string
}

// Load reads the environment, after loading the given .env files when they
// exist. Variables already set in the environment win over file values.
func Load(envFiles ...string) Config {
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}

	redis := cache.DefaultRedisConfig()

	return Config{
		Port: getEnv("PORT", "8080"),

		GatewayBaseURL: getEnv("GATEWAY_BASE_URL", "http://localhost:8000/api/"),
		GatewayTimeout: getEnvDuration("GATEWAY_TIMEOUT", 10*time.Second),
		GatewayRPS:     getEnvFloat("GATEWAY_RPS", 5),
		GatewayBurst:   getEnvInt("GATEWAY_BURST", 10),

		CacheEnabled: getEnvBool("CACHE_ENABLED", false),
		Redis: cache.RedisConfig{
			Host:     getEnv("REDIS_HOST", redis.Host),
			Port:     getEnv("REDIS_PORT", redis.Port),
			Password: getEnv("REDIS_PASSWORD", redis.Password),
			DB:       getEnvInt("REDIS_DB", redis.DB),
			TTL:      getEnvDuration("REDIS_TTL", redis.TTL),
		},

		SessionTTL:           getEnvDuration("SESSION_TTL", 30*time.Minute),
		SessionSweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		FormTimezone:         getEnv("FORM_TIMEZONE", "UTC"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if value == "yes" {
		return true
	}
	b, err := cast.ToBoolE(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := cast.ToIntE(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return defaultValue
	}
	return f
}

// getEnvDuration accepts Go durations ("90s") and bare seconds ("90").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if n, err := cast.ToInt64E(value); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := cast.ToDurationE(value)
	if err != nil {
		return defaultValue
	}
	return d
}
