package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process configuration.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseDriver string
	DatabaseDSN    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBConnMaxLife  time.Duration

	CacheDriver   string
	RedisAddress  string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	SnapshotTTL time.Duration
	HistoryTTL  time.Duration

	UserServiceURL     string
	UserServiceTimeout time.Duration
}

// Load reads the configuration from the environment, after loading a .env
// file when one is present. Precedence: explicit env var > .env > default.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the configuration from the current environment only.
func FromEnv() Config {
	return Config{
		Port:     getEnv("PORT", "8081"),
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseDriver: strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DatabaseDSN:    getEnv("DATABASE_DSN", "file:dealership.db?_busy_timeout=5000&_txlock=immediate"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 50),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLife:  getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),

		CacheDriver:   strings.ToLower(getEnv("CACHE_DRIVER", "memory")),
		RedisAddress:  getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPrefix:   getEnv("REDIS_PREFIX", "dealership:"),

		SnapshotTTL: getEnvDuration("STATS_SNAPSHOT_TTL", 300*time.Second),
		HistoryTTL:  getEnvDuration("STATS_HISTORY_TTL", 600*time.Second),

		UserServiceURL:     getEnv("USER_SERVICE_URL", ""),
		UserServiceTimeout: getEnvDuration("USER_SERVICE_TIMEOUT", 5*time.Second),
	}
}

// IsProduction reports whether the process runs with APP_ENV=production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// getEnvDuration accepts Go durations ("90s", "5m") or a bare number of seconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}
