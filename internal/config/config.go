package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Local store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config holds application configuration from environment.
type Config struct {
	HTTPPort string
	LogLevel string

	LocalStore    string
	SQLitePath    string
	RedisURL      string
	RedisPoolSize int

	DatabaseURL string
	DBPoolSize  int

	KafkaBrokers    []string
	KafkaTopic      string
	KafkaPartitions int
	MirrorLanes     int

	JWTSecret string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceID       string

	FeedbackURL       string
	FeedbackProjectID string
	FeedbackTimeout   time.Duration

	PremiumGate  bool
	UpcomingDays int
}

var (
	cfg     *Config
	cfgOnce sync.Once
)

// Get returns the application config (loads once from env). A .env file in
// the working directory is read first; variables already set win.
func Get() *Config {
	cfgOnce.Do(func() {
		_ = godotenv.Load()
		cfg = Load()
	})
	return cfg
}

// Load reads the environment as it is now, without caching.
func Load() *Config {
	return &Config{
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LocalStore:          strings.ToLower(getEnv("LOCAL_STORE", StoreSQLite)),
		SQLitePath:          getEnv("SQLITE_PATH", "data/weddingplan.db"),
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPoolSize:       getIntEnv("REDIS_POOL_SIZE", 50),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		DBPoolSize:          getIntEnv("DB_POOL_SIZE", 20),
		KafkaBrokers:        getSliceEnv("KAFKA_BROKERS"),
		KafkaTopic:          getEnv("KAFKA_MIRROR_TOPIC", "weddingplan-mirror"),
		KafkaPartitions:     getIntEnv("KAFKA_PARTITIONS", 8),
		MirrorLanes:         getIntEnv("MIRROR_LANES", 8),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripePriceID:       os.Getenv("STRIPE_PRICE_ID"),
		FeedbackURL:         strings.TrimRight(os.Getenv("FEEDBACK_URL"), "/"),
		FeedbackProjectID:   os.Getenv("FEEDBACK_PROJECT_ID"),
		FeedbackTimeout:     time.Duration(getIntEnv("FEEDBACK_TIMEOUT_SEC", 10)) * time.Second,
		PremiumGate:         getBoolEnv("PREMIUM_GATE", true),
		UpcomingDays:        getIntEnv("UPCOMING_DAYS", 30),
	}
}

// RemoteConfigured reports whether the remote mirror has a database.
func (c *Config) RemoteConfigured() bool { return c.DatabaseURL != "" }

func getEnv(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return defaultVal
}

// getSliceEnv splits a comma-separated list; empty means none.
func getSliceEnv(key string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
