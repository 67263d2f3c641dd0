package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string
	TokenTTL  time.Duration

	// AllowedOrigins lists browser origins (host[:port]) accepted by CORS.
	AllowedOrigins []string

	DashboardCacheTTL time.Duration

	DB      DatabaseConfig
	Redis   RedisConfig
	Storage StorageConfig
	Kafka   KafkaConfig
	Worker  WorkerConfig
	Cart    CartConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	SSLMode       string
	MigrationsDir string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// StorageConfig selects where admin image uploads are written.
type StorageConfig struct {
	Driver        string // "local" or "s3"
	LocalDir      string
	LocalURL      string
	S3Region      string
	S3Bucket      string
	S3Prefix      string
	S3PublicURL   string
	MaxUploadSize int64
}

// KafkaConfig contains the order events topic settings. Empty Brokers disables Kafka.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	OutboxInterval  time.Duration
	OutboxBatchSize int
}

// CartConfig controls cart persistence.
type CartConfig struct {
	TTL time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.AllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "localhost:3000,127.0.0.1:3000"))

	// Database
	cfg.DB = DatabaseConfig{
		Host:          getEnv("DB_HOST", ""),
		Port:          getEnv("DB_PORT", "5432"),
		User:          getEnv("DB_USER", ""),
		Password:      getEnv("DB_PASSWORD", ""),
		Name:          getEnv("DB_NAME", ""),
		SSLMode:       getEnv("DB_SSLMODE", "disable"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Upload storage
	cfg.Storage = StorageConfig{
		Driver:        getEnv("STORAGE_DRIVER", "local"),
		LocalDir:      getEnv("LOCAL_UPLOAD_DIR", "./public/uploads"),
		LocalURL:      getEnv("LOCAL_UPLOAD_URL_PREFIX", "/uploads"),
		S3Region:      getEnv("S3_REGION", "ap-southeast-3"),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3Prefix:      getEnv("S3_PREFIX", "products"),
		S3PublicURL:   getEnv("S3_PUBLIC_BASE_URL", ""),
		MaxUploadSize: int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 10)) << 20,
	}

	// Kafka (optional)
	cfg.Kafka = KafkaConfig{
		Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
		Topic:   getEnv("KAFKA_ORDER_TOPIC", "toystore.orders"),
	}

	cfg.Worker.OutboxBatchSize = getEnvInt("OUTBOX_BATCH_SIZE", 100)

	// Durations
	var err error
	if cfg.TokenTTL, err = parseDurationEnv("JWT_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.Worker.OutboxInterval, err = parseDurationEnv("OUTBOX_INTERVAL", "2s"); err != nil {
		return nil, fmt.Errorf("invalid OUTBOX_INTERVAL: %w", err)
	}
	if cfg.Cart.TTL, err = parseDurationEnv("CART_TTL", "720h"); err != nil {
		return nil, fmt.Errorf("invalid CART_TTL: %w", err)
	}
	if cfg.DashboardCacheTTL, err = parseDurationEnv("DASHBOARD_CACHE_TTL", "30s"); err != nil {
		return nil, fmt.Errorf("invalid DASHBOARD_CACHE_TTL: %w", err)
	}

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	// No fallback secret: admin tokens must never be signed with a known key.
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	if cfg.Storage.Driver == "s3" && (cfg.Storage.S3Bucket == "" || cfg.Storage.S3PublicURL == "") {
		return nil, errors.New("S3 storage requires S3_BUCKET and S3_PUBLIC_BASE_URL")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
