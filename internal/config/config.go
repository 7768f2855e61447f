package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Sync     SyncConfig
	Report   ReportConfig
	LogLevel string
}

// ServerConfig holds HTTP server configuration for the read API
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds Kafka configuration. An empty broker list disables
// pipeline event publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// RedisConfig holds Redis configuration for the leaderboard cache. An empty
// address disables caching.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// StorageConfig holds Supabase Storage configuration for chart publishing
type StorageConfig struct {
	URL        string
	ServiceKey string
	Bucket     string
}

// SyncConfig holds the incremental price sync settings
type SyncConfig struct {
	// StartDate overrides the analysis window start (YYYY-MM-DD). When empty
	// the window starts on January 1 of the current year.
	StartDate    string
	RequestDelay time.Duration
	FetchTimeout time.Duration
	Concurrency  int
	MaxRunTime   time.Duration
	BatchSize    int
}

// ReportConfig holds leaderboard settings
type ReportConfig struct {
	TopN          int
	MinDataPoints int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "stockpipe"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "pipeline-events"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("LEADERBOARD_TTL", 15*time.Minute),
		},
		Storage: StorageConfig{
			URL:        getEnv("SUPABASE_URL", ""),
			ServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
			Bucket:     getEnv("CHART_BUCKET", "stock-charts"),
		},
		Sync: SyncConfig{
			StartDate:    getEnv("SYNC_START_DATE", ""),
			RequestDelay: getEnvDuration("SYNC_REQUEST_DELAY", 500*time.Millisecond),
			FetchTimeout: getEnvDuration("SYNC_FETCH_TIMEOUT", 30*time.Second),
			Concurrency:  getEnvInt("SYNC_CONCURRENCY", 1),
			MaxRunTime:   getEnvDuration("SYNC_MAX_RUN_TIME", 0),
			BatchSize:    getEnvInt("SYNC_BATCH_SIZE", 100),
		},
		Report: ReportConfig{
			TopN:          getEnvInt("REPORT_TOP_N", 5),
			MinDataPoints: getEnvInt("REPORT_MIN_DATA_POINTS", 5),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
