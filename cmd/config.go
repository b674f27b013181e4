package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort string
	LogLevel string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	ServiceBusConnectionString string
	ServiceBusQueue            string

	ElasticsearchURLs     []string
	ElasticsearchUsername string
	ElasticsearchPassword string
	ElasticsearchIndex    string

	RelaySchedule    string
	RelayBatchSize   int
	RelayMaxAttempts int
	ReportSchedule   string
	ShutdownTimeout  time.Duration
}

// LoadConfig reads envFile when it exists, then the environment. Variables
// already set in the environment win over the file.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var errs []error
	cfg := Config{
		HTTPPort: env("HTTP_PORT", "8080"),
		LogLevel: env("LOG_LEVEL", "info"),

		DBHost:     env("DB_HOST", "localhost"),
		DBPort:     env("DB_PORT", "5432"),
		DBUser:     env("DB_USER", "postgres"),
		DBPassword: env("DB_PASSWORD", ""),
		DBName:     env("DB_NAME", "sigah"),
		DBSslMode:  env("DB_SSLMODE", "disable"),

		RedisAddr:     env("REDIS_ADDR", ""),
		RedisPassword: env("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0, &errs),
		RedisTTL:      envDuration("REDIS_TTL", 5*time.Minute, &errs),

		ServiceBusConnectionString: env("SERVICEBUS_CONNECTION_STRING", ""),
		ServiceBusQueue:            env("SERVICEBUS_QUEUE", "delivery-work-items"),

		ElasticsearchURLs:     envList("ELASTICSEARCH_URLS"),
		ElasticsearchUsername: env("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPassword: env("ELASTICSEARCH_PASSWORD", ""),
		ElasticsearchIndex:    env("ELASTICSEARCH_INDEX", "delivery-history"),

		RelaySchedule:    env("OUTBOX_RELAY_SCHEDULE", ""),
		RelayBatchSize:   envInt("OUTBOX_RELAY_BATCH_SIZE", 100, &errs),
		RelayMaxAttempts: envInt("OUTBOX_RELAY_MAX_ATTEMPTS", 10, &errs),
		ReportSchedule:   env("PENDING_WORK_REPORT_SCHEDULE", ""),
		ShutdownTimeout:  envDuration("SHUTDOWN_TIMEOUT", 15*time.Second, &errs),
	}
	return cfg, errors.Join(errs...)
}

// DSN is the postgres connection string for gorm.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func envInt(key string, fallback int, errs *[]error) int {
	raw := env(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	raw := env(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(env(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
