package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration for the sweeper daemon.
type Server struct {
	Addr        string
	LogFormat   string
	DatabaseURL string
	PolicyFile  string
	Redis       RedisConfig
	Kafka       KafkaConfig
	Sweep       SweepConfig
	Policy      PolicyDefaults
}

// RedisConfig configures the policy cache. An empty URL disables caching.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
}

// KafkaConfig configures verdict event publishing. No brokers means events
// are written to the log instead.
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// SweepConfig controls the scheduled registry sweep.
type SweepConfig struct {
	Schedule      string
	Concurrency   int
	RatePerSecond float64
}

// PolicyDefaults are the fallback policy values, in seconds, used when
// neither the policy file nor the database defines a name.
type PolicyDefaults struct {
	StaleAdminVacancySeconds    int64
	StaleCoSignerVacancySeconds int64
	ConsentExpirationSeconds    int64
}

const day = int64(24 * 60 * 60)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:        envOr("ETT_ADDR", ":9090"),
		LogFormat:   envOr("LOG_FORMAT", "json"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		PolicyFile:  os.Getenv("POLICY_FILE"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic:    envOr("KAFKA_TOPIC", "ett.verdicts"),
			ClientID: envOr("KAFKA_CLIENT_ID", "ett-sweeper"),
		},
		Sweep: SweepConfig{
			Schedule: envOr("SWEEP_SCHEDULE", "@every 1h"),
		},
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}

	var err error
	if cfg.Redis.CacheTTL, err = envDuration("POLICY_CACHE_TTL", 5*time.Minute); err != nil {
		return Server{}, err
	}
	if cfg.Sweep.Concurrency, err = envInt("SWEEP_CONCURRENCY", 8); err != nil {
		return Server{}, err
	}
	if cfg.Sweep.Concurrency < 1 {
		return Server{}, fmt.Errorf("SWEEP_CONCURRENCY must be at least 1")
	}
	if cfg.Sweep.RatePerSecond, err = envFloat("SWEEP_RATE_PER_SECOND", 50); err != nil {
		return Server{}, err
	}
	if cfg.Policy.StaleAdminVacancySeconds, err = envInt64("STALE_ADMIN_VACANCY_SECONDS", 30*day); err != nil {
		return Server{}, err
	}
	if cfg.Policy.StaleCoSignerVacancySeconds, err = envInt64("STALE_CO_SIGNER_VACANCY_SECONDS", 30*day); err != nil {
		return Server{}, err
	}
	if cfg.Policy.ConsentExpirationSeconds, err = envInt64("CONSENT_EXPIRATION_SECONDS", 365*day); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
