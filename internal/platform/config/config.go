package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	LogLevel       string
	DatabaseURL    string
	JWTSigningKey  string
	AdminAPIToken  string
	TokenTTL       time.Duration
	SoftLockWindow time.Duration
	DraftTTL       time.Duration
	RateLimit      RateLimitConfig
	Redis          RedisConfig
	Kafka          KafkaConfig
	CoreSystem     CoreSystemConfig
}

// RedisConfig configures the draft store connection. Empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the change log stream. No brokers disables it.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
	Partitions int32
}

// CoreSystemConfig points at the external policy registry. Empty BaseURL
// selects the seeded in-memory registry.
type CoreSystemConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// RateLimitConfig bounds unauthenticated resolve/login calls per client IP.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// DefaultSoftLockWindow is how long a reviewer's soft lock is honoured.
const DefaultSoftLockWindow = 10 * time.Minute

// FromEnv builds a Server config from environment variables so main stays lean.
// A local .env file is loaded first when present.
func FromEnv() Server {
	_ = godotenv.Load()

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:           envString("KYC_ADDR", ":8080"),
		LogLevel:       envString("LOG_LEVEL", "info"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSigningKey:  jwtSigningKey,
		AdminAPIToken:  os.Getenv("ADMIN_API_TOKEN"),
		TokenTTL:       envDuration("TOKEN_TTL", 8*time.Hour),
		SoftLockWindow: envDuration("SOFT_LOCK_TIMEOUT", DefaultSoftLockWindow),
		DraftTTL:       envDuration("DRAFT_TTL", 7*24*time.Hour),
		RateLimit: RateLimitConfig{
			RPS:   envFloat("RATE_LIMIT_RPS", 2),
			Burst: envInt("RATE_LIMIT_BURST", 10),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    envList("KAFKA_BROKERS"),
			AuditTopic: envString("KAFKA_AUDIT_TOPIC", "kyc.changelog"),
			Partitions: int32(envInt("KAFKA_AUDIT_PARTITIONS", 3)),
		},
		CoreSystem: CoreSystemConfig{
			BaseURL: strings.TrimRight(os.Getenv("CORE_API_BASE_URL"), "/"),
			Token:   os.Getenv("CORE_API_TOKEN"),
			Timeout: envDuration("CORE_API_TIMEOUT", 10*time.Second),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func envList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
