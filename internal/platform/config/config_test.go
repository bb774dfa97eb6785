package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("KYC_ADDR", "")
	t.Setenv("SOFT_LOCK_TIMEOUT", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("CORE_API_TIMEOUT", "")

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, DefaultSoftLockWindow, cfg.SoftLockWindow)
	assert.Nil(t, cfg.Kafka.Brokers)
	assert.Equal(t, 10*time.Second, cfg.CoreSystem.Timeout)
	assert.NotEmpty(t, cfg.JWTSigningKey)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("KYC_ADDR", ":9090")
	t.Setenv("SOFT_LOCK_TIMEOUT", "15m")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("CORE_API_BASE_URL", "http://core.local/api/")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 15*time.Minute, cfg.SoftLockWindow)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "http://core.local/api", cfg.CoreSystem.BaseURL)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
}
