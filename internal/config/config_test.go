package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOOKING_APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8003", cfg.Port)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, time.Hour, cfg.SchedulerInterval)
	assert.Equal(t, "staynest_booking", cfg.DBConfig.DBName)
	assert.Equal(t, 5*time.Minute, cfg.RedisConfig.TTL)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOOKING_APP_ENV", "development")
	t.Setenv("BOOKING_STORAGE_DRIVER", "memory")
	t.Setenv("BOOKING_SCHEDULER_INTERVAL", "15m")
	t.Setenv("BOOKING_KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, 15*time.Minute, cfg.SchedulerInterval)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaConfig.Brokers)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("BOOKING_APP_ENV", "development")
	t.Setenv("BOOKING_STORAGE_DRIVER", "sqlite")

	_, err := Load()
	assert.Error(t, err)
}
