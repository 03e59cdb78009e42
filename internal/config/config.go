package config

import (
	"fmt"
	"time"

	"github.com/staynest/service-booking/internal/common/config"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port              string
	AppEnv            string
	StorageDriver     string
	SchedulerInterval time.Duration
	DBConfig          config.DatabaseConfig
	JWTConfig         config.JWTConfig
	KafkaConfig       config.KafkaConfig
	RedisConfig       config.RedisConfig
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *ServiceConfig) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Load reads configuration from environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("BOOKING")
	if err != nil {
		return nil, err
	}
	v.SetDefault("DB_NAME", "staynest_booking")
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("SCHEDULER_INTERVAL", "1h")

	cfg := &ServiceConfig{
		Port:              config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:            config.GetAppEnv(v),
		StorageDriver:     v.GetString("STORAGE_DRIVER"),
		SchedulerInterval: v.GetDuration("SCHEDULER_INTERVAL"),
		DBConfig:          config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:         config.LoadJWTConfig(v),
		KafkaConfig:       config.LoadKafkaConfig(v),
		RedisConfig:       config.LoadRedisConfig(v),
	}

	switch cfg.StorageDriver {
	case StoragePostgres, StorageMemory:
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
	if cfg.SchedulerInterval <= 0 {
		return nil, fmt.Errorf("scheduler interval must be positive, got %s", cfg.SchedulerInterval)
	}
	return cfg, nil
}
