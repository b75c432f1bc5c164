package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultPort         = "8080"
	DefaultTemporalHost = "localhost:7233"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Temporal struct {
	Host    string
	Enabled bool
	Grace   time.Duration
}

type Config struct {
	Port        string
	StoreDriver string
	DatabaseURL string
	RedisAddr   string
	CatalogPath string
	LogLevel    string
	LogPretty   bool
	Temporal    Temporal
}

// Load reads an optional YAML file and lets environment variables override it.
// Environment names are the upper-cased keys with dots replaced by underscores,
// e.g. TEMPORAL_HOST, with API_PORT and DATABASE_URL kept as they were.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("port", DefaultPort)
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("database.url", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("catalog.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("temporal.host", DefaultTemporalHost)
	v.SetDefault("temporal.enabled", false)
	v.SetDefault("temporal.grace", "10m")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("port", "API_PORT")
	_ = v.BindEnv("database.url", "DATABASE_URL")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Port:        v.GetString("port"),
		StoreDriver: strings.ToLower(v.GetString("store.driver")),
		DatabaseURL: v.GetString("database.url"),
		RedisAddr:   v.GetString("redis.addr"),
		CatalogPath: v.GetString("catalog.path"),
		LogLevel:    v.GetString("log.level"),
		LogPretty:   v.GetBool("log.pretty"),
		Temporal: Temporal{
			Host:    v.GetString("temporal.host"),
			Enabled: v.GetBool("temporal.enabled"),
			Grace:   v.GetDuration("temporal.grace"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the %s store", DriverPostgres)
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.StoreDriver)
	}
	if c.Temporal.Grace < 0 {
		return fmt.Errorf("config: temporal grace must not be negative")
	}
	return nil
}
