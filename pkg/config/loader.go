package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/warehouse-autoscaler")
	}

	v.SetEnvPrefix("SCALER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file; defaults and env vars apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "warehouse-autoscaler")
	v.SetDefault("app.mode", "development")
	v.SetDefault("app.log_level", "info")

	// Source defaults
	v.SetDefault("source.type", "http")
	v.SetDefault("source.endpoint", "http://localhost:9000")
	v.SetDefault("source.timeout", "10s")
	v.SetDefault("source.retry_attempts", 3)
	v.SetDefault("source.circuit_breaker.max_failures", 5)
	v.SetDefault("source.circuit_breaker.timeout", "30s")

	// Control plane defaults
	v.SetDefault("control_plane.endpoint", "http://localhost:9000")
	v.SetDefault("control_plane.timeout", "30s")

	// Scaler defaults
	v.SetDefault("scaler.lookback_window", "15m")
	v.SetDefault("scaler.latency_high", "30s")
	v.SetDefault("scaler.latency_low", "5s")
	v.SetDefault("scaler.queue_depth_high", 5)
	v.SetDefault("scaler.size_ladder", []string{
		"2X-Small", "X-Small", "Small", "Medium", "Large",
		"X-Large", "2X-Large", "3X-Large", "4X-Large",
	})
	v.SetDefault("scaler.min_clusters", 1)
	v.SetDefault("scaler.max_clusters", 4)
	v.SetDefault("scaler.cooldown", "10m")
	v.SetDefault("scaler.max_scale_ups_per_hour", 3)
	v.SetDefault("scaler.state_retention", "24h")
	v.SetDefault("scaler.warehouse_timeout", "30s")

	// State defaults
	v.SetDefault("state.path", "scaler_state.json")

	// Report defaults
	v.SetDefault("report.postgres_enabled", false)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "warehouse_autoscaler")
	v.SetDefault("database.user", "admin")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.max_connections", 4)
	v.SetDefault("database.ssl_mode", "disable")

	// Simulator defaults
	v.SetDefault("simulator.port", 9000)
	v.SetDefault("simulator.read_timeout", "10s")
	v.SetDefault("simulator.write_timeout", "10s")
}
