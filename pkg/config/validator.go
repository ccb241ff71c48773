package config

import (
	"errors"
	"fmt"
)

// Validate fails fast on an inconsistent configuration. The run must not
// proceed with a broken ladder: every downstream shape computation depends
// on it.
func (c *Config) Validate() error {
	var errs []error

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, errors.New("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, errors.New("app.log_level must be one of: debug, info, warn, error"))
	}

	validSourceTypes := map[string]bool{"http": true, "mock": true}
	if !validSourceTypes[c.Source.Type] {
		errs = append(errs, errors.New("source.type must be one of: http, mock"))
	}
	if c.Source.Type == "http" && c.Source.Endpoint == "" {
		errs = append(errs, errors.New("source.endpoint is required for the http source"))
	}
	if c.Source.Timeout <= 0 {
		errs = append(errs, errors.New("source.timeout must be positive"))
	}

	// Ladder consistency
	if len(c.Scaler.SizeLadder) == 0 {
		errs = append(errs, errors.New("scaler.size_ladder must not be empty"))
	}
	seen := make(map[string]bool, len(c.Scaler.SizeLadder))
	for _, size := range c.Scaler.SizeLadder {
		if size == "" {
			errs = append(errs, errors.New("scaler.size_ladder must not contain empty tier names"))
			break
		}
		if seen[size] {
			errs = append(errs, fmt.Errorf("scaler.size_ladder contains duplicate tier %q", size))
			break
		}
		seen[size] = true
	}
	if c.Scaler.MinClusters < 1 {
		errs = append(errs, errors.New("scaler.min_clusters must be at least 1"))
	}
	if c.Scaler.MaxClusters < c.Scaler.MinClusters {
		errs = append(errs, errors.New("scaler.max_clusters must be >= min_clusters"))
	}

	// Threshold consistency
	if c.Scaler.LatencyHigh <= 0 || c.Scaler.LatencyLow <= 0 {
		errs = append(errs, errors.New("scaler.latency_high and scaler.latency_low must be positive"))
	}
	if c.Scaler.LatencyLow >= c.Scaler.LatencyHigh {
		errs = append(errs, errors.New("scaler.latency_low must be less than latency_high"))
	}
	if c.Scaler.QueueDepthHigh <= 0 {
		errs = append(errs, errors.New("scaler.queue_depth_high must be positive"))
	}
	if c.Scaler.LookbackWindow <= 0 {
		errs = append(errs, errors.New("scaler.lookback_window must be positive"))
	}
	if c.Scaler.Cooldown <= 0 {
		errs = append(errs, errors.New("scaler.cooldown must be positive"))
	}
	if c.Scaler.MaxScaleUpsPerHour <= 0 {
		errs = append(errs, errors.New("scaler.max_scale_ups_per_hour must be positive"))
	}
	if c.Scaler.StateRetention <= 0 {
		errs = append(errs, errors.New("scaler.state_retention must be positive"))
	}

	if c.State.Path == "" {
		errs = append(errs, errors.New("state.path is required"))
	}

	if c.Report.PostgresEnabled {
		if c.Database.Host == "" {
			errs = append(errs, errors.New("database.host is required when report.postgres_enabled"))
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, errors.New("database.port must be between 1 and 65535"))
		}
		if c.Database.Name == "" {
			errs = append(errs, errors.New("database.name is required when report.postgres_enabled"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
