package config

import (
	"errors"
	"fmt"
)

// Validate checks the structural shape of the config: ports, durations,
// replica bounds. It deliberately does not reject an unrecognized
// ScalingAlgorithm or MetricsMode string — those fall back to a safe
// default at parse time rather than failing startup.
func (c *Config) Validate() error {
	var errs []error

	if c.CheckInterval <= 0 {
		errs = append(errs, errors.New("check_interval must be positive"))
	}
	if c.CooldownPeriod <= 0 {
		errs = append(errs, errors.New("cooldown_period must be positive"))
	}

	if c.MinReplicas <= 0 {
		errs = append(errs, errors.New("min_replicas must be positive"))
	}
	if c.MaxReplicas < c.MinReplicas {
		errs = append(errs, errors.New("max_replicas must be >= min_replicas"))
	}
	if c.DatabaseMinReplicas <= 0 {
		errs = append(errs, errors.New("database_min_replicas must be positive"))
	}
	if c.DatabaseMaxReplicas < c.DatabaseMinReplicas {
		errs = append(errs, errors.New("database_max_replicas must be >= database_min_replicas"))
	}
	if c.CacheMinReplicas <= 0 {
		errs = append(errs, errors.New("cache_min_replicas must be positive"))
	}
	if c.CacheMaxReplicas < c.CacheMinReplicas {
		errs = append(errs, errors.New("cache_max_replicas must be >= cache_min_replicas"))
	}

	if c.CPUScaleUp <= c.CPUScaleDown {
		errs = append(errs, errors.New("cpu_scale_up_threshold must be greater than cpu_scale_down_threshold"))
	}
	if c.MemoryScaleUp <= c.MemoryScaleDown {
		errs = append(errs, errors.New("memory_scale_up_threshold must be greater than memory_scale_down_threshold"))
	}
	if c.ResponseTimeScaleUp <= c.ResponseTimeScaleDown {
		errs = append(errs, errors.New("response_time_scale_up_threshold must be greater than response_time_scale_down_threshold"))
	}

	if c.PredictionSamples <= 0 {
		errs = append(errs, errors.New("prediction_samples must be positive"))
	}

	if c.MetricsPort <= 0 || c.MetricsPort > 65535 {
		errs = append(errs, errors.New("metrics_port must be between 1 and 65535"))
	}
	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		errs = append(errs, errors.New("health_port must be between 1 and 65535"))
	}
	if c.MetricsPort == c.HealthPort {
		errs = append(errs, errors.New("metrics_port and health_port must differ"))
	}

	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if c.DataStoreTimeout <= 0 {
		errs = append(errs, errors.New("data_store_timeout must be positive"))
	}
	if c.ShutdownGracePeriod <= 0 {
		errs = append(errs, errors.New("shutdown_grace_period must be positive"))
	}

	if c.AppServiceName == "" {
		errs = append(errs, errors.New("api_service_name is required"))
	}
	if c.DatabaseServiceName == "" {
		errs = append(errs, errors.New("postgres_service_name is required"))
	}
	if c.CacheServiceName == "" {
		errs = append(errs, errors.New("redis_service_name is required"))
	}
	if c.AppHealthURL == "" {
		errs = append(errs, errors.New("api_health_url is required"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level must be one of: debug, info, warn, error"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errors.Join(errs...))
	}

	return nil
}
