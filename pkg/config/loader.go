package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load builds the config snapshot: defaults, then an optional config file,
// then environment variables. Every key accepts both the AUTOSCALER_
// prefixed name and the original distillation's bare name (e.g.
// AUTOSCALER_CHECK_INTERVAL or CHECK_INTERVAL), so a deployment already
// setting the bare names keeps working unchanged.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{
		CheckInterval:             v.GetDuration("check_interval"),
		CooldownPeriod:            v.GetDuration("cooldown_period"),
		MinReplicas:               v.GetInt("min_replicas"),
		MaxReplicas:               v.GetInt("max_replicas"),
		DatabaseMinReplicas:       v.GetInt("database_min_replicas"),
		DatabaseMaxReplicas:       v.GetInt("database_max_replicas"),
		CacheMinReplicas:          v.GetInt("cache_min_replicas"),
		CacheMaxReplicas:          v.GetInt("cache_max_replicas"),
		CPUScaleUp:                v.GetFloat64("cpu_scale_up_threshold"),
		CPUScaleDown:              v.GetFloat64("cpu_scale_down_threshold"),
		MemoryScaleUp:             v.GetFloat64("memory_scale_up_threshold"),
		MemoryScaleDown:           v.GetFloat64("memory_scale_down_threshold"),
		ResponseTimeScaleUp:       v.GetFloat64("response_time_scale_up_threshold"),
		ResponseTimeScaleDown:     v.GetFloat64("response_time_scale_down_threshold"),
		DatabaseConnectionScaleUp: v.GetFloat64("postgres_scale_up_connections"),
		CacheMemoryScaleUp:        v.GetFloat64("redis_scale_up_memory"),
		ExpScaleUpThreshold:       v.GetFloat64("scale_up_threshold"),
		ExpScaleDownThreshold:     v.GetFloat64("scale_down_threshold"),
		ScalingAlgorithm:          v.GetString("scaling_algorithm"),
		PredictionSamples:         v.GetInt("prediction_samples"),
		MetricsPort:               v.GetInt("metrics_port"),
		HealthPort:                v.GetInt("health_port"),
		RequestTimeout:            v.GetDuration("request_timeout"),
		DataStoreTimeout:          v.GetDuration("data_store_timeout"),
		DockerHost:                v.GetString("docker_host"),
		DockerAPIVersion:          v.GetString("docker_api_version"),
		AppServiceName:            v.GetString("api_service_name"),
		DatabaseServiceName:       v.GetString("postgres_service_name"),
		CacheServiceName:          v.GetString("redis_service_name"),
		AppHealthURL:              v.GetString("api_health_url"),
		DatabaseMetricsMode:       v.GetString("database_metrics_mode"),
		CacheMetricsMode:          v.GetString("cache_metrics_mode"),
		DatabaseHost:              v.GetString("postgres_host"),
		DatabasePort:              v.GetInt("postgres_port"),
		DatabaseName:              v.GetString("postgres_db"),
		DatabaseUser:              v.GetString("postgres_user"),
		DatabasePassword:          v.GetString("postgres_password"),
		CacheAddr:                 v.GetString("redis_addr"),
		LogLevel:                  v.GetString("log_level"),
		AppMode:                   v.GetString("app_mode"),
		ShutdownGracePeriod:       v.GetDuration("shutdown_grace_period"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("check_interval", "30s")
	v.SetDefault("cooldown_period", "120s")

	v.SetDefault("min_replicas", 2)
	v.SetDefault("max_replicas", 10)
	v.SetDefault("database_min_replicas", 1)
	v.SetDefault("database_max_replicas", 3)
	v.SetDefault("cache_min_replicas", 1)
	v.SetDefault("cache_max_replicas", 2)

	v.SetDefault("cpu_scale_up_threshold", 70)
	v.SetDefault("cpu_scale_down_threshold", 20)
	v.SetDefault("memory_scale_up_threshold", 80)
	v.SetDefault("memory_scale_down_threshold", 40)
	v.SetDefault("response_time_scale_up_threshold", 1000)
	v.SetDefault("response_time_scale_down_threshold", 200)
	v.SetDefault("postgres_scale_up_connections", 80)
	v.SetDefault("redis_scale_up_memory", 80)

	v.SetDefault("scale_up_threshold", 80)
	v.SetDefault("scale_down_threshold", 30)

	v.SetDefault("scaling_algorithm", "linear")
	v.SetDefault("prediction_samples", 10)

	v.SetDefault("metrics_port", 8090)
	v.SetDefault("health_port", 8080)

	v.SetDefault("request_timeout", "10s")
	v.SetDefault("data_store_timeout", "5s")

	v.SetDefault("docker_host", "")
	v.SetDefault("docker_api_version", "")

	v.SetDefault("api_service_name", "scalable-backend-production_api")
	v.SetDefault("postgres_service_name", "scalable-backend-production_postgres")
	v.SetDefault("redis_service_name", "scalable-backend-production_redis")
	v.SetDefault("api_health_url", "http://api:3000/api/health/detailed")

	v.SetDefault("database_metrics_mode", "query")
	v.SetDefault("cache_metrics_mode", "query")

	v.SetDefault("postgres_host", "postgres")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_db", "scalable_backend")
	v.SetDefault("postgres_user", "postgres")
	v.SetDefault("postgres_password", "postgres_password")
	v.SetDefault("redis_addr", "redis:6379")

	v.SetDefault("log_level", "info")
	v.SetDefault("app_mode", "production")

	v.SetDefault("shutdown_grace_period", "2s")
}

// bindEnv binds every key to both its AUTOSCALER_-prefixed name and the
// original distillation's bare name, bare name last so the prefixed form
// wins when both are set.
func bindEnv(v *viper.Viper) {
	pairs := map[string]string{
		"check_interval":                     "CHECK_INTERVAL",
		"cooldown_period":                    "COOLDOWN_PERIOD",
		"min_replicas":                       "MIN_REPLICAS",
		"max_replicas":                       "MAX_REPLICAS",
		"database_min_replicas":              "DATABASE_MIN_REPLICAS",
		"database_max_replicas":              "POSTGRES_MAX_REPLICAS",
		"cache_min_replicas":                 "CACHE_MIN_REPLICAS",
		"cache_max_replicas":                 "REDIS_MAX_REPLICAS",
		"cpu_scale_up_threshold":             "CPU_SCALE_UP_THRESHOLD",
		"cpu_scale_down_threshold":           "CPU_SCALE_DOWN_THRESHOLD",
		"memory_scale_up_threshold":          "MEMORY_SCALE_UP_THRESHOLD",
		"memory_scale_down_threshold":        "MEMORY_SCALE_DOWN_THRESHOLD",
		"response_time_scale_up_threshold":   "RESPONSE_TIME_SCALE_UP_THRESHOLD",
		"response_time_scale_down_threshold": "RESPONSE_TIME_SCALE_DOWN_THRESHOLD",
		"postgres_scale_up_connections":      "POSTGRES_SCALE_UP_CONNECTIONS",
		"redis_scale_up_memory":              "REDIS_SCALE_UP_MEMORY",
		"scale_up_threshold":                 "SCALE_UP_THRESHOLD",
		"scale_down_threshold":               "SCALE_DOWN_THRESHOLD",
		"scaling_algorithm":                  "SCALING_ALGORITHM",
		"prediction_samples":                 "PREDICTION_SAMPLES",
		"metrics_port":                       "METRICS_PORT",
		"health_port":                        "HEALTH_PORT",
		"request_timeout":                    "REQUEST_TIMEOUT",
		"data_store_timeout":                 "DATA_STORE_TIMEOUT",
		"docker_host":                        "DOCKER_HOST",
		"docker_api_version":                 "DOCKER_API_VERSION",
		"api_service_name":                   "API_SERVICE_NAME",
		"postgres_service_name":              "POSTGRES_SERVICE_NAME",
		"redis_service_name":                 "REDIS_SERVICE_NAME",
		"api_health_url":                     "API_HEALTH_URL",
		"database_metrics_mode":              "DATABASE_METRICS_MODE",
		"cache_metrics_mode":                 "CACHE_METRICS_MODE",
		"postgres_host":                      "POSTGRES_HOST",
		"postgres_port":                      "POSTGRES_PORT",
		"postgres_db":                        "POSTGRES_DB",
		"postgres_user":                      "POSTGRES_USER",
		"postgres_password":                  "POSTGRES_PASSWORD",
		"redis_addr":                         "REDIS_ADDR",
		"log_level":                          "LOG_LEVEL",
		"app_mode":                           "APP_MODE",
		"shutdown_grace_period":              "SHUTDOWN_GRACE_PERIOD",
	}

	for key, bareName := range pairs {
		v.BindEnv(key, "AUTOSCALER_"+bareName, bareName)
	}
}
