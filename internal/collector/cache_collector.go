package collector

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ridgeline-systems/autoscaler/internal/logger"
	"github.com/ridgeline-systems/autoscaler/pkg/models"
)

// simulatedCacheHitRate is the original distillation's hard-coded
// placeholder hit rate for environments running in simulate mode.
const simulatedCacheHitRate = 85

// CacheCollector reports memory pressure on the managed Redis tier. In
// query mode it reads the INFO reply directly; in simulate mode it derives
// a memory estimate from the application tier's replica count and reports
// the fixed placeholder hit rate, matching the original.
type CacheCollector struct {
	client  *redis.Client
	mode    MetricsMode
	appSrc  AppReplicaSource
	timeout time.Duration
}

type CacheCollectorConfig struct {
	Addr        string
	Mode        MetricsMode
	AppReplicas AppReplicaSource
	Timeout     time.Duration
}

func NewCacheCollector(cfg CacheCollectorConfig) *CacheCollector {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	c := &CacheCollector{
		mode:    cfg.Mode,
		appSrc:  cfg.AppReplicas,
		timeout: timeout,
	}

	if cfg.Mode == MetricsModeQuery && cfg.Addr != "" {
		c.client = redis.NewClient(&redis.Options{
			Addr:        cfg.Addr,
			DialTimeout: timeout,
		})
	}

	return c
}

func (c *CacheCollector) Collect(ctx context.Context, service models.ServiceDescriptor) (*models.MetricSnapshot, error) {
	snapshot := &models.MetricSnapshot{
		ServiceID: service.ServiceID,
		Timestamp: time.Now(),
	}

	if c.mode == MetricsModeSimulate {
		c.simulate(ctx, snapshot)
		return snapshot, nil
	}

	if c.client == nil {
		return snapshot, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	info, err := c.client.Info(ctx, "memory", "stats").Result()
	if err != nil {
		logger.WithService(service.ServiceID).Warnf("querying redis INFO: %v", err)
		return snapshot, nil
	}

	fields := parseRedisInfo(info)

	usedMemory := fields.float("used_memory")
	maxMemory := fields.float("maxmemory")
	if maxMemory > 0 {
		snapshot.CacheMemoryPercent = (usedMemory / maxMemory) * 100
	}

	hits := fields.float("keyspace_hits")
	misses := fields.float("keyspace_misses")
	if hits+misses > 0 {
		snapshot.CacheHitRatePercent = (hits / (hits + misses)) * 100
	}

	return snapshot, nil
}

// simulate derives a memory-pressure estimate from the application tier's
// current replica count (min(replicas*10, 80), matching the original) and
// reports the original's fixed placeholder hit rate.
func (c *CacheCollector) simulate(ctx context.Context, snapshot *models.MetricSnapshot) {
	replicas := 1
	if c.appSrc != nil {
		if n, err := c.appSrc.AppReplicas(ctx); err == nil {
			replicas = n
		}
	}
	snapshot.CacheMemoryPercent = float64(replicas) * 10
	if snapshot.CacheMemoryPercent > 80 {
		snapshot.CacheMemoryPercent = 80
	}
	snapshot.CacheHitRatePercent = simulatedCacheHitRate
}

type redisInfoFields map[string]string

func (f redisInfoFields) float(key string) float64 {
	v, ok := f[key]
	if !ok {
		return 0
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseRedisInfo(info string) redisInfoFields {
	fields := make(redisInfoFields)
	for _, line := range strings.Split(info, "\r\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		fields[parts[0]] = parts[1]
	}
	return fields
}

func (c *CacheCollector) HealthCheck(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	return nil
}

func (c *CacheCollector) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
