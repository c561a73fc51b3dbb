package collector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/ridgeline-systems/autoscaler/internal/logger"
	"github.com/ridgeline-systems/autoscaler/pkg/models"
)

// MetricsMode selects how a tier collector obtains its metrics: dialing the
// real managed service, or deriving an estimate from the application tier's
// replica count, matching the distillation's two separate scripts.
type MetricsMode string

const (
	MetricsModeQuery    MetricsMode = "query"
	MetricsModeSimulate MetricsMode = "simulate"
)

func ParseMetricsMode(s string) MetricsMode {
	if MetricsMode(s) == MetricsModeSimulate {
		return MetricsModeSimulate
	}
	return MetricsModeQuery
}

// AppReplicaSource supplies the application tier's current replica count,
// which the simulate mode uses as its estimation input.
type AppReplicaSource interface {
	AppReplicas(ctx context.Context) (int, error)
}

// DatabaseCollector reports connection-pool utilization against the
// managed Postgres tier. In query mode it reads pg_stat_activity and
// SHOW max_connections directly; in simulate mode it derives an estimate from the
// application tier's replica count, reproducing the original's simulation
// for environments without direct database access.
type DatabaseCollector struct {
	db       *sql.DB
	mode     MetricsMode
	appSrc   AppReplicaSource
	timeout  time.Duration
}

type DatabaseCollectorConfig struct {
	DSN          string
	Mode         MetricsMode
	AppReplicas  AppReplicaSource
	Timeout      time.Duration
}

func NewDatabaseCollector(cfg DatabaseCollectorConfig) (*DatabaseCollector, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	c := &DatabaseCollector{
		mode:    cfg.Mode,
		appSrc:  cfg.AppReplicas,
		timeout: timeout,
	}

	if cfg.Mode == MetricsModeQuery && cfg.DSN != "" {
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("%w: opening database: %v", ErrCollectionFailed, err)
		}
		c.db = db
	}

	return c, nil
}

func (c *DatabaseCollector) Collect(ctx context.Context, service models.ServiceDescriptor) (*models.MetricSnapshot, error) {
	snapshot := &models.MetricSnapshot{
		ServiceID: service.ServiceID,
		Timestamp: time.Now(),
	}

	if c.mode == MetricsModeSimulate {
		c.simulate(ctx, snapshot)
		return snapshot, nil
	}

	if c.db == nil {
		return snapshot, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var active, maxConn int
	row := c.db.QueryRowContext(ctx, `SELECT count(*) FROM pg_stat_activity`)
	if err := row.Scan(&active); err != nil {
		logger.WithService(service.ServiceID).Warnf("querying pg_stat_activity: %v", err)
		return snapshot, nil
	}

	settingRow := c.db.QueryRowContext(ctx, `SHOW max_connections`)
	if err := settingRow.Scan(&maxConn); err != nil {
		logger.WithService(service.ServiceID).Warnf("querying max_connections: %v", err)
		return snapshot, nil
	}

	if maxConn > 0 {
		snapshot.ConnectionUtilPercent = (float64(active) / float64(maxConn)) * 100
	}

	start := time.Now()
	if _, err := c.db.ExecContext(ctx, `SELECT 1`); err == nil {
		snapshot.ResponseTimeMS = float64(time.Since(start).Milliseconds())
	}

	return snapshot, nil
}

// simulate derives a connection-utilization estimate from the application
// tier's current replica count, reproducing the original distillation's
// synthesis in environments with no direct database access:
// estimated_connections = replicas*50, utilization = min(estimated/1000*100, 100).
func (c *DatabaseCollector) simulate(ctx context.Context, snapshot *models.MetricSnapshot) {
	replicas := 1
	if c.appSrc != nil {
		if n, err := c.appSrc.AppReplicas(ctx); err == nil {
			replicas = n
		}
	}
	snapshot.ConnectionUtilPercent = float64(replicas) * 5
	if snapshot.ConnectionUtilPercent > 100 {
		snapshot.ConnectionUtilPercent = 100
	}
}

func (c *DatabaseCollector) HealthCheck(ctx context.Context) error {
	if c.db == nil {
		return nil
	}
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	return nil
}

func (c *DatabaseCollector) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}
