// Package loop is the control loop: a single sequential ticker that runs
// the collect -> record -> publish -> gate -> decide -> actuate pipeline
// for the application, database and cache tiers, in that fixed order,
// isolating failures per service.
package loop

import (
	"context"
	"sync"
	"time"

	"github.com/ridgeline-systems/autoscaler/internal/collector"
	"github.com/ridgeline-systems/autoscaler/internal/decision"
	"github.com/ridgeline-systems/autoscaler/internal/fleet"
	"github.com/ridgeline-systems/autoscaler/internal/history"
	"github.com/ridgeline-systems/autoscaler/internal/logger"
	"github.com/ridgeline-systems/autoscaler/internal/telemetry"
	"github.com/ridgeline-systems/autoscaler/pkg/models"
)

// Tier bundles everything the scheduler needs to run one service's
// pipeline on a tick: its static descriptor, its collector, and the
// algorithm it decides with (ignored for the database/cache tiers, which
// use their own independent rule regardless of this field).
type Tier struct {
	Service   models.ServiceDescriptor
	Collector collector.Collector
	Algorithm models.ScalingAlgorithm
}

// Scheduler runs ticks strictly sequentially; within a tick, per-service
// pipelines also run sequentially in application -> database -> cache
// order. This keeps the history store and cooldown ledger single-writer.
type Scheduler struct {
	interval time.Duration
	tiers    []Tier
	fleet    fleet.Adapter
	engine   *decision.Engine
	history  *history.Store
	metrics  *telemetry.Registry
	activity *ActivityFeed

	mu      sync.Mutex
	running bool
}

type SchedulerConfig struct {
	Interval time.Duration
	Tiers    []Tier
	Fleet    fleet.Adapter
	Engine   *decision.Engine
	History  *history.Store
	Metrics  *telemetry.Registry
	Activity *ActivityFeed
}

func NewScheduler(cfg SchedulerConfig) *Scheduler {
	return &Scheduler{
		interval: cfg.Interval,
		tiers:    cfg.Tiers,
		fleet:    cfg.Fleet,
		engine:   cfg.Engine,
		history:  cfg.History,
		metrics:  cfg.Metrics,
		activity: cfg.Activity,
	}
}

// Run blocks, ticking every interval until ctx is canceled. If a tick is
// still in flight when the next is due, the new tick is dropped rather
// than queued; a missed-tick event is recorded and counted.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.metrics.RecordMissedTick()
		s.activity.Record(models.NewActivityEvent(models.EventTypeTickMissed, "", "previous tick still in flight, dropping").WithSeverity(models.SeverityWarning))
		logger.Warn("tick still in flight, dropping this one")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	for _, tier := range s.tiers {
		s.runTier(ctx, tier)
	}
}

// runTier executes one service's pipeline end to end. Any failure at any
// step logs, records an activity event, and returns without advancing the
// cooldown clock — the next tick tries again from scratch.
func (s *Scheduler) runTier(ctx context.Context, tier Tier) {
	service := tier.Service

	current, err := s.fleet.GetReplicas(ctx, service.ServiceID)
	if err != nil {
		logger.WithService(service.ServiceID).Warnf("reading current replicas: %v", err)
		s.metrics.RecordCollectionError(service.ServiceID)
		s.activity.Record(models.NewActivityEvent(models.EventTypeCollectionError, service.ServiceID, "orchestrator unreachable, skipping tier").WithSeverity(models.SeverityWarning))
		return
	}

	snapshot, err := tier.Collector.Collect(ctx, service)
	if err != nil {
		logger.WithService(service.ServiceID).Warnf("collecting metrics: %v", err)
		s.metrics.RecordCollectionError(service.ServiceID)
		s.activity.Record(models.NewActivityEvent(models.EventTypeCollectionError, service.ServiceID, "metric collection failed, skipping tier").WithSeverity(models.SeverityWarning))
		return
	}

	s.record(service, snapshot)
	s.publish(service, snapshot, current)

	decision := s.decide(tier, snapshot, current)

	s.activity.Record(models.NewActivityEvent(models.EventTypeDecisionMade, service.ServiceID, string(decision.Action)+": "+decision.Reason))

	if decision.CooldownActive {
		return
	}
	if decision.Action == models.ActionMaintain {
		return
	}

	if err := s.fleet.SetReplicas(ctx, service.ServiceID, decision.TargetReplicas); err != nil {
		logger.WithService(service.ServiceID).Warnf("actuating scaling decision: %v", err)
		s.activity.Record(models.NewActivityEvent(models.EventTypeScalingFailed, service.ServiceID, err.Error()).WithSeverity(models.SeverityCritical))
		return
	}

	direction := "up"
	if decision.TargetReplicas < decision.CurrentReplicas {
		direction = "down"
	}

	// Monitoring-only mode's SetReplicas always succeeds without effect, so
	// the cooldown clock and the scaling counter must not advance here —
	// otherwise the first would-be scale would stamp a cooldown and the
	// loop would start reporting in_cooldown instead of continuously
	// showing what it would do.
	if s.fleet.MonitoringOnly() {
		s.activity.Record(models.NewActivityEvent(models.EventTypeScalingComplete, service.ServiceID,
			"monitoring-only: would scale "+direction+" to target replica count"))
		return
	}

	s.engine.RecordScaling(service.ServiceID)
	s.metrics.RecordScalingDecision(service.ServiceID, direction)
	s.activity.Record(models.NewActivityEvent(models.EventTypeScalingComplete, service.ServiceID,
		"scaled "+direction+" to target replica count"))
}

func (s *Scheduler) record(service models.ServiceDescriptor, snapshot *models.MetricSnapshot) {
	switch service.Role {
	case models.RoleDatabase:
		s.history.Append(service.ServiceID, models.MetricConnectionUtilPct, snapshot.ConnectionUtilPercent)
	case models.RoleCache:
		s.history.Append(service.ServiceID, models.MetricCacheMemoryPercent, snapshot.CacheMemoryPercent)
	default:
		s.history.Append(service.ServiceID, models.MetricCPUUsagePercent, snapshot.CPUUsagePercent)
		s.history.Append(service.ServiceID, models.MetricMemoryUsagePercent, snapshot.MemoryUsagePercent)
		s.history.Append(service.ServiceID, models.MetricResponseTimeMS, snapshot.ResponseTimeMS)
	}
}

func (s *Scheduler) publish(service models.ServiceDescriptor, snapshot *models.MetricSnapshot, current int) {
	switch service.Role {
	case models.RoleDatabase:
		s.metrics.PostgresReplicasCurrent.WithLabelValues(service.ServiceID).Set(float64(current))
	case models.RoleCache:
		s.metrics.RedisReplicasCurrent.WithLabelValues(service.ServiceID).Set(float64(current))
	default:
		s.metrics.APIReplicasCurrent.WithLabelValues(service.ServiceID).Set(float64(current))
		s.metrics.PublishSnapshot(service.ServiceID, snapshot.CPUUsagePercent, snapshot.MemoryUsagePercent, snapshot.ResponseTimeMS, snapshot.ErrorRatePercent)
	}
}

func (s *Scheduler) decide(tier Tier, snapshot *models.MetricSnapshot, current int) *models.ScalingDecision {
	switch tier.Service.Role {
	case models.RoleDatabase:
		return s.engine.DecideDatabase(snapshot, tier.Service, current)
	case models.RoleCache:
		return s.engine.DecideCache(snapshot, tier.Service, current)
	default:
		return s.engine.Decide(tier.Algorithm, snapshot, tier.Service, current, s.history)
	}
}
