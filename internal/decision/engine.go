// Package decision implements the scaling decision engine: the linear,
// exponential and predictive algorithms for the application tier, the
// independent scale-up-only rules for the database and cache tiers, and
// the cooldown ledger gating every actuation.
package decision

import (
	"sync"
	"time"

	"github.com/ridgeline-systems/autoscaler/internal/history"
	"github.com/ridgeline-systems/autoscaler/internal/logger"
	"github.com/ridgeline-systems/autoscaler/pkg/models"
)

// Config holds every threshold the engine's algorithms read. Zero values
// are defaulted in NewEngine to the original distillation's defaults.
type Config struct {
	CooldownPeriod time.Duration

	// Linear algorithm (application tier).
	CPUScaleUp            float64
	CPUScaleDown          float64
	MemoryScaleUp         float64
	MemoryScaleDown       float64
	ResponseTimeScaleUp   float64
	ResponseTimeScaleDown float64

	// Exponential algorithm.
	ExpScaleUpThreshold   float64
	ExpScaleDownThreshold float64

	// Database and cache tiers.
	DatabaseConnectionScaleUp float64
	CacheMemoryScaleUp        float64
}

func (c *Config) applyDefaults() {
	if c.CooldownPeriod == 0 {
		c.CooldownPeriod = 120 * time.Second
	}
	if c.CPUScaleUp == 0 {
		c.CPUScaleUp = 70
	}
	if c.CPUScaleDown == 0 {
		c.CPUScaleDown = 20
	}
	if c.MemoryScaleUp == 0 {
		c.MemoryScaleUp = 80
	}
	if c.MemoryScaleDown == 0 {
		c.MemoryScaleDown = 40
	}
	if c.ResponseTimeScaleUp == 0 {
		c.ResponseTimeScaleUp = 1000
	}
	if c.ResponseTimeScaleDown == 0 {
		c.ResponseTimeScaleDown = 200
	}
	if c.ExpScaleUpThreshold == 0 {
		c.ExpScaleUpThreshold = 80
	}
	if c.ExpScaleDownThreshold == 0 {
		c.ExpScaleDownThreshold = 30
	}
	if c.DatabaseConnectionScaleUp == 0 {
		c.DatabaseConnectionScaleUp = 80
	}
	if c.CacheMemoryScaleUp == 0 {
		c.CacheMemoryScaleUp = 80
	}
}

// Engine dispatches scaling decisions across the three algorithms and the
// two tier-specific rules, and owns the cooldown ledger gating actuation.
type Engine struct {
	config         Config
	lastScaleTimes map[string]time.Time
	mu             sync.RWMutex
}

func NewEngine(cfg Config) *Engine {
	cfg.applyDefaults()
	return &Engine{
		config:         cfg,
		lastScaleTimes: make(map[string]time.Time),
	}
}

// Decide computes a target replica count for the application tier using
// the configured algorithm, consulting history only for the predictive
// algorithm. currentReplicas is read from the orchestrator adapter on
// every tick; the engine itself never tracks replica counts.
func (e *Engine) Decide(
	algorithm models.ScalingAlgorithm,
	snapshot *models.MetricSnapshot,
	service models.ServiceDescriptor,
	currentReplicas int,
	store *history.Store,
) *models.ScalingDecision {
	decision := &models.ScalingDecision{
		ServiceID:       service.ServiceID,
		Timestamp:       time.Now(),
		CurrentReplicas: currentReplicas,
		TargetReplicas:  currentReplicas,
		Action:          models.ActionMaintain,
	}

	if e.isInCooldown(service.ServiceID) {
		decision.CooldownActive = true
		decision.Reason = "in_cooldown"
		return decision
	}

	var target int
	switch algorithm {
	case models.ScalingAlgorithmExponential:
		target = e.exponentialStep(snapshot, currentReplicas, service)
	case models.ScalingAlgorithmPredictive:
		target = e.predictiveStep(snapshot, currentReplicas, service, store)
	default:
		target = e.linearStep(snapshot, currentReplicas, service)
	}

	return e.finalizeFrom(decision, service, currentReplicas, target)
}

func (e *Engine) finalizeFrom(decision *models.ScalingDecision, service models.ServiceDescriptor, current, target int) *models.ScalingDecision {
	target = service.Clamp(target)
	decision.CurrentReplicas = current
	decision.TargetReplicas = target

	switch {
	case target > current:
		decision.Action = models.ActionScaleUp
		decision.Reason = "scale_up"
	case target < current:
		decision.Action = models.ActionScaleDown
		decision.Reason = "scale_down"
	default:
		decision.Action = models.ActionMaintain
		decision.Reason = "within_normal_parameters"
	}

	logger.WithField("service_id", service.ServiceID).Debugf(
		"decision: %s %d -> %d (%s)", decision.Action, current, target, decision.Reason,
	)

	return decision
}

// DecideDatabase applies the database tier's independent, scale-up-only
// rule: scale up by one when connection utilization exceeds the
// configured threshold.
func (e *Engine) DecideDatabase(snapshot *models.MetricSnapshot, service models.ServiceDescriptor, currentReplicas int) *models.ScalingDecision {
	decision := &models.ScalingDecision{
		ServiceID:       service.ServiceID,
		Timestamp:       time.Now(),
		CurrentReplicas: currentReplicas,
		TargetReplicas:  currentReplicas,
		Action:          models.ActionMaintain,
		Reason:          "within_normal_parameters",
	}

	if e.isInCooldown(service.ServiceID) {
		decision.CooldownActive = true
		decision.Reason = "in_cooldown"
		return decision
	}

	if snapshot.ConnectionUtilPercent > e.config.DatabaseConnectionScaleUp && currentReplicas < service.MaxReplicas {
		decision.TargetReplicas = service.Clamp(currentReplicas + 1)
		decision.Action = models.ActionScaleUp
		decision.Reason = "connection_utilization_high"
	}

	return decision
}

// DecideCache applies the cache tier's independent, scale-up-only rule:
// scale up by one when cache memory pressure exceeds the configured
// threshold.
func (e *Engine) DecideCache(snapshot *models.MetricSnapshot, service models.ServiceDescriptor, currentReplicas int) *models.ScalingDecision {
	decision := &models.ScalingDecision{
		ServiceID:       service.ServiceID,
		Timestamp:       time.Now(),
		CurrentReplicas: currentReplicas,
		TargetReplicas:  currentReplicas,
		Action:          models.ActionMaintain,
		Reason:          "within_normal_parameters",
	}

	if e.isInCooldown(service.ServiceID) {
		decision.CooldownActive = true
		decision.Reason = "in_cooldown"
		return decision
	}

	if snapshot.CacheMemoryPercent > e.config.CacheMemoryScaleUp && currentReplicas < service.MaxReplicas {
		decision.TargetReplicas = service.Clamp(currentReplicas + 1)
		decision.Action = models.ActionScaleUp
		decision.Reason = "cache_memory_high"
	}

	return decision
}

func (e *Engine) isInCooldown(serviceID string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	last, ok := e.lastScaleTimes[serviceID]
	if !ok {
		return false
	}
	return time.Since(last) < e.config.CooldownPeriod
}

func (e *Engine) RecordScaling(serviceID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastScaleTimes[serviceID] = time.Now()
}

func (e *Engine) ResetCooldown(serviceID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.lastScaleTimes, serviceID)
}

func (e *Engine) GetCooldownRemaining(serviceID string) time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()

	last, ok := e.lastScaleTimes[serviceID]
	if !ok {
		return 0
	}
	elapsed := time.Since(last)
	if elapsed >= e.config.CooldownPeriod {
		return 0
	}
	return e.config.CooldownPeriod - elapsed
}
