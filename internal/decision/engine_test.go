package decision

import (
	"testing"
	"time"

	"github.com/ridgeline-systems/autoscaler/internal/history"
	"github.com/ridgeline-systems/autoscaler/pkg/models"
	"github.com/stretchr/testify/assert"
)

func appService() models.ServiceDescriptor {
	return models.ServiceDescriptor{ServiceID: "app", Role: models.RoleApplication, MinReplicas: 2, MaxReplicas: 10}
}

// S1 - linear scale up.
func TestScenario_LinearScaleUp(t *testing.T) {
	e := NewEngine(Config{})
	snapshot := &models.MetricSnapshot{CPUUsagePercent: 85, MemoryUsagePercent: 50, ResponseTimeMS: 300}

	d := e.Decide(models.ScalingAlgorithmLinear, snapshot, appService(), 3, nil)

	assert.Equal(t, 4, d.TargetReplicas)
	assert.Equal(t, models.ActionScaleUp, d.Action)
}

// S2 - linear scale down blocked by memory.
func TestScenario_LinearScaleDownBlockedByMemory(t *testing.T) {
	e := NewEngine(Config{})
	snapshot := &models.MetricSnapshot{CPUUsagePercent: 10, MemoryUsagePercent: 50, ResponseTimeMS: 100}

	d := e.Decide(models.ScalingAlgorithmLinear, snapshot, appService(), 5, nil)

	assert.Equal(t, 5, d.TargetReplicas)
	assert.Equal(t, models.ActionMaintain, d.Action)
}

// S3 - exponential critical.
func TestScenario_ExponentialCritical(t *testing.T) {
	e := NewEngine(Config{})
	snapshot := &models.MetricSnapshot{CPUUsagePercent: 95, MemoryUsagePercent: 50}

	d := e.Decide(models.ScalingAlgorithmExponential, snapshot, appService(), 4, nil)

	assert.Equal(t, 8, d.TargetReplicas)
}

// S4 - exponential fractional floor.
func TestScenario_ExponentialFractionalFloor(t *testing.T) {
	e := NewEngine(Config{})
	snapshot := &models.MetricSnapshot{CPUUsagePercent: 85, MemoryUsagePercent: 50}

	d := e.Decide(models.ScalingAlgorithmExponential, snapshot, appService(), 3, nil)

	assert.Equal(t, 4, d.TargetReplicas)
}

// S5 - predictive proactive up.
func TestScenario_PredictiveProactiveUp(t *testing.T) {
	e := NewEngine(Config{})
	store := history.NewStore(10)
	base := time.Now()
	for i, v := range []float64{50, 55, 62, 68, 72} {
		store.AppendAt("app", models.MetricCPUUsagePercent, v, base.Add(time.Duration(i)*time.Second))
	}
	snapshot := &models.MetricSnapshot{CPUUsagePercent: 72, MemoryUsagePercent: 65}

	d := e.Decide(models.ScalingAlgorithmPredictive, snapshot, appService(), 4, store)

	assert.Equal(t, 5, d.TargetReplicas)
}

// S6 - cooldown gate.
func TestScenario_CooldownGate(t *testing.T) {
	e := NewEngine(Config{CooldownPeriod: 120 * time.Second})
	svc := appService()
	snapshot := &models.MetricSnapshot{CPUUsagePercent: 90, MemoryUsagePercent: 50}

	d := e.Decide(models.ScalingAlgorithmLinear, snapshot, svc, 4, nil)
	assert.Equal(t, models.ActionScaleUp, d.Action)
	e.RecordScaling(svc.ServiceID)

	d = e.Decide(models.ScalingAlgorithmLinear, snapshot, svc, 5, nil)
	assert.True(t, d.CooldownActive)
	assert.Equal(t, models.ActionMaintain, d.Action)

	remaining := e.GetCooldownRemaining(svc.ServiceID)
	assert.True(t, remaining > 0 && remaining <= 120*time.Second)
}

// Boundary #7: linear exactly-at-threshold does not scale up (strict >).
func TestBoundary_LinearExactThresholdNoScaleUp(t *testing.T) {
	e := NewEngine(Config{})
	snapshot := &models.MetricSnapshot{CPUUsagePercent: 70.0}

	d := e.Decide(models.ScalingAlgorithmLinear, snapshot, appService(), 3, nil)

	assert.Equal(t, models.ActionMaintain, d.Action)
}

// Boundary #8: linear scale-up clamps at max.
func TestBoundary_LinearClampsAtMax(t *testing.T) {
	e := NewEngine(Config{})
	svc := appService()
	snapshot := &models.MetricSnapshot{CPUUsagePercent: 71}

	d := e.Decide(models.ScalingAlgorithmLinear, snapshot, svc, svc.MaxReplicas, nil)

	assert.Equal(t, svc.MaxReplicas, d.TargetReplicas)
	assert.Equal(t, models.ActionMaintain, d.Action)
}

// Boundary #9: exponential u=90 is not critical (strict >), factor 1.5 applies.
func TestBoundary_ExponentialNinetyIsNotCritical(t *testing.T) {
	e := NewEngine(Config{})
	snapshot := &models.MetricSnapshot{CPUUsagePercent: 90.0}

	d := e.Decide(models.ScalingAlgorithmExponential, snapshot, appService(), 4, nil)

	// factor 1.5 -> floor(4*1.5) = 6, not floor(4*2.0) = 8
	assert.Equal(t, 6, d.TargetReplicas)
}

// Boundary #10: exponential floor arithmetic, current=1 stays at 1 under 1.5x.
func TestBoundary_ExponentialFloorStaysAtOne(t *testing.T) {
	e := NewEngine(Config{})
	svc := models.ServiceDescriptor{ServiceID: "app", MinReplicas: 1, MaxReplicas: 10}
	snapshot := &models.MetricSnapshot{CPUUsagePercent: 85}

	d := e.Decide(models.ScalingAlgorithmExponential, snapshot, svc, 1, nil)

	assert.Equal(t, 1, d.TargetReplicas)
}

// Boundary #11: predictive with fewer than 3 samples is stable, no change.
func TestBoundary_PredictiveFewerThanThreeSamplesStable(t *testing.T) {
	e := NewEngine(Config{})
	store := history.NewStore(10)
	store.Append("app", models.MetricCPUUsagePercent, 70)
	snapshot := &models.MetricSnapshot{CPUUsagePercent: 70}

	d := e.Decide(models.ScalingAlgorithmPredictive, snapshot, appService(), 4, store)

	assert.Equal(t, models.ActionMaintain, d.Action)
}

// Boundary #12: cooldown blocks any actuation on the same service for the
// full window, then permits it again afterward.
func TestBoundary_CooldownWindow(t *testing.T) {
	e := NewEngine(Config{CooldownPeriod: 50 * time.Millisecond})
	e.RecordScaling("app")

	assert.True(t, e.GetCooldownRemaining("app") > 0)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, time.Duration(0), e.GetCooldownRemaining("app"))
}

func TestDatabaseTier_ScalesUpOnConnectionPressure(t *testing.T) {
	e := NewEngine(Config{})
	svc := models.ServiceDescriptor{ServiceID: "db", Role: models.RoleDatabase, MinReplicas: 1, MaxReplicas: 3}
	snapshot := &models.MetricSnapshot{ConnectionUtilPercent: 85}

	d := e.DecideDatabase(snapshot, svc, 1)

	assert.Equal(t, models.ActionScaleUp, d.Action)
	assert.Equal(t, 2, d.TargetReplicas)
}

func TestDatabaseTier_NeverScalesDown(t *testing.T) {
	e := NewEngine(Config{})
	svc := models.ServiceDescriptor{ServiceID: "db", Role: models.RoleDatabase, MinReplicas: 1, MaxReplicas: 3}
	snapshot := &models.MetricSnapshot{ConnectionUtilPercent: 5}

	d := e.DecideDatabase(snapshot, svc, 2)

	assert.Equal(t, models.ActionMaintain, d.Action)
	assert.Equal(t, 2, d.TargetReplicas)
}

func TestCacheTier_ScalesUpOnMemoryPressure(t *testing.T) {
	e := NewEngine(Config{})
	svc := models.ServiceDescriptor{ServiceID: "cache", Role: models.RoleCache, MinReplicas: 1, MaxReplicas: 2}
	snapshot := &models.MetricSnapshot{CacheMemoryPercent: 90}

	d := e.DecideCache(snapshot, svc, 1)

	assert.Equal(t, models.ActionScaleUp, d.Action)
	assert.Equal(t, 2, d.TargetReplicas)
}

func TestIdempotence_LinearSameInputsSameOutput(t *testing.T) {
	e := NewEngine(Config{})
	snapshot := &models.MetricSnapshot{CPUUsagePercent: 85, MemoryUsagePercent: 50}

	first := e.Decide(models.ScalingAlgorithmLinear, snapshot, appService(), 3, nil)
	e.ResetCooldown("app")
	second := e.Decide(models.ScalingAlgorithmLinear, snapshot, appService(), 3, nil)

	assert.Equal(t, first.TargetReplicas, second.TargetReplicas)
}
