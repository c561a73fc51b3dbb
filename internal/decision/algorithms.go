package decision

import (
	"math"

	"github.com/ridgeline-systems/autoscaler/internal/history"
	"github.com/ridgeline-systems/autoscaler/pkg/models"
)

// linearStep is the threshold-based algorithm: scale up by one when any of
// cpu/memory/response-time exceeds its up-threshold, scale down by one
// when all three are below their down-thresholds. Scale-up takes
// precedence, though the threshold relation (up thresholds sit above down
// thresholds) means both conditions can't hold simultaneously in practice.
func (e *Engine) linearStep(snapshot *models.MetricSnapshot, current int, service models.ServiceDescriptor) int {
	scaleUp := snapshot.CPUUsagePercent > e.config.CPUScaleUp ||
		snapshot.MemoryUsagePercent > e.config.MemoryScaleUp ||
		snapshot.ResponseTimeMS > e.config.ResponseTimeScaleUp

	scaleDown := snapshot.CPUUsagePercent < e.config.CPUScaleDown &&
		snapshot.MemoryUsagePercent < e.config.MemoryScaleDown &&
		snapshot.ResponseTimeMS < e.config.ResponseTimeScaleDown

	switch {
	case scaleUp && current < service.MaxReplicas:
		return current + 1
	case scaleDown && current > service.MinReplicas:
		return current - 1
	default:
		return current
	}
}

// exponentialStep scales by a multiplicative factor of current replicas
// rather than a fixed step, so load well past threshold corrects faster
// than load just past it.
func (e *Engine) exponentialStep(snapshot *models.MetricSnapshot, current int, service models.ServiceDescriptor) int {
	utilization := math.Max(snapshot.CPUUsagePercent, snapshot.MemoryUsagePercent)

	var factor float64
	switch {
	case utilization > 90:
		factor = 2.0
	case utilization > e.config.ExpScaleUpThreshold:
		factor = 1.5
	case utilization < e.config.ExpScaleDownThreshold:
		factor = 0.7
	default:
		return current
	}

	return int(math.Floor(float64(current) * factor))
}

// predictiveStep uses the history store's trend classification to act
// proactively: it scales up ahead of a sustained rise and scales down only
// once load has been trending down and is already comfortably low.
func (e *Engine) predictiveStep(snapshot *models.MetricSnapshot, current int, service models.ServiceDescriptor, store *history.Store) int {
	if store == nil {
		return current
	}

	cpuTrend := store.Trend(service.ServiceID, models.MetricCPUUsagePercent)
	memTrend := store.Trend(service.ServiceID, models.MetricMemoryUsagePercent)

	rising := cpuTrend == history.TrendIncreasing || memTrend == history.TrendIncreasing
	falling := cpuTrend == history.TrendDecreasing && memTrend == history.TrendDecreasing

	switch {
	case rising && (snapshot.CPUUsagePercent > 60 || snapshot.MemoryUsagePercent > 60):
		if current+1 > service.MaxReplicas {
			return service.MaxReplicas
		}
		return current + 1
	case falling && snapshot.CPUUsagePercent < 40 && snapshot.MemoryUsagePercent < 40:
		if current-1 < service.MinReplicas {
			return service.MinReplicas
		}
		return current - 1
	default:
		return current
	}
}
