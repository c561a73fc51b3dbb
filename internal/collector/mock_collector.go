package collector

import (
	"context"
	"math/rand"
	"time"

	"github.com/ridgeline-systems/autoscaler/pkg/models"
)

// MockCollector is a deterministic-ish test double: fixed base values with
// configurable jitter, or a forced failure, standing in for any of the
// three tier collectors in control-loop tests.
type MockCollector struct {
	baseCPU      float64
	baseMemory   float64
	variance     float64
	shouldFail   bool
	failureError error
}

type MockCollectorConfig struct {
	BaseCPU    float64
	BaseMemory float64
	Variance   float64
}

func NewMockCollector(cfg MockCollectorConfig) *MockCollector {
	baseCPU := cfg.BaseCPU
	if baseCPU == 0 {
		baseCPU = 50.0
	}

	baseMemory := cfg.BaseMemory
	if baseMemory == 0 {
		baseMemory = 60.0
	}

	return &MockCollector{
		baseCPU:    baseCPU,
		baseMemory: baseMemory,
		variance:   cfg.Variance,
	}
}

func (c *MockCollector) SetBaseCPU(cpu float64) {
	c.baseCPU = cpu
}

func (c *MockCollector) SetShouldFail(shouldFail bool, err error) {
	c.shouldFail = shouldFail
	c.failureError = err
}

func (c *MockCollector) Collect(ctx context.Context, service models.ServiceDescriptor) (*models.MetricSnapshot, error) {
	if c.shouldFail {
		if c.failureError != nil {
			return nil, c.failureError
		}
		return nil, ErrCollectionFailed
	}

	return &models.MetricSnapshot{
		ServiceID:          service.ServiceID,
		Timestamp:           time.Now(),
		CPUUsagePercent:     c.randomValue(c.baseCPU, c.variance),
		MemoryUsagePercent:  c.randomValue(c.baseMemory, c.variance),
		Healthy:             true,
	}, nil
}

func (c *MockCollector) randomValue(base, variance float64) float64 {
	value := base + (rand.Float64()*2-1)*variance
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	return value
}

func (c *MockCollector) HealthCheck(ctx context.Context) error {
	if c.shouldFail {
		return ErrCollectionFailed
	}
	return nil
}

func (c *MockCollector) Close() error {
	return nil
}
