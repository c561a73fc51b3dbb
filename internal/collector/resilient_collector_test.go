package collector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ridgeline-systems/autoscaler/internal/resilience"
	"github.com/ridgeline-systems/autoscaler/pkg/models"
)

func TestResilientCollector_PassesThroughOnSuccess(t *testing.T) {
	mock := NewMockCollector(MockCollectorConfig{BaseCPU: 42, Variance: 0})
	rc := NewResilientCollector(ResilientCollectorConfig{
		Collector:   mock,
		Name:        "app",
		MaxFailures: 3,
		Timeout:     time.Second,
	})

	snapshot, err := rc.Collect(context.Background(), models.ServiceDescriptor{ServiceID: "app"})
	assert.NoError(t, err)
	assert.Equal(t, 42.0, snapshot.CPUUsagePercent)
}

func TestResilientCollector_OpensCircuitAfterRepeatedFailure(t *testing.T) {
	mock := NewMockCollector(MockCollectorConfig{})
	mock.SetShouldFail(true, ErrCollectionFailed)

	rc := NewResilientCollector(ResilientCollectorConfig{
		Collector:     mock,
		Name:          "app",
		MaxFailures:   2,
		Timeout:       time.Hour,
		RetryAttempts: 1,
	})

	for i := 0; i < 2; i++ {
		_, err := rc.Collect(context.Background(), models.ServiceDescriptor{ServiceID: "app"})
		assert.Error(t, err)
	}

	assert.Equal(t, resilience.StateOpen, rc.CircuitState())

	_, err := rc.Collect(context.Background(), models.ServiceDescriptor{ServiceID: "app"})
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
}
