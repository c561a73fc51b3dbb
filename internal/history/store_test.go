package history

import (
	"testing"
	"time"

	"github.com/ridgeline-systems/autoscaler/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestStore_AppendEvictsOldest(t *testing.T) {
	s := NewStore(3)
	base := time.Now()
	for i := 0; i < 5; i++ {
		s.AppendAt("svc", models.MetricCPUUsagePercent, float64(i), base.Add(time.Duration(i)*time.Second))
	}

	samples := s.Samples("svc", models.MetricCPUUsagePercent)
	assert.Len(t, samples, 3)
	assert.Equal(t, []float64{2, 3, 4}, values(samples))
}

func TestStore_TrendFewerThanThreeSamplesIsStable(t *testing.T) {
	s := NewStore(10)
	s.Append("svc", models.MetricCPUUsagePercent, 50)
	s.Append("svc", models.MetricCPUUsagePercent, 80)

	assert.Equal(t, TrendStable, s.Trend("svc", models.MetricCPUUsagePercent))
}

func TestStore_TrendIncreasing(t *testing.T) {
	s := NewStore(10)
	base := time.Now()
	for i, v := range []float64{50, 55, 62, 68, 72} {
		s.AppendAt("svc", models.MetricCPUUsagePercent, v, base.Add(time.Duration(i)*time.Second))
	}

	assert.Equal(t, TrendIncreasing, s.Trend("svc", models.MetricCPUUsagePercent))
}

func TestStore_TrendDecreasing(t *testing.T) {
	s := NewStore(10)
	base := time.Now()
	for i, v := range []float64{80, 70, 60, 40, 30} {
		s.AppendAt("svc", models.MetricCPUUsagePercent, v, base.Add(time.Duration(i)*time.Second))
	}

	assert.Equal(t, TrendDecreasing, s.Trend("svc", models.MetricCPUUsagePercent))
}

func TestStore_TrendStableWithFlatSignal(t *testing.T) {
	s := NewStore(10)
	base := time.Now()
	for i := 0; i < 5; i++ {
		s.AppendAt("svc", models.MetricCPUUsagePercent, 50, base.Add(time.Duration(i)*time.Second))
	}

	assert.Equal(t, TrendStable, s.Trend("svc", models.MetricCPUUsagePercent))
}

func TestStore_TrendWindowCapsAtFiveSamples(t *testing.T) {
	s := NewStore(10)
	base := time.Now()
	// Ten stored samples, but only the last five should drive the trend:
	// an old spike outside the window must not affect the result.
	values := []float64{200, 200, 200, 200, 200, 50, 52, 55, 58, 60}
	for i, v := range values {
		s.AppendAt("svc", models.MetricCPUUsagePercent, v, base.Add(time.Duration(i)*time.Second))
	}

	assert.Equal(t, TrendIncreasing, s.Trend("svc", models.MetricCPUUsagePercent))
}

func values(samples []models.MetricSample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Value
	}
	return out
}
