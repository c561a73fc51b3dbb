package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func TestRegistry_PublishSnapshotSetsGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistryFor(reg)

	r.PublishSnapshot("app", 70, 55, 120, 0)

	gathered, err := reg.Gather()
	assert.NoError(t, err)
	assert.Equal(t, 70.0, gaugeValue(t, gathered, "api_cpu_usage_percent"))
}

func TestRegistry_RecordScalingDecisionIncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistryFor(reg)

	r.RecordScalingDecision("app", "up")
	r.RecordScalingDecision("app", "up")

	gathered, err := reg.Gather()
	assert.NoError(t, err)
	assert.Equal(t, 2.0, counterValue(t, gathered, "scaling_decisions_total"))
}

func gaugeValue(t *testing.T, mfs []*dto.MetricFamily, name string) float64 {
	t.Helper()
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func counterValue(t *testing.T, mfs []*dto.MetricFamily, name string) float64 {
	t.Helper()
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
