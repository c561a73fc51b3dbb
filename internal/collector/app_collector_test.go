package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ridgeline-systems/autoscaler/pkg/models"
)

func TestAppCollector_HealthRecordsResponseTime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer server.Close()

	c := NewAppCollector(AppCollectorConfig{HealthURL: server.URL})
	snapshot, err := c.Collect(context.Background(), models.ServiceDescriptor{ServiceID: "app"})

	assert.NoError(t, err)
	assert.True(t, snapshot.Healthy)
	assert.GreaterOrEqual(t, snapshot.ResponseTimeMS, 0.0)
}

func TestAppCollector_HealthEndpointDown(t *testing.T) {
	c := NewAppCollector(AppCollectorConfig{HealthURL: "http://127.0.0.1:1"})
	snapshot, err := c.Collect(context.Background(), models.ServiceDescriptor{ServiceID: "app"})

	assert.NoError(t, err)
	assert.False(t, snapshot.Healthy)
	assert.Equal(t, 0.0, snapshot.ResponseTimeMS)
}

// cpuPercentFromStats is exercised directly because it implements the
// documented first-tick-zero behavior: a container's first observed stats
// snapshot carries a zeroed precpu_stats, so system_delta is 0.
func TestCPUPercentFromStats_FirstTickIsZero(t *testing.T) {
	stats := map[string]interface{}{
		"cpu_stats": map[string]interface{}{
			"cpu_usage":        map[string]interface{}{"total_usage": 1000.0},
			"system_cpu_usage": 50000.0,
		},
		"precpu_stats": map[string]interface{}{
			"cpu_usage":        map[string]interface{}{"total_usage": 0.0},
			"system_cpu_usage": 0.0,
		},
	}

	assert.Equal(t, 0.0, cpuPercentFromStats(stats))
}

func TestCPUPercentFromStats_SubsequentTickComputesDelta(t *testing.T) {
	stats := map[string]interface{}{
		"cpu_stats": map[string]interface{}{
			"cpu_usage":        map[string]interface{}{"total_usage": 2000.0},
			"system_cpu_usage": 60000.0,
		},
		"precpu_stats": map[string]interface{}{
			"cpu_usage":        map[string]interface{}{"total_usage": 1000.0},
			"system_cpu_usage": 50000.0,
		},
	}

	// (2000-1000)/(60000-50000) * 100 = 10
	assert.Equal(t, 10.0, cpuPercentFromStats(stats))
}

func TestMemPercentFromStats(t *testing.T) {
	stats := map[string]interface{}{
		"memory_stats": map[string]interface{}{
			"usage": 512.0,
			"limit": 1024.0,
		},
	}

	assert.Equal(t, 50.0, memPercentFromStats(stats))
}

func TestMemPercentFromStats_NoLimitIsZero(t *testing.T) {
	stats := map[string]interface{}{
		"memory_stats": map[string]interface{}{
			"usage": 512.0,
			"limit": 0.0,
		},
	}

	assert.Equal(t, 0.0, memPercentFromStats(stats))
}
