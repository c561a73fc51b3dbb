package collector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ridgeline-systems/autoscaler/pkg/models"
)

func TestCacheCollector_SimulateDerivesFromAppReplicas(t *testing.T) {
	c := NewCacheCollector(CacheCollectorConfig{
		Mode:        MetricsModeSimulate,
		AppReplicas: fixedReplicaSource{n: 3},
	})

	snapshot, err := c.Collect(context.Background(), models.ServiceDescriptor{ServiceID: "cache"})
	assert.NoError(t, err)
	assert.Equal(t, 30.0, snapshot.CacheMemoryPercent)
	assert.Equal(t, float64(simulatedCacheHitRate), snapshot.CacheHitRatePercent)
}

func TestCacheCollector_SimulateCapsAtEighty(t *testing.T) {
	c := NewCacheCollector(CacheCollectorConfig{
		Mode:        MetricsModeSimulate,
		AppReplicas: fixedReplicaSource{n: 10},
	})

	snapshot, err := c.Collect(context.Background(), models.ServiceDescriptor{ServiceID: "cache"})
	assert.NoError(t, err)
	assert.Equal(t, 80.0, snapshot.CacheMemoryPercent)
}

func TestParseRedisInfo(t *testing.T) {
	raw := "# Memory\r\nused_memory:1048576\r\nmaxmemory:2097152\r\n# Stats\r\nkeyspace_hits:90\r\nkeyspace_misses:10\r\n"
	fields := parseRedisInfo(raw)

	assert.Equal(t, 1048576.0, fields.float("used_memory"))
	assert.Equal(t, 2097152.0, fields.float("maxmemory"))
	assert.Equal(t, 0.0, fields.float("missing_key"))
}

func TestCacheCollector_QueryModeWithNoAddrReturnsZeroValue(t *testing.T) {
	c := NewCacheCollector(CacheCollectorConfig{Mode: MetricsModeQuery})

	snapshot, err := c.Collect(context.Background(), models.ServiceDescriptor{ServiceID: "cache"})
	assert.NoError(t, err)
	assert.Equal(t, 0.0, snapshot.CacheMemoryPercent)
}
