package fleet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonitoringOnlyFleet_GetReplicasAlwaysOne(t *testing.T) {
	f := NewMonitoringOnlyFleet()

	n, err := f.GetReplicas(context.Background(), "app")
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMonitoringOnlyFleet_SetReplicasSucceedsWithoutEffect(t *testing.T) {
	f := NewMonitoringOnlyFleet()

	err := f.SetReplicas(context.Background(), "app", 5)
	assert.NoError(t, err)

	n, _ := f.GetReplicas(context.Background(), "app")
	assert.Equal(t, 1, n)
}

func TestMonitoringOnlyFleet_IsFlagged(t *testing.T) {
	f := NewMonitoringOnlyFleet()
	assert.True(t, f.MonitoringOnly())
}
