package fleet

import (
	"context"

	"github.com/ridgeline-systems/autoscaler/internal/logger"
)

// MonitoringOnlyFleet stands in for the orchestrator when Docker is
// unreachable or explicitly disabled (DOCKER_UNAVAILABLE). GetReplicas
// always reports 1; SetReplicas logs the would-be action and reports
// success without effect, so the rest of the control loop runs unchanged
// and the activity feed still shows what the loop would have done.
type MonitoringOnlyFleet struct{}

func NewMonitoringOnlyFleet() *MonitoringOnlyFleet {
	return &MonitoringOnlyFleet{}
}

func (f *MonitoringOnlyFleet) GetReplicas(ctx context.Context, serviceID string) (int, error) {
	return 1, nil
}

func (f *MonitoringOnlyFleet) SetReplicas(ctx context.Context, serviceID string, target int) error {
	logger.WithService(serviceID).Infof("monitoring-only mode: would scale to %d replicas", target)
	return nil
}

func (f *MonitoringOnlyFleet) Ping(ctx context.Context) error {
	return nil
}

func (f *MonitoringOnlyFleet) MonitoringOnly() bool {
	return true
}

func (f *MonitoringOnlyFleet) Close() error {
	return nil
}
