package fleet

import (
	"context"
	"os"

	"github.com/ridgeline-systems/autoscaler/internal/logger"
)

// Resolve builds the live Docker-backed adapter unless DOCKER_UNAVAILABLE
// is set or the client fails to construct or fails its startup ping, in
// which case it falls back to the monitoring-only adapter rather than
// failing startup — the observability surface must still come up.
func Resolve(ctx context.Context, cfg DockerFleetConfig) Adapter {
	if os.Getenv("DOCKER_UNAVAILABLE") != "" {
		logger.Info("DOCKER_UNAVAILABLE set, starting in monitoring-only mode")
		return NewMonitoringOnlyFleet()
	}

	docker, err := NewDockerFleet(cfg)
	if err != nil {
		logger.Warnf("docker client unavailable, starting in monitoring-only mode: %v", err)
		return NewMonitoringOnlyFleet()
	}

	if err := docker.Ping(ctx); err != nil {
		logger.Warnf("docker ping failed, starting in monitoring-only mode: %v", err)
		docker.Close()
		return NewMonitoringOnlyFleet()
	}

	return docker
}
