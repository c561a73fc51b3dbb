package fleet

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/swarm"
	"github.com/docker/docker/client"

	"github.com/ridgeline-systems/autoscaler/internal/logger"
)

// DockerFleet talks to the container runtime's Swarm API directly: the
// managed tiers are deployed as Swarm services, and scaling a service is a
// read-modify-write on its replica spec guarded by the service's version.
type DockerFleet struct {
	client *client.Client
}

type DockerFleetConfig struct {
	Host       string
	APIVersion string
}

func NewDockerFleet(cfg DockerFleetConfig) (*DockerFleet, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if cfg.Host != "" {
		opts = append(opts, client.WithHost(cfg.Host))
	}
	if cfg.APIVersion != "" {
		opts = append(opts, client.WithVersion(cfg.APIVersion))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: creating docker client: %v", ErrUnavailable, err)
	}

	return &DockerFleet{client: cli}, nil
}

func (f *DockerFleet) GetReplicas(ctx context.Context, serviceID string) (int, error) {
	svc, _, err := f.client.ServiceInspectWithRaw(ctx, serviceID, swarm.ServiceInspectOptions{})
	if err != nil {
		return 0, fmt.Errorf("%w: inspecting service %s: %v", ErrServiceNotFound, serviceID, err)
	}

	if svc.Spec.Mode.Replicated == nil || svc.Spec.Mode.Replicated.Replicas == nil {
		return 0, fmt.Errorf("%w: service %s is not in replicated mode", ErrScalingFailed, serviceID)
	}

	return int(*svc.Spec.Mode.Replicated.Replicas), nil
}

func (f *DockerFleet) SetReplicas(ctx context.Context, serviceID string, target int) error {
	svc, _, err := f.client.ServiceInspectWithRaw(ctx, serviceID, swarm.ServiceInspectOptions{})
	if err != nil {
		return fmt.Errorf("%w: inspecting service %s: %v", ErrServiceNotFound, serviceID, err)
	}

	replicas := uint64(target)
	spec := svc.Spec
	if spec.Mode.Replicated == nil {
		return fmt.Errorf("%w: service %s is not in replicated mode", ErrScalingFailed, serviceID)
	}
	spec.Mode.Replicated.Replicas = &replicas

	_, err = f.client.ServiceUpdate(ctx, svc.ID, svc.Version, spec, swarm.ServiceUpdateOptions{})
	if err != nil {
		return fmt.Errorf("%w: updating service %s: %v", ErrScalingFailed, serviceID, err)
	}

	logger.WithService(serviceID).Infof("scaled to %d replicas", target)
	return nil
}

func (f *DockerFleet) Ping(ctx context.Context) error {
	_, err := f.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (f *DockerFleet) MonitoringOnly() bool {
	return false
}

// Client exposes the underlying Docker API client so the application
// tier's collector can reuse the same connection for container stats
// instead of dialing a second one.
func (f *DockerFleet) Client() *client.Client {
	return f.client
}

func (f *DockerFleet) Close() error {
	return f.client.Close()
}
