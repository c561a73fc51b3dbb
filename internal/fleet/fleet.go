// Package fleet is the orchestrator adapter: it reads and updates a
// managed service's replica count against the container runtime's Swarm
// API. It never runs as a standalone CLI; the control loop calls it once
// per service per tick.
package fleet

import (
	"context"
	"errors"
)

var (
	ErrUnavailable     = errors.New("orchestrator unavailable")
	ErrScalingFailed   = errors.New("scaling failed")
	ErrServiceNotFound = errors.New("service not found")
)

// Adapter is the orchestrator port: current replica count, replica count
// update, and a startup reachability check.
type Adapter interface {
	// GetReplicas returns the current replica count for a Swarm service.
	GetReplicas(ctx context.Context, serviceID string) (int, error)

	// SetReplicas updates a Swarm service's replica count.
	SetReplicas(ctx context.Context, serviceID string, target int) error

	// Ping reports whether the orchestrator is reachable.
	Ping(ctx context.Context) error

	// MonitoringOnly reports whether this adapter is running without a
	// live orchestrator connection (get_replicas returns 1, set_replicas
	// is a no-op).
	MonitoringOnly() bool

	Close() error
}
