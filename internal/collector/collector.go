// Package collector fetches a MetricSnapshot for one managed service per
// tick. Each tier (application, database, cache) has its own
// implementation; all three share the Collector contract so the control
// loop never branches on concrete type.
package collector

import (
	"context"
	"errors"

	"github.com/ridgeline-systems/autoscaler/pkg/models"
)

var (
	ErrCollectionFailed  = errors.New("metric collection failed")
	ErrTimeout           = errors.New("collection timeout")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrInvalidResponse   = errors.New("invalid response from data source")
)

// Collector fetches metrics for a single managed service.
type Collector interface {
	// Collect fetches the current metric snapshot for the given service.
	Collect(ctx context.Context, service models.ServiceDescriptor) (*models.MetricSnapshot, error)

	// HealthCheck verifies the collector can reach its data source.
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the collector.
	Close() error
}
