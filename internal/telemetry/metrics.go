// Package telemetry exposes the control loop's observable state as
// Prometheus gauges and counters via the real client_golang registry.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every series the control loop publishes to. A single
// instance is built at startup and threaded through the scheduler; the
// exposition server reads the same default registry via promhttp.
type Registry struct {
	APIReplicasCurrent      *prometheus.GaugeVec
	PostgresReplicasCurrent *prometheus.GaugeVec
	RedisReplicasCurrent    *prometheus.GaugeVec

	APICPUUsagePercent      *prometheus.GaugeVec
	APIMemoryUsagePercent   *prometheus.GaugeVec
	APIResponseTimeMS       *prometheus.GaugeVec
	APIErrorRatePercent     *prometheus.GaugeVec

	ScalingDecisionsTotal      *prometheus.CounterVec
	MissedTicksTotal           prometheus.Counter
	CollectionErrorsTotal      *prometheus.CounterVec
}

// NewRegistry builds the default, process-wide metric set registered
// against prometheus.DefaultRegisterer, scraped by promhttp.Handler().
func NewRegistry() *Registry {
	return NewRegistryFor(prometheus.DefaultRegisterer)
}

// NewRegistryFor builds the metric set against an arbitrary registerer, so
// tests can construct an isolated Registry without colliding with the
// process-wide default.
func NewRegistryFor(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		APIReplicasCurrent: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "api_replicas_current",
			Help: "Current replica count of the application tier.",
		}, []string{"service"}),
		PostgresReplicasCurrent: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "postgres_replicas_current",
			Help: "Current replica count of the database tier.",
		}, []string{"service"}),
		RedisReplicasCurrent: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "redis_replicas_current",
			Help: "Current replica count of the cache tier.",
		}, []string{"service"}),
		APICPUUsagePercent: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "api_cpu_usage_percent",
			Help: "Application tier CPU utilization percent.",
		}, []string{"service"}),
		APIMemoryUsagePercent: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "api_memory_usage_percent",
			Help: "Application tier memory utilization percent.",
		}, []string{"service"}),
		APIResponseTimeMS: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "api_response_time_ms",
			Help: "Application tier health endpoint response time in milliseconds.",
		}, []string{"service"}),
		APIErrorRatePercent: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "api_error_rate_percent",
			Help: "Application tier error rate percent.",
		}, []string{"service"}),
		ScalingDecisionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scaling_decisions_total",
			Help: "Count of executed scaling actuations, labeled by service and direction.",
		}, []string{"service", "direction"}),
		MissedTicksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "autoscaler_missed_ticks_total",
			Help: "Count of ticks dropped because the previous tick was still in flight.",
		}),
		CollectionErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "autoscaler_collection_errors_total",
			Help: "Count of metric collection failures, labeled by service.",
		}, []string{"service"}),
	}
}

// PublishSnapshot updates the per-service gauges for one tier's tick. Only
// the application tier publishes CPU/memory/response-time/error-rate;
// database and cache tiers publish only their replica-count gauge, set by
// the caller directly.
func (r *Registry) PublishSnapshot(serviceID string, cpu, mem, responseTimeMS, errorRate float64) {
	r.APICPUUsagePercent.WithLabelValues(serviceID).Set(cpu)
	r.APIMemoryUsagePercent.WithLabelValues(serviceID).Set(mem)
	r.APIResponseTimeMS.WithLabelValues(serviceID).Set(responseTimeMS)
	r.APIErrorRatePercent.WithLabelValues(serviceID).Set(errorRate)
}

func (r *Registry) RecordScalingDecision(serviceID, direction string) {
	r.ScalingDecisionsTotal.WithLabelValues(serviceID, direction).Inc()
}

func (r *Registry) RecordMissedTick() {
	r.MissedTicksTotal.Inc()
}

func (r *Registry) RecordCollectionError(serviceID string) {
	r.CollectionErrorsTotal.WithLabelValues(serviceID).Inc()
}
