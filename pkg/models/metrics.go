package models

import "time"

// MetricKind names a single observable dimension of a service's load. The
// metric history store and the predictive decision algorithm both key off
// of this enum.
type MetricKind string

const (
	MetricCPUUsagePercent    MetricKind = "cpu_usage_percent"
	MetricMemoryUsagePercent MetricKind = "memory_usage_percent"
	MetricResponseTimeMS     MetricKind = "response_time_ms"
	MetricConnectionUtilPct  MetricKind = "connection_utilization_percent"
	MetricCacheMemoryPercent MetricKind = "cache_memory_percent"
	MetricErrorRatePercent   MetricKind = "error_rate_percent"
)

// MetricSample is a single timestamped observation, the unit of storage in
// the history ring.
type MetricSample struct {
	Timestamp time.Time
	Value     float64
}

// MetricSnapshot is the fixed-shape record collected for a service on a
// single tick. Fields a collector could not obtain are left at their zero
// value rather than synthesized.
type MetricSnapshot struct {
	ServiceID             string
	Timestamp             time.Time
	CPUUsagePercent       float64
	MemoryUsagePercent    float64
	ResponseTimeMS        float64
	ErrorRatePercent      float64
	Healthy               bool
	ConnectionUtilPercent float64
	CacheMemoryPercent    float64
	CacheHitRatePercent   float64
}
