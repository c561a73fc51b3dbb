// Package history implements the metric history store: a bounded,
// per-(service, metric) ring of recent samples used by the predictive
// decision algorithm to classify trend.
package history

import (
	"sync"
	"time"

	"github.com/ridgeline-systems/autoscaler/pkg/models"
)

// Trend is the three-way classification produced by the store for a
// metric's recent movement.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

type key struct {
	serviceID string
	metric    models.MetricKind
}

// Store is a single-writer, reader-safe bounded ring of metric samples per
// (service, metric) pair. The control loop is its only writer; the
// predictive algorithm and the telemetry surface read it concurrently.
type Store struct {
	mu       sync.RWMutex
	capacity int
	series   map[key][]models.MetricSample
}

// NewStore builds a store with the given per-series capacity (the
// PredictionSamples configuration value). A non-positive capacity defaults
// to 10, matching the original distillation's default.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = 10
	}
	return &Store{
		capacity: capacity,
		series:   make(map[key][]models.MetricSample),
	}
}

// Append records a new sample for (serviceID, metric), evicting the oldest
// sample if the ring is already at capacity. Always succeeds.
func (s *Store) Append(serviceID string, metric models.MetricKind, value float64) {
	s.AppendAt(serviceID, metric, value, time.Now())
}

// AppendAt is Append with an explicit timestamp, used by tests to build a
// deterministic history.
func (s *Store) AppendAt(serviceID string, metric models.MetricKind, value float64, ts time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{serviceID: serviceID, metric: metric}
	series := append(s.series[k], models.MetricSample{Timestamp: ts, Value: value})
	if len(series) > s.capacity {
		series = series[len(series)-s.capacity:]
	}
	s.series[k] = series
}

// Samples returns a copy of the current ring contents in timestamp order.
func (s *Store) Samples(serviceID string, metric models.MetricKind) []models.MetricSample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k := key{serviceID: serviceID, metric: metric}
	series := s.series[k]
	out := make([]models.MetricSample, len(series))
	copy(out, series)
	return out
}

// Trend classifies the recent movement of a (service, metric) series.
//
// With fewer than 3 samples the series is too short to say anything, so it
// is reported stable. Otherwise the last min(5, n) samples form the
// window: the mean of its final 3 entries ("recent") is compared against
// the mean of the remaining entries ("older") — or, when the window is
// exactly 3 samples long, against just its first entry. A recent value
// more than 1.1x the older one is increasing; less than 0.9x is
// decreasing; anything between is stable.
func (s *Store) Trend(serviceID string, metric models.MetricKind) Trend {
	series := s.Samples(serviceID, metric)
	n := len(series)
	if n < 3 {
		return TrendStable
	}

	windowSize := n
	if windowSize > 5 {
		windowSize = 5
	}
	window := series[n-windowSize:]
	if len(window) < 3 {
		return TrendStable
	}

	recent := mean(window[len(window)-3:])

	var older float64
	if len(window) > 3 {
		older = mean(window[:len(window)-3])
	} else {
		older = window[0].Value
	}

	switch {
	case recent > 1.1*older:
		return TrendIncreasing
	case recent < 0.9*older:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func mean(samples []models.MetricSample) float64 {
	if len(samples) == 0 {
		return 0
	}
	var total float64
	for _, s := range samples {
		total += s.Value
	}
	return total / float64(len(samples))
}
