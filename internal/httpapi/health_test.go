package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ridgeline-systems/autoscaler/internal/loop"
	"github.com/ridgeline-systems/autoscaler/pkg/models"
)

func TestHealthServer_ReportsControllerState(t *testing.T) {
	state := func() StateSnapshot {
		return StateSnapshot{
			ServicesMonitored: 3,
			ScalingAlgorithm:  models.ScalingAlgorithmLinear,
			DockerAvailable:   true,
			MetricsPort:       8090,
		}
	}
	router := NewHealthServer(state, loop.NewActivityFeed(10))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"services_monitored":3`)
	assert.Contains(t, rec.Body.String(), `"scaling_algorithm":"linear"`)
}

func TestHealthServer_ActivityEndpointReturnsRecentEvents(t *testing.T) {
	activity := loop.NewActivityFeed(10)
	activity.Record(models.NewActivityEvent(models.EventTypeDecisionMade, "app", "scale_up: cpu high"))

	router := NewHealthServer(func() StateSnapshot { return StateSnapshot{} }, activity)

	req := httptest.NewRequest(http.MethodGet, "/health/activity", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "scale_up: cpu high")
}

func TestHealthServer_UnknownPathIs404(t *testing.T) {
	router := NewHealthServer(func() StateSnapshot { return StateSnapshot{} }, loop.NewActivityFeed(10))

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
