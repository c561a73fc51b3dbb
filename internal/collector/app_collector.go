package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"

	"github.com/ridgeline-systems/autoscaler/internal/logger"
	"github.com/ridgeline-systems/autoscaler/pkg/models"
)

// AppCollector gathers the application tier's metrics from two sources: a
// wall-clock-timed call to the tier's health endpoint (response time,
// health status) and the container runtime's per-container stats for every
// container carrying the tier's Swarm service label (CPU/memory percent,
// averaged across containers).
type AppCollector struct {
	httpClient   *http.Client
	dockerClient *client.Client
	healthURL    string
	serviceLabel string
	timeout      time.Duration
}

type AppCollectorConfig struct {
	HealthURL    string
	ServiceLabel string
	DockerClient *client.Client
	Timeout      time.Duration
}

func NewAppCollector(cfg AppCollectorConfig) *AppCollector {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &AppCollector{
		httpClient:   &http.Client{Timeout: timeout},
		dockerClient: cfg.DockerClient,
		healthURL:    cfg.HealthURL,
		serviceLabel: cfg.ServiceLabel,
		timeout:      timeout,
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

func (c *AppCollector) Collect(ctx context.Context, service models.ServiceDescriptor) (*models.MetricSnapshot, error) {
	snapshot := &models.MetricSnapshot{
		ServiceID: service.ServiceID,
		Timestamp: time.Now(),
	}

	c.collectHealth(ctx, snapshot)
	c.collectContainerStats(ctx, snapshot)

	return snapshot, nil
}

// collectHealth times the round trip to the health endpoint and records it
// as the response-time sample. A failed call leaves ResponseTimeMS and
// Healthy at their zero values rather than failing the whole collection; a
// non-200 response still records ResponseTimeMS but leaves Healthy false.
func (c *AppCollector) collectHealth(ctx context.Context, snapshot *models.MetricSnapshot) {
	if c.healthURL == "" {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		logger.WithService(snapshot.ServiceID).Warnf("building health request: %v", err)
		return
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		logger.WithService(snapshot.ServiceID).Warnf("health check failed: %v", err)
		return
	}
	defer resp.Body.Close()

	snapshot.ResponseTimeMS = float64(elapsed.Milliseconds())

	if resp.StatusCode != http.StatusOK {
		return
	}

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return
	}
	snapshot.Healthy = health.Status == "healthy"
}

// collectContainerStats averages CPU and memory percent across every
// running container labeled with the application tier's Swarm service name.
// A container observed for the first time reports precpu_stats zeroed by
// the daemon, so system_delta is 0 and that container contributes 0 for
// this tick rather than being excluded from the average.
func (c *AppCollector) collectContainerStats(ctx context.Context, snapshot *models.MetricSnapshot) {
	if c.dockerClient == nil || c.serviceLabel == "" {
		return
	}

	filterArgs := filters.NewArgs()
	filterArgs.Add("label", fmt.Sprintf("com.docker.swarm.service.name=%s", c.serviceLabel))

	containers, err := c.dockerClient.ContainerList(ctx, container.ListOptions{Filters: filterArgs})
	if err != nil {
		logger.WithService(snapshot.ServiceID).Warnf("listing containers: %v", err)
		return
	}
	if len(containers) == 0 {
		return
	}

	var cpuTotal, memTotal float64
	var counted int

	for _, ctr := range containers {
		cpuPct, memPct, ok := c.statsForContainer(ctx, ctr.ID)
		if !ok {
			continue
		}
		cpuTotal += cpuPct
		memTotal += memPct
		counted++
	}

	if counted == 0 {
		return
	}

	snapshot.CPUUsagePercent = cpuTotal / float64(counted)
	snapshot.MemoryUsagePercent = memTotal / float64(counted)
}

func (c *AppCollector) statsForContainer(ctx context.Context, containerID string) (cpuPercent, memPercent float64, ok bool) {
	statsCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.dockerClient.ContainerStats(statsCtx, containerID, false)
	if err != nil {
		return 0, 0, false
	}
	defer resp.Body.Close()

	var stats map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return 0, 0, false
	}

	cpuPercent = cpuPercentFromStats(stats)
	memPercent = memPercentFromStats(stats)
	return cpuPercent, memPercent, true
}

func cpuPercentFromStats(stats map[string]interface{}) float64 {
	cpuStats, ok := stats["cpu_stats"].(map[string]interface{})
	if !ok {
		return 0
	}
	preCPUStats, ok := stats["precpu_stats"].(map[string]interface{})
	if !ok {
		return 0
	}
	cpuUsage, ok := cpuStats["cpu_usage"].(map[string]interface{})
	if !ok {
		return 0
	}
	preCPUUsage, ok := preCPUStats["cpu_usage"].(map[string]interface{})
	if !ok {
		return 0
	}

	totalUsage, _ := cpuUsage["total_usage"].(float64)
	preTotalUsage, _ := preCPUUsage["total_usage"].(float64)
	systemUsage, _ := cpuStats["system_cpu_usage"].(float64)
	preSystemUsage, _ := preCPUStats["system_cpu_usage"].(float64)

	cpuDelta := totalUsage - preTotalUsage
	systemDelta := systemUsage - preSystemUsage

	if systemDelta <= 0 {
		return 0
	}
	return (cpuDelta / systemDelta) * 100
}

func memPercentFromStats(stats map[string]interface{}) float64 {
	memStats, ok := stats["memory_stats"].(map[string]interface{})
	if !ok {
		return 0
	}
	usage, _ := memStats["usage"].(float64)
	limit, _ := memStats["limit"].(float64)
	if limit <= 0 {
		return 0
	}
	return (usage / limit) * 100
}

func (c *AppCollector) HealthCheck(ctx context.Context) error {
	if c.dockerClient == nil {
		return nil
	}
	_, err := c.dockerClient.Ping(ctx)
	if err != nil {
		return fmt.Errorf("%w: docker ping: %v", ErrServiceUnavailable, err)
	}
	return nil
}

func (c *AppCollector) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
