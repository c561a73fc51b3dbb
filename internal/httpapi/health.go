// Package httpapi hosts the two thin HTTP surfaces the control loop
// exposes: a health endpoint reporting controller state, and a Prometheus
// exposition endpoint. Both are best-effort — their servers retry binding
// with backoff but never block the control loop from starting.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ridgeline-systems/autoscaler/api/middleware"
	"github.com/ridgeline-systems/autoscaler/internal/loop"
	"github.com/ridgeline-systems/autoscaler/pkg/models"
)

// StateSnapshot is the controller state the health handler reads on every
// request. It is produced fresh by the caller (never mutated by the HTTP
// server), matching the "read through an atomic snapshot" rule for the
// two surfaces' access to control-loop state.
type StateSnapshot struct {
	ServicesMonitored int
	ScalingAlgorithm  models.ScalingAlgorithm
	DockerAvailable   bool
	MetricsPort       int
}

type StateProvider func() StateSnapshot

type healthResponse struct {
	Status            string    `json:"status"`
	Timestamp         time.Time `json:"timestamp"`
	ServicesMonitored int       `json:"services_monitored"`
	ScalingAlgorithm  string    `json:"scaling_algorithm"`
	DockerAvailable   bool      `json:"docker_available"`
	MetricsPort       int       `json:"metrics_port"`
}

// NewHealthServer builds the gin router for the health surface: GET
// /health reports controller state, GET /health/activity exposes the
// in-process recent-events ring. Any other path is gin's default 404.
func NewHealthServer(state StateProvider, activity *loop.ActivityFeed) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.TraceID())

	router.GET("/health", func(c *gin.Context) {
		snapshot := state()
		c.JSON(http.StatusOK, healthResponse{
			Status:            "healthy",
			Timestamp:         time.Now(),
			ServicesMonitored: snapshot.ServicesMonitored,
			ScalingAlgorithm:  string(snapshot.ScalingAlgorithm),
			DockerAvailable:   snapshot.DockerAvailable,
			MetricsPort:       snapshot.MetricsPort,
		})
	})

	router.GET("/health/activity", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"events": activity.Recent()})
	})

	return router
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Shutdown drains the given server within ctx's deadline.
func Shutdown(ctx context.Context, server *http.Server) error {
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}
