package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMetricsServer builds the gin router mounting the real Prometheus
// exposition handler at /metrics, replacing the lineage's hand-rolled
// text writer.
func NewMetricsServer() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

// Serve starts the given handler on addr, retrying the bind with
// exponential backoff (2s initial, doubling, up to 5 attempts) before
// giving up. A listener failure here never blocks the control loop —
// the caller logs and continues without the surface.
func Serve(addr string, handler http.Handler) (*http.Server, error) {
	server := newServer(addr, handler)
	return server, bindWithRetry(server)
}
