package httpapi

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ridgeline-systems/autoscaler/internal/logger"
)

const (
	bindRetryInitialDelay = 2 * time.Second
	bindRetryMaxAttempts  = 5
)

// bindWithRetry attempts to bind server.Addr with exponential backoff
// (2s, 4s, 8s, 16s, ...) up to bindRetryMaxAttempts before giving up. On
// success it starts serving the listener in a background goroutine and
// returns immediately; logging any later Serve error (including the
// expected one on Shutdown) rather than propagating it, since this surface
// is best-effort and must never block startup.
func bindWithRetry(server *http.Server) error {
	delay := bindRetryInitialDelay
	var lastErr error

	for attempt := 1; attempt <= bindRetryMaxAttempts; attempt++ {
		listener, err := net.Listen("tcp", server.Addr)
		if err == nil {
			go func() {
				if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
					logger.Errorf("http server on %s stopped: %v", server.Addr, serveErr)
				}
			}()
			return nil
		}

		lastErr = err
		logger.Warnf("bind attempt %d/%d on %s failed: %v", attempt, bindRetryMaxAttempts, server.Addr, err)

		if attempt < bindRetryMaxAttempts {
			time.Sleep(delay)
			delay *= 2
		}
	}

	return lastErr
}
