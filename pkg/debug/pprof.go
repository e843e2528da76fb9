// Package debug provides instrumentation and profiling tools for cpuusage.
package debug

import (
	"context"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// StartPprofServer starts a pprof HTTP server at the given address.
// Returns a stop function to gracefully shut down the server.
func StartPprofServer(addr string, logger *logrus.Logger) (func(), error) {
	if addr == "" {
		addr = ":6060"
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", addr).Info("pprof server starting")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Give the server a moment to start and check for immediate errors
	select {
	case err := <-errCh:
		return nil, errors.Wrap(err, "pprof server failed")
	case <-time.After(50 * time.Millisecond):
	}

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.WithError(err).Warn("pprof server shutdown")
		}
	}

	return stop, nil
}
