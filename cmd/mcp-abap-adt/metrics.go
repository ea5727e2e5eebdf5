package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vibingsteamer/mcp-abap-adt/pkg/whereused"
)

// metricsRegistry bundles the process registry with the where-used collectors.
type metricsRegistry struct {
	registry  *prometheus.Registry
	whereUsed *whereused.Metrics
}

func newMetricsRegistry() (*metricsRegistry, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := whereused.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("registering where-used metrics: %w", err)
	}
	return &metricsRegistry{registry: reg, whereUsed: m}, nil
}

func (r *metricsRegistry) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry}))
	return mux
}

// listenMetrics binds the /metrics address up front so a bad --metrics-addr
// fails at startup instead of after the stdio session.
func listenMetrics(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener on %s: %w", addr, err)
	}
	return ln, nil
}

// serveMetrics serves /metrics on ln until ctx is done.
func serveMetrics(ctx context.Context, ln net.Listener, r *metricsRegistry, logger *zap.Logger) error {
	addr := ln.Addr().String()
	srv := &http.Server{
		Handler:           r.handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("stopping metrics listener: %w", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		// stdio keeps running, so report the failure now
		logger.Error("metrics listener failed", zap.String("addr", addr), zap.Error(err))
		return fmt.Errorf("metrics listener on %s: %w", addr, err)
	}
}
