package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/endpointmonitor/internal/config"
	"github.com/hamed0406/endpointmonitor/internal/httpapi"
	"github.com/hamed0406/endpointmonitor/internal/ledger"
	"github.com/hamed0406/endpointmonitor/internal/logging"
	"github.com/hamed0406/endpointmonitor/internal/probe"
	"github.com/hamed0406/endpointmonitor/internal/report"
	"github.com/hamed0406/endpointmonitor/internal/scheduler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run wires the monitor and blocks until ctx is cancelled. It returns the
// process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Usage: monitor <config_path>")
		return 1
	}
	path := args[0]

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(stderr, "invalid settings:", err)
		return 1
	}
	endpoints, err := config.LoadEndpoints(path)
	if err != nil {
		fmt.Fprintln(stderr, "load endpoints:", err)
		return 1
	}

	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(stderr, "init logger:", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if len(endpoints) == 0 {
		logger.Warn("monitor_no_endpoints", zap.String("config", path))
		fmt.Fprintf(stderr, "no endpoints configured in %s, nothing to monitor\n", path)
		return 0
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := scheduler.NewMetrics(reg)

	led := ledger.New()
	checker := probe.NewHTTPChecker(probe.Options{
		Timeout:         cfg.RequestTimeout,
		SlowThreshold:   cfg.SlowThreshold,
		UserAgent:       cfg.UserAgent,
		VerifyTLS:       cfg.VerifyTLS,
		FollowRedirects: cfg.FollowRedirects,
	})
	reporter := report.Multi{report.NewLineReporter(stdout, logger), metrics.Reporter()}

	mon := scheduler.NewMonitor(logger, endpoints, checker, led, reporter, scheduler.Options{
		Interval:    cfg.Interval,
		Jitter:      cfg.Jitter,
		Concurrency: cfg.Concurrency,
		DiagnoseDNS: cfg.DiagnoseDNS,
		Metrics:     metrics,
	})

	var hs *http.Server
	if cfg.MetricsAddr != "" {
		health := func(context.Context) error {
			if s := mon.State(); s != scheduler.StateCycling {
				return fmt.Errorf("monitor %s", s)
			}
			return nil
		}
		hs = httpapi.NewServer(logger, led, reg, health).Start(cfg.MetricsAddr)
	}

	logger.Info("monitor_starting",
		zap.String("config", path),
		zap.Int("endpoints", len(endpoints)),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.Duration("slow_threshold", cfg.SlowThreshold),
		zap.String("metrics_addr", cfg.MetricsAddr),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- mon.Run(ctx) }()

	var runErr error
	select {
	case <-ctx.Done():
		// probes observe ctx, so the worker winds down quickly
		select {
		case runErr = <-errCh:
		case <-time.After(cfg.RequestTimeout + time.Second):
			logger.Warn("monitor_stop_timeout")
		}
	case runErr = <-errCh:
	}

	code := 0
	switch {
	case ctx.Err() != nil:
		fmt.Fprintln(stderr, "Stopping endpoint monitor.")
		logger.Info("monitor_interrupted")
	case runErr != nil && !errors.Is(runErr, context.Canceled):
		logger.Error("monitor_error", zap.Error(runErr))
		fmt.Fprintln(stderr, "monitor:", runErr)
		code = 1
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var shutdownErr error
	if hs != nil {
		shutdownErr = multierr.Append(shutdownErr, hs.Shutdown(shCtx))
	}
	shutdownErr = multierr.Append(shutdownErr, logger.Sync())
	if shutdownErr != nil {
		fmt.Fprintln(stderr, "shutdown:", shutdownErr)
	}
	return code
}
