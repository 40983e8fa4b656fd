// cmd/preflight validates settings and the endpoints file without probing.
package main

import (
	"fmt"
	"os"

	"github.com/hamed0406/endpointmonitor/internal/config"
	"github.com/hamed0406/endpointmonitor/internal/domain"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	if len(os.Args) != 2 {
		fail("usage: preflight <config_path>")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fail("MONITOR_* settings invalid: " + err.Error())
	}
	ok(fmt.Sprintf("interval=%s request_timeout=%s slow_threshold=%s concurrency=%d",
		cfg.Interval, cfg.RequestTimeout, cfg.SlowThreshold, cfg.Concurrency))

	if cfg.RequestTimeout >= cfg.Interval {
		warn("MONITOR_REQUEST_TIMEOUT is not shorter than MONITOR_INTERVAL; slow cycles will run back to back.")
	}
	if cfg.SlowThreshold >= cfg.RequestTimeout {
		warn("MONITOR_SLOW_THRESHOLD >= MONITOR_REQUEST_TIMEOUT; slow responses will surface as timeouts.")
	}
	if !cfg.VerifyTLS {
		warn("MONITOR_VERIFY_TLS=false; certificate problems will not mark endpoints DOWN.")
	}
	if cfg.MetricsAddr == "" {
		ok("status server disabled")
	} else {
		ok("MONITOR_METRICS_ADDR=" + cfg.MetricsAddr)
	}

	eps, err := config.LoadEndpoints(os.Args[1])
	if err != nil {
		fail(err.Error())
	}
	if len(eps) == 0 {
		warn("no endpoints configured; the monitor will exit without probing.")
	}
	domains := map[string]int{}
	for _, ep := range eps {
		domains[domain.DomainOf(ep.URL)]++
	}
	ok(fmt.Sprintf("%d endpoints across %d domains", len(eps), len(domains)))

	ok("preflight passed")
}
