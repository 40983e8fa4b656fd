package config

import (
	"math"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if cfg.Interval != 15*time.Second || cfg.RequestTimeout != 5*time.Second || cfg.SlowThreshold != 500*time.Millisecond {
		t.Fatalf("unexpected durations: interval=%v timeout=%v slow=%v", cfg.Interval, cfg.RequestTimeout, cfg.SlowThreshold)
	}
	if cfg.Concurrency != 1 || cfg.Jitter != 0 {
		t.Fatalf("unexpected scheduling defaults: concurrency=%d jitter=%v", cfg.Concurrency, cfg.Jitter)
	}
	if cfg.LogDir != "logs" || cfg.LogLevel != LogLevelInfo {
		t.Fatalf("unexpected log defaults: dir=%q level=%q", cfg.LogDir, cfg.LogLevel)
	}
	if cfg.MetricsAddr != "" {
		t.Fatalf("status server must be off by default, got %q", cfg.MetricsAddr)
	}
	if cfg.DiagnoseDNS || !cfg.VerifyTLS || !cfg.FollowRedirects {
		t.Fatalf("unexpected flags: dns=%v tls=%v redirects=%v", cfg.DiagnoseDNS, cfg.VerifyTLS, cfg.FollowRedirects)
	}
}

func TestFromEnv_ParsesOverrides(t *testing.T) {
	t.Setenv("MONITOR_INTERVAL", "2s")
	t.Setenv("MONITOR_JITTER", "0.25")
	t.Setenv("MONITOR_REQUEST_TIMEOUT", "1500ms")
	t.Setenv("MONITOR_SLOW_THRESHOLD", "250ms")
	t.Setenv("MONITOR_CONCURRENCY", "8")
	t.Setenv("MONITOR_LOG_DIR", "./_testlogs")
	t.Setenv("MONITOR_LOG_LEVEL", "DEBUG")
	t.Setenv("MONITOR_METRICS_ADDR", "127.0.0.1:9100")
	t.Setenv("MONITOR_DIAGNOSE_DNS", "true")
	t.Setenv("MONITOR_VERIFY_TLS", "false")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if cfg.Interval != 2*time.Second || cfg.RequestTimeout != 1500*time.Millisecond || cfg.SlowThreshold != 250*time.Millisecond {
		t.Fatalf("unexpected durations: interval=%v timeout=%v slow=%v", cfg.Interval, cfg.RequestTimeout, cfg.SlowThreshold)
	}
	if math.Abs(cfg.Jitter-0.25) > 1e-9 {
		t.Fatalf("jitter = %v", cfg.Jitter)
	}
	if cfg.Concurrency != 8 {
		t.Fatalf("concurrency = %d", cfg.Concurrency)
	}
	if cfg.LogDir != "./_testlogs" || cfg.LogLevel != LogLevelDebug {
		t.Fatalf("unexpected log settings: dir=%q level=%q", cfg.LogDir, cfg.LogLevel)
	}
	if cfg.MetricsAddr != "127.0.0.1:9100" {
		t.Fatalf("metrics addr = %q", cfg.MetricsAddr)
	}
	if !cfg.DiagnoseDNS || cfg.VerifyTLS {
		t.Fatalf("unexpected flags: dns=%v tls=%v", cfg.DiagnoseDNS, cfg.VerifyTLS)
	}
}

func TestFromEnv_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"MONITOR_CONCURRENCY":  "0",
		"MONITOR_LOG_LEVEL":    "verbose",
		"MONITOR_METRICS_ADDR": "no-port",
		"MONITOR_JITTER":       "1.5",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := FromEnv(); err == nil {
				t.Fatalf("%s=%q: expected error", key, val)
			}
		})
	}
}
