package scheduler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hamed0406/endpointmonitor/internal/probe"
	"github.com/hamed0406/endpointmonitor/internal/report"
)

// Metrics groups the monitor's Prometheus collectors. A nil *Metrics is a
// valid no-op.
type Metrics struct {
	probes       *prometheus.CounterVec
	probeLatency *prometheus.HistogramVec
	cycles       prometheus.Counter
	cycleDur     prometheus.Histogram
	availability *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		probes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "monitor_probes_total", Help: "Probes executed, by domain, status and cause",
		}, []string{"domain", "status", "cause"}),
		probeLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "monitor_probe_latency_seconds",
			Help:    "Probe latency from dispatch to full response",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"domain"}),
		cycles: f.NewCounter(prometheus.CounterOpts{
			Name: "monitor_cycles_total", Help: "Completed monitoring cycles",
		}),
		cycleDur: f.NewHistogram(prometheus.HistogramOpts{
			Name: "monitor_cycle_duration_seconds", Help: "Duration of one full pass over all endpoints",
			Buckets: prometheus.DefBuckets,
		}),
		availability: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "monitor_domain_availability_percent", Help: "Lifetime availability per domain",
		}, []string{"domain"}),
	}
}

func (m *Metrics) observeProbe(domain string, res probe.CheckResult) {
	if m == nil {
		return
	}
	m.probes.WithLabelValues(domain, string(res.Status), string(res.Cause)).Inc()
	m.probeLatency.WithLabelValues(domain).Observe(res.Latency.Seconds())
}

func (m *Metrics) observeCycle(d time.Duration) {
	if m == nil {
		return
	}
	m.cycles.Inc()
	m.cycleDur.Observe(d.Seconds())
}

// Reporter exposes every emitted snapshot as availability gauges.
func (m *Metrics) Reporter() report.Reporter {
	return report.Func(func(snapshot map[string]int) {
		if m == nil {
			return
		}
		for d, pct := range snapshot {
			m.availability.WithLabelValues(d).Set(float64(pct))
		}
	})
}
