package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/endpointmonitor/internal/domain"
	"github.com/hamed0406/endpointmonitor/internal/ledger"
	"github.com/hamed0406/endpointmonitor/internal/probe"
	"github.com/hamed0406/endpointmonitor/internal/report"
)

const DefaultInterval = 15 * time.Second

var (
	ErrAlreadyStarted = errors.New("monitor already started")
	ErrNoEndpoints    = errors.New("no endpoints to monitor")
)

type State int32

const (
	StateIdle State = iota
	StateCycling
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCycling:
		return "cycling"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Ledger is where the aggregation step records outcomes. *ledger.Ledger
// implements it.
type Ledger interface {
	Record(d string, status domain.Status)
	Snapshot() map[string]int
}

type Options struct {
	Interval    time.Duration
	Jitter      float64 // extra random delay, as a fraction of Interval
	Concurrency int     // probes in flight per cycle; 1 probes sequentially
	DiagnoseDNS bool
	Clock       clockwork.Clock // real clock when nil
	Metrics     *Metrics
}

// Monitor probes a fixed endpoint list in cycles. After each full pass it
// records every outcome in the ledger, emits a snapshot and sleeps.
type Monitor struct {
	Logger    *zap.Logger
	Endpoints []domain.Endpoint
	Checker   probe.Checker
	Ledger    Ledger
	Reporter  report.Reporter

	Interval    time.Duration
	Jitter      float64
	Concurrency int
	DiagnoseDNS bool

	clock   clockwork.Clock
	metrics *Metrics
	rand    func() float64
	state   atomic.Int32
}

func NewMonitor(
	logger *zap.Logger,
	endpoints []domain.Endpoint,
	checker probe.Checker,
	l Ledger,
	reporter report.Reporter,
	opts Options,
) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Jitter < 0 {
		opts.Jitter = 0
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if l == nil {
		l = ledger.New()
	}
	return &Monitor{
		Logger:      logger,
		Endpoints:   endpoints,
		Checker:     checker,
		Ledger:      l,
		Reporter:    reporter,
		Interval:    opts.Interval,
		Jitter:      opts.Jitter,
		Concurrency: opts.Concurrency,
		DiagnoseDNS: opts.DiagnoseDNS,
		clock:       opts.Clock,
		metrics:     opts.Metrics,
		rand:        rand.Float64,
	}
}

func (m *Monitor) State() State { return State(m.state.Load()) }

// Run cycles until ctx is cancelled and then returns ctx.Err(). It may only
// be called once per Monitor.
func (m *Monitor) Run(ctx context.Context) error {
	if len(m.Endpoints) == 0 {
		return ErrNoEndpoints
	}
	if !m.state.CompareAndSwap(int32(StateIdle), int32(StateCycling)) {
		return ErrAlreadyStarted
	}
	defer m.state.Store(int32(StateStopped))

	m.Logger.Info("monitor_started",
		zap.Int("endpoints", len(m.Endpoints)),
		zap.Duration("interval", m.Interval),
		zap.Int("concurrency", m.Concurrency),
	)

	for {
		if err := m.RunOnce(ctx); err != nil {
			m.Logger.Info("monitor_stopped", zap.Error(err))
			return err
		}

		select {
		case <-ctx.Done():
			m.Logger.Info("monitor_stopped", zap.Error(ctx.Err()))
			return ctx.Err()
		case <-m.clock.After(m.nextDelay()):
		}
	}
}

// RunOnce performs one cycle. If ctx is cancelled while probes are in flight
// the whole pass is dropped: nothing is recorded and nothing is reported.
func (m *Monitor) RunOnce(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := m.clock.Now()

	outcomes := m.probeAll(ctx)
	if err := ctx.Err(); err != nil {
		m.Logger.Info("monitor_cycle_abandoned", zap.Int("endpoints", len(m.Endpoints)))
		return err
	}

	up := 0
	for i, ep := range m.Endpoints {
		m.aggregate(ep, outcomes[i])
		if outcomes[i].Up() {
			up++
		}
	}

	if m.Reporter != nil {
		m.Reporter.Emit(m.Ledger.Snapshot())
	}

	elapsed := m.clock.Now().Sub(start)
	m.metrics.observeCycle(elapsed)
	m.Logger.Info("monitor_cycle_done",
		zap.Int("endpoints", len(m.Endpoints)),
		zap.Int("up", up),
		zap.Duration("elapsed", elapsed),
	)
	return nil
}

func (m *Monitor) probeAll(ctx context.Context) []probe.CheckResult {
	outcomes := make([]probe.CheckResult, len(m.Endpoints))

	var g errgroup.Group
	g.SetLimit(m.Concurrency)
	for i, ep := range m.Endpoints {
		g.Go(func() error {
			outcomes[i] = m.probeOne(ctx, ep)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// probeOne never panics: a misbehaving checker only costs its own endpoint.
func (m *Monitor) probeOne(ctx context.Context, ep domain.Endpoint) (res probe.CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			m.Logger.Error("monitor_probe_panic",
				zap.String("name", ep.Name),
				zap.String("url", ep.URL),
				zap.Any("panic", r),
			)
			res = probe.CheckResult{
				Status:     domain.StatusDown,
				Cause:      domain.CauseNetworkError,
				ObservedAt: m.clock.Now(),
				Message:    fmt.Sprintf("probe_panic: %v", r),
			}
		}
	}()

	res = m.Checker.Check(ctx, ep)

	m.Logger.Debug("monitor_checked",
		zap.String("name", ep.Name),
		zap.String("url", ep.URL),
		zap.String("status", string(res.Status)),
		zap.String("cause", string(res.Cause)),
		zap.Int("http_status", res.StatusCode),
		zap.Duration("latency", res.Latency),
		zap.String("message", res.Message),
	)
	if m.DiagnoseDNS && res.Cause == domain.CauseNetworkError && ctx.Err() == nil {
		m.diagnose(ctx, ep)
	}
	return res
}

func (m *Monitor) diagnose(ctx context.Context, ep domain.Endpoint) {
	u, err := url.Parse(ep.URL)
	if err != nil {
		return
	}
	dns := probe.CheckDNS(ctx, u.Hostname())
	m.Logger.Info("dns_check",
		zap.String("url", ep.URL),
		zap.String("host", dns.Host),
		zap.String("class", string(dns.Class)),
		zap.Int("ips", len(dns.IPs)),
		zap.Strings("nameservers", dns.Nameservers),
		zap.String("cname", dns.CNAME),
		zap.String("resolver_error", dns.ResolverError),
	)
}

// aggregate is the only place the ledger is written.
func (m *Monitor) aggregate(ep domain.Endpoint, res probe.CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			m.Logger.Error("monitor_aggregate_panic", zap.String("url", ep.URL), zap.Any("panic", r))
		}
	}()

	key := domain.DomainOf(ep.URL)
	if key == "" {
		key = ep.URL
	}
	m.Ledger.Record(key, res.Status)
	m.metrics.observeProbe(key, res)
}

func (m *Monitor) nextDelay() time.Duration {
	if m.Jitter <= 0 {
		return m.Interval
	}
	return m.Interval + time.Duration(m.Jitter*m.rand()*float64(m.Interval))
}
