package scheduler

import (
	"context"
	"sync"

	"github.com/hamed0406/endpointmonitor/internal/domain"
	"github.com/hamed0406/endpointmonitor/internal/ledger"
	"github.com/hamed0406/endpointmonitor/internal/probe"
)

// panickyLedger wraps a real ledger and panics when one domain is recorded.
type panickyLedger struct {
	*ledger.Ledger
	panicOn string
}

func (p *panickyLedger) Record(d string, status domain.Status) {
	if d == p.panicOn {
		panic("ledger blew up")
	}
	p.Ledger.Record(d, status)
}

// scriptedChecker answers per URL and counts calls.
type scriptedChecker struct {
	mu      sync.Mutex
	results map[string]probe.CheckResult
	calls   []string
}

func (s *scriptedChecker) Check(_ context.Context, ep domain.Endpoint) probe.CheckResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, ep.URL)
	if r, ok := s.results[ep.URL]; ok {
		return r
	}
	return probe.CheckResult{Status: domain.StatusUp, Cause: domain.CauseOK, StatusCode: 200}
}

func (s *scriptedChecker) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

type panicChecker struct {
	inner   probe.Checker
	panicOn string
}

func (p *panicChecker) Check(ctx context.Context, ep domain.Endpoint) probe.CheckResult {
	if ep.URL == p.panicOn {
		panic("checker blew up")
	}
	return p.inner.Check(ctx, ep)
}

// blockingChecker waits for ctx to be cancelled, like a hung request.
type blockingChecker struct {
	started chan struct{}
	once    sync.Once
}

func (b *blockingChecker) Check(ctx context.Context, ep domain.Endpoint) probe.CheckResult {
	b.once.Do(func() { close(b.started) })
	<-ctx.Done()
	return probe.CheckResult{Status: domain.StatusDown, Cause: domain.CauseCanceled, Message: ctx.Err().Error()}
}

// recordingReporter keeps every emitted snapshot.
type recordingReporter struct {
	mu    sync.Mutex
	snaps []map[string]int
	ch    chan map[string]int
}

func newRecordingReporter() *recordingReporter {
	return &recordingReporter{ch: make(chan map[string]int, 16)}
}

func (r *recordingReporter) Emit(s map[string]int) {
	r.mu.Lock()
	r.snaps = append(r.snaps, s)
	r.mu.Unlock()
	r.ch <- s
}

func (r *recordingReporter) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}
