// Package ledger keeps per-domain availability counters for the lifetime of
// the process.
package ledger

import (
	"sort"
	"sync"

	"github.com/hamed0406/endpointmonitor/internal/domain"
)

type record struct {
	up    int
	total int
}

// Ledger is safe for concurrent use. Every Record is applied atomically.
type Ledger struct {
	mu      sync.RWMutex
	records map[string]*record
}

func New() *Ledger {
	return &Ledger{records: make(map[string]*record)}
}

// Record counts one probe outcome for d. The record is created on first use.
func (l *Ledger) Record(d string, status domain.Status) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r := l.records[d]
	if r == nil {
		r = &record{}
		l.records[d] = r
	}
	r.total++
	if status == domain.StatusUp {
		r.up++
	}
}

// Snapshot returns the current availability percentage of every recorded
// domain. The map is freshly built and owned by the caller.
func (l *Ledger) Snapshot() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]int, len(l.records))
	for d, r := range l.records {
		out[d] = Percent(r.up, r.total)
	}
	return out
}

// Counts reports the raw counters for d; ok is false if d was never recorded.
func (l *Ledger) Counts(d string) (up, total int, ok bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, ok := l.records[d]
	if !ok {
		return 0, 0, false
	}
	return r.up, r.total, true
}

// Domains lists recorded domains in lexical order.
func (l *Ledger) Domains() []string {
	l.mu.RLock()
	out := make([]string, 0, len(l.records))
	for d := range l.records {
		out = append(out, d)
	}
	l.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Percent is round(100*up/total) with ties going to the even integer, or 0
// when total is 0. It works on integers so no float error creeps in.
func Percent(up, total int) int {
	if total <= 0 {
		return 0
	}
	num := 100 * up
	q, rem := num/total, num%total
	switch {
	case 2*rem > total:
		q++
	case 2*rem == total && q%2 == 1:
		q++
	}
	return q
}
