package report

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Reporter renders one availability snapshot (domain -> percent).
type Reporter interface {
	Emit(snapshot map[string]int)
}

// Line formats a single report line without the trailing newline.
func Line(domain string, percent int) string {
	return fmt.Sprintf("%s has %d%% availability percentage", domain, percent)
}

// LineReporter writes one line per domain to W. A whole snapshot goes out in
// a single Write so concurrent readers of W never see half a report.
type LineReporter struct {
	W      io.Writer
	Logger *zap.Logger

	mu sync.Mutex
}

func NewLineReporter(w io.Writer, logger *zap.Logger) *LineReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LineReporter{W: w, Logger: logger}
}

func (r *LineReporter) Emit(snapshot map[string]int) {
	if len(snapshot) == 0 {
		return
	}
	domains := make([]string, 0, len(snapshot))
	for d := range snapshot {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	var buf bytes.Buffer
	for _, d := range domains {
		buf.WriteString(Line(d, snapshot[d]))
		buf.WriteByte('\n')
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.W.Write(buf.Bytes()); err != nil {
		r.Logger.Warn("report_write_error", zap.Int("domains", len(domains)), zap.Error(err))
	}
}

// Multi fans a snapshot out to every non-nil reporter in order.
type Multi []Reporter

func (m Multi) Emit(snapshot map[string]int) {
	for _, r := range m {
		if r == nil {
			continue
		}
		r.Emit(snapshot)
	}
}

// Func adapts a plain function to Reporter.
type Func func(map[string]int)

func (f Func) Emit(snapshot map[string]int) { f(snapshot) }
