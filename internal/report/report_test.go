package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLine_Format(t *testing.T) {
	if got := Line("example.com:8443", 67); got != "example.com:8443 has 67% availability percentage" {
		t.Fatalf("unexpected line: %q", got)
	}
}

func TestLineReporter_OneLinePerDomain(t *testing.T) {
	var buf bytes.Buffer
	r := NewLineReporter(&buf, nil)
	r.Emit(map[string]int{"b.example.com": 0, "a.example.com": 100, "c.example.com:81": 67})

	want := "a.example.com has 100% availability percentage\n" +
		"b.example.com has 0% availability percentage\n" +
		"c.example.com:81 has 67% availability percentage\n"
	if buf.String() != want {
		t.Fatalf("report mismatch:\n got: %q\nwant: %q", buf.String(), want)
	}
}

func TestLineReporter_EmptySnapshotWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	NewLineReporter(&buf, nil).Emit(map[string]int{})
	if buf.Len() != 0 {
		t.Fatalf("want no output, got %q", buf.String())
	}
}

type countingWriter struct {
	writes int
	err    error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.writes++
	if c.err != nil {
		return 0, c.err
	}
	return len(p), nil
}

func TestLineReporter_SingleWritePerSnapshot(t *testing.T) {
	w := &countingWriter{}
	NewLineReporter(w, nil).Emit(map[string]int{"a": 1, "b": 2, "c": 3})
	if w.writes != 1 {
		t.Fatalf("want 1 write, got %d", w.writes)
	}
}

func TestLineReporter_WriteErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	w := &countingWriter{err: errors.New("broken pipe")}
	NewLineReporter(w, zap.New(core)).Emit(map[string]int{"a": 1})

	entries := logs.FilterMessage("report_write_error").All()
	if len(entries) != 1 {
		t.Fatalf("want one report_write_error log, got %d", len(entries))
	}
}

func TestMulti_FansOutAndSkipsNil(t *testing.T) {
	var a, b bytes.Buffer
	var seen map[string]int
	m := Multi{NewLineReporter(&a, nil), nil, Func(func(s map[string]int) { seen = s }), NewLineReporter(&b, nil)}
	m.Emit(map[string]int{"x": 50})

	if a.String() != b.String() || !strings.Contains(a.String(), "x has 50%") {
		t.Fatalf("fan-out mismatch: %q vs %q", a.String(), b.String())
	}
	if seen["x"] != 50 {
		t.Fatalf("func reporter not called: %v", seen)
	}
}
