package observ

import (
	"strings"
	"sync"
	"testing"
)

func TestTimerConcurrent(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Measure("check", func() string { return "ok" })
		}()
	}
	wg.Wait()

	report := tm.Report()
	if len(report.Phases) != 8 {
		t.Fatalf("expected 8 phases, got %d", len(report.Phases))
	}
	if report.TotalMS < 0 || report.WallMS < 0 {
		t.Fatalf("negative durations: %+v", report)
	}
	if !strings.Contains(tm.Summary(), "// ok") {
		t.Fatalf("summary misses notes:\n%s", tm.Summary())
	}
}

func TestTimerNil(t *testing.T) {
	var tm *Timer
	idx := tm.Begin("x")
	tm.End(idx, "")
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Fatalf("nil timer reported phases")
	}
}

func TestTimerEndOutOfRange(t *testing.T) {
	tm := NewTimer()
	tm.End(3, "ignored")
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Fatalf("unexpected phases: %+v", r.Phases)
	}
}
