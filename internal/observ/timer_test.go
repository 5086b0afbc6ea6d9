package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	clock := time.Unix(0, 0)
	tm := NewTimer()
	tm.SetClock(func() time.Time { return clock })

	tm.Measure("include", func() string {
		clock = clock.Add(2 * time.Millisecond)
		return "3 files"
	})
	idx := tm.Begin("sema")
	clock = clock.Add(500 * time.Microsecond)
	tm.End(idx, "")
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(r.Phases))
	}
	if r.Phases[0].DurationMS != 2 || r.Phases[0].Note != "3 files" {
		t.Fatalf("unexpected first phase %+v", r.Phases[0])
	}
	if r.TotalMS != 2.5 {
		t.Fatalf("expected total 2.5ms, got %v", r.TotalMS)
	}
	s := r.Summary()
	if !strings.Contains(s, "include") || !strings.Contains(s, "// 3 files") || !strings.Contains(s, "total") {
		t.Fatalf("summary misses entries:\n%s", s)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Measure("x", func() string { return "" })
	if len(tm.Report().Phases) != 0 {
		t.Fatalf("nil timer must record nothing")
	}
}
