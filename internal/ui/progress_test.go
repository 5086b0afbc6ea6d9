package ui

import (
	"strings"
	"testing"
	"time"

	"flume/internal/driver"
)

func TestProgressModelTracksPhases(t *testing.T) {
	events := make(chan driver.PhaseEvent)
	m := NewProgressModel("check", []string{"include", "parse", "sema", "lint"}, events).(*phaseModel)

	m.Update(eventMsg{Name: "include", Status: driver.PhaseStart})
	if m.items[0].status != "running" {
		t.Fatalf("include status = %q", m.items[0].status)
	}
	m.Update(eventMsg{Name: "include", Status: driver.PhaseEnd, Elapsed: 2 * time.Millisecond})
	m.Update(eventMsg{Name: "parse", Status: driver.PhaseStart})
	m.Update(eventMsg{Name: "parse", Status: driver.PhaseEnd, Stop: true})
	m.Update(eventMsg{Name: "unknown", Status: driver.PhaseStart})

	if got := m.fraction(); got != 0.5 {
		t.Fatalf("fraction = %v, want 0.5", got)
	}

	m.Update(doneMsg{})
	if !m.done {
		t.Fatalf("model must finish on channel close")
	}
	want := []string{"done", "error", "skipped", "skipped"}
	for i, item := range m.items {
		if item.status != want[i] {
			t.Fatalf("%s status = %q, want %q", item.name, item.status, want[i])
		}
	}
	view := m.View()
	for _, s := range []string{"done: check", "include", "2.00 ms", "skipped"} {
		if !strings.Contains(view, s) {
			t.Fatalf("view misses %q:\n%s", s, view)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"sema", 10, "sema"},
		{"statements", 8, "state..."},
		{"statements", 3, "sta"},
		{"статьи", 0, "статьи"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
