package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

func TestLevelGatesScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeScript, false},
		{LevelDetail, ScopeScript, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%v.ShouldEmit(%v) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestParseNames(t *testing.T) {
	if l, err := ParseLevel(" Detail "); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel(detail) = %v, %v", l, err)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("ParseLevel must reject unknown levels")
	}
	if m, err := ParseMode("both"); err != nil || m.String() != "both" {
		t.Fatalf("ParseMode(both) = %v, %v", m, err)
	}
	if _, err := ParseMode("bogus"); err == nil {
		t.Fatalf("ParseMode must reject unknown modes")
	}
	if f, err := ParseFormat("msgpack"); err != nil || f != FormatMsgpack {
		t.Fatalf("ParseFormat(msgpack) = %v, %v", f, err)
	}
}

func TestRingWrapsInOrder(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d"} {
		ring.Emit(&Event{Kind: KindPoint, Scope: ScopePass, Name: name})
	}
	snap := ring.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot len = %d", len(snap))
	}
	got := snap[0].Name + snap[1].Name + snap[2].Name
	if got != "bcd" {
		t.Fatalf("order = %q, want bcd", got)
	}
	if snap[0].Seq != 2 || snap[2].Seq != 4 {
		t.Fatalf("seq = %d..%d, want 2..4", snap[0].Seq, snap[2].Seq)
	}
	if ring.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", ring.Dropped())
	}

	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "\n"); n != 3 {
		t.Fatalf("dump lines = %d, want 3", n)
	}
}

func TestStartSpanPropagatesParent(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), ring)

	outer, ctx := StartSpan(ctx, ScopeDriver, "compile")
	if CurrentSpan(ctx) != outer.ID() {
		t.Fatalf("context must carry the open span")
	}
	inner, _ := StartSpan(ctx, ScopePass, "sema.collect")
	inner.WithExtra("script", "main.fl").End("")
	outer.End("ok")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("want 4 events, got %d", len(events))
	}
	if events[1].ParentID != events[0].SpanID {
		t.Fatalf("inner parent = %d, want %d", events[1].ParentID, events[0].SpanID)
	}
	if events[2].Extra["script"] != "main.fl" {
		t.Fatalf("extra lost: %v", events[2].Extra)
	}
	if events[3].Kind != KindSpanEnd || events[3].Detail != "ok" {
		t.Fatalf("last event = %+v", events[3])
	}
}

func TestFilteredSpanKeepsParent(t *testing.T) {
	ring := NewRingTracer(16, LevelPhase)
	ctx := WithTracer(context.Background(), ring)

	outer, ctx := StartSpan(ctx, ScopeDriver, "sema.bind")
	script, sctx := StartSpan(ctx, ScopeScript, "sema.script")
	pass, _ := StartSpan(sctx, ScopePass, "sema.build")
	pass.End("")
	script.End("")
	outer.End("")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("script span must be filtered, got %d events", len(events))
	}
	if events[1].ParentID != outer.ID() {
		t.Fatalf("pass must hang under the driver span")
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)
	Point(st, ScopePass, "include.cycle", "a.fl -> a.fl", 0)
	Point(st, ScopeNode, "ignored", "", 0)
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("want 1 line, got %q", buf.String())
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded["name"] != "include.cycle" || decoded["kind"] != "point" {
		t.Fatalf("unexpected event %v", decoded)
	}
}

func TestStreamMsgpack(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelDebug, FormatMsgpack)
	sp := Begin(st, ScopeDriver, "driver.compile", 0)
	sp.WithExtra("files", "2").End("done")
	if err := st.Flush(); err != nil {
		t.Fatal(err)
	}

	dec := msgpack.NewDecoder(&buf)
	var recs []record
	for {
		var r record
		if err := dec.Decode(&r); err != nil {
			break
		}
		recs = append(recs, r)
	}
	if len(recs) != 2 {
		t.Fatalf("decoded %d records, want 2", len(recs))
	}
	if recs[0].Kind != "begin" || recs[1].Extra["files"] != "2" || recs[1].Seq != 2 {
		t.Fatalf("records = %+v", recs)
	}
}

func TestNopFromEmptyContext(t *testing.T) {
	if enabled(FromContext(context.Background())) {
		t.Fatalf("default tracer must be disabled")
	}
	sp, ctx := StartSpan(context.Background(), ScopePass, "x")
	if sp.End("") != 0 || CurrentSpan(ctx) != 0 {
		t.Fatalf("nop span must stay inert")
	}
}

func TestNewPicksSinks(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr != Nop {
		t.Fatalf("New(off) = %v, %v", tr, err)
	}

	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf, RingSize: 8})
	if err != nil {
		t.Fatalf("New(both): %v", err)
	}
	multi, ok := tr.(*MultiTracer)
	if !ok {
		t.Fatalf("both mode must fan out, got %T", tr)
	}
	Point(tr, ScopeDriver, "driver.compile", "", 0)
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	ring, ok := multi.Ring()
	if !ok || len(ring.Snapshot()) != 1 {
		t.Fatalf("ring must receive the event")
	}
	if !strings.Contains(buf.String(), "• driver.compile") {
		t.Fatalf("stream output = %q", buf.String())
	}

	if got := formatFor(Config{OutputPath: "run.trace.msgpack"}); got != FormatMsgpack {
		t.Fatalf("format by extension = %v", got)
	}
}

type failingTracer struct{ nopTracer }

func (failingTracer) Close() error { return errors.New("boom") }

func TestMultiJoinsErrors(t *testing.T) {
	m := NewMultiTracer(LevelPhase, NewRingTracer(1, LevelPhase), failingTracer{})
	if err := m.Close(); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("Close = %v", err)
	}
}

func TestHeartbeatTicks(t *testing.T) {
	ring := NewRingTracer(64, LevelError)
	h := StartHeartbeat(ring, time.Millisecond)
	if h == nil {
		t.Fatalf("heartbeat must start for an enabled tracer")
	}
	deadline := time.Now().Add(2 * time.Second)
	for len(ring.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()
	snap := ring.Snapshot()
	if len(snap) == 0 || snap[0].Kind != KindHeartbeat || snap[0].Detail != "#1" {
		t.Fatalf("heartbeat events = %+v", snap)
	}
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatalf("nop tracer must not tick")
	}
}
