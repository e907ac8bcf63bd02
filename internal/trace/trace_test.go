package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"off": LevelOff, "PHASE": LevelPhase, "detail": LevelDetail, "debug": LevelDebug} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected an error for an unknown level")
	}
}

func TestStreamLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	pass := Begin(tr, ScopePass, "resolve", 0)
	typ := Begin(tr, ScopeType, "type:Movie", pass.ID())
	typ.End("")
	pass.WithExtra("types", "3").End("ok")

	out := buf.String()
	if strings.Contains(out, "type:Movie") {
		t.Fatalf("type scope must be filtered at phase level:\n%s", out)
	}
	if !strings.Contains(out, "→ resolve") || !strings.Contains(out, "← resolve (ok) {types=3}") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeInit, "init:Movie.init()", "complete", 0)

	var ev map[string]any
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if ev["kind"] != "point" || ev["scope"] != "init" || ev["detail"] != "complete" {
		t.Fatalf("unexpected event %v", ev)
	}
}

func TestRingWraps(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(r, ScopePass, name, "", 0)
	}
	snap := r.Snapshot()
	if len(snap) != 3 || snap[0].Name != "c" || snap[2].Name != "e" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("expected three dumped lines:\n%s", buf.String())
	}
}

func TestStartPropagatesParent(t *testing.T) {
	r := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	ctx, outer := Start(ctx, ScopeDriver, "check")
	_, inner := Start(ctx, ScopePass, "delegation")
	inner.End("")
	outer.End("")

	snap := r.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("expected 4 events, got %d", len(snap))
	}
	if snap[1].ParentID != outer.ID() {
		t.Fatalf("inner span parent = %d, want %d", snap[1].ParentID, outer.ID())
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("expected a disabled tracer")
	}
	multi, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &bytes.Buffer{}})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := RingOf(multi); !ok {
		t.Fatalf("both mode keeps a ring buffer")
	}
}
