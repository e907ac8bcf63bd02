package ui

import (
	"strings"
	"testing"

	"initcheck/internal/driver"
)

func TestProgressModel(t *testing.T) {
	files := []string{"a.yaml", "b.json", "c.toml"}
	events := make(chan driver.Event)
	m := NewProgressModel("initcheck", files, events).(*progressModel)

	for _, ev := range []driver.Event{
		{File: "a.yaml", Stage: driver.StageCheck, Status: driver.StatusWorking},
		{File: "b.json", Stage: driver.StageCheck, Status: driver.StatusCached, Warnings: 1},
		{File: "c.toml", Stage: driver.StageDecode, Status: driver.StatusError, Errors: 2},
		{File: "unknown.yaml", Stage: driver.StageLoad, Status: driver.StatusWorking},
	} {
		m.Update(eventMsg(ev))
	}
	view := m.View()
	for _, want := range []string{"checking", "cached", "error", "a.yaml", "1W", "2E", "2/3 documents, 2 error(s), 1 warning(s)"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view lacks %q:\n%s", want, view)
		}
	}
	if got := m.percent(); got < 0.86 || got > 0.87 {
		t.Fatalf("percent = %v", got)
	}

	m.Update(doneMsg{})
	if !m.done || !strings.Contains(m.View(), "done: initcheck") {
		t.Fatalf("model did not finish")
	}
}

func TestTally(t *testing.T) {
	cases := []struct {
		doc  document
		want string
	}{
		{document{status: driver.StatusWorking}, ""},
		{document{status: driver.StatusDone}, "ok"},
		{document{status: driver.StatusError, errors: 3}, "3E"},
		{document{status: driver.StatusDone, errors: 1, warnings: 2}, "1E 2W"},
	}
	for _, tc := range cases {
		if got := tally(&tc.doc); got != tc.want {
			t.Fatalf("tally(%+v) = %q, want %q", tc.doc, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("documents/very/long/path.yaml", 12); got != "docume..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 12); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
}
