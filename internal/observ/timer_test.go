package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.Measure("resolve", func() string { return "4 types" })
	idx := tm.Begin("delegation")
	tm.End(idx, "")
	tm.End(42, "ignored")

	report := tm.Report()
	if len(report.Phases) != 2 || report.Phases[0].Note != "4 types" {
		t.Fatalf("unexpected report %+v", report)
	}
	sum := tm.Summary()
	if !strings.HasPrefix(sum, "timings:\n") || !strings.Contains(sum, "// 4 types") || !strings.Contains(sum, "total") {
		t.Fatalf("unexpected summary:\n%s", sum)
	}
}

func TestTimerEmptyReport(t *testing.T) {
	if (&Timer{}).Report().Phases != nil {
		t.Fatalf("empty timer has an empty report")
	}
}
