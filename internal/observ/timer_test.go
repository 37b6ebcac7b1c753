package observ

import (
	"strings"
	"testing"
	"time"
)

func TestSpanEndIsIdempotent(t *testing.T) {
	timer := NewTimer()
	span := timer.Begin("suites")
	span.End("first")
	span.End("second")

	report := timer.Report()
	if len(report.Phases) != 1 {
		t.Fatalf("phases = %d, want 1", len(report.Phases))
	}
	if report.Phases[0].Note != "first" {
		t.Fatalf("note = %q, want %q", report.Phases[0].Note, "first")
	}
}

func TestObservedRowsExcludedFromTotal(t *testing.T) {
	timer := NewTimer()
	timer.Begin("suites").End("")
	timer.Observe("intarr", 250*time.Millisecond, "3 assertions")
	timer.Observe("dvector", 150*time.Millisecond, "3 assertions")

	report := timer.Report()
	if len(report.Phases) != 3 {
		t.Fatalf("phases = %d, want 3", len(report.Phases))
	}
	// Suite rows overlap under parallelism, so only the measured phase
	// counts toward the wall total.
	if report.TotalMS >= 150 {
		t.Fatalf("total %.2f ms includes detail rows", report.TotalMS)
	}
	if !report.Phases[1].Detail || report.Phases[1].DurationMS != 250 {
		t.Fatalf("detail row wrong: %+v", report.Phases[1])
	}

	summary := timer.Summary()
	if !strings.Contains(summary, "intarr") || !strings.Contains(summary, "// 3 assertions") {
		t.Fatalf("summary missing detail rows:\n%s", summary)
	}
	if !strings.Contains(summary, "total") {
		t.Fatalf("summary missing total:\n%s", summary)
	}
}
