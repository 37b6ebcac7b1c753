// Package observ aggregates the wall-clock cost of a run: coarse phases
// measured in place plus per-suite durations reported after the fact.
package observ

import (
	"fmt"
	"time"
)

// Phase is one tracked duration. Detail phases carry durations measured
// elsewhere (per-suite elapsed times); they are listed in reports but do
// not count toward the wall total, since parallel suites overlap.
type Phase struct {
	Name   string
	Start  time.Time
	Dur    time.Duration
	Note   string
	Detail bool
}

// Timer collects phases for one CLI invocation. It is not synchronized:
// the runner measures suites itself and reports them via Observe after
// the parallel section ends.
type Timer struct {
	phases []Phase
}

// NewTimer creates an empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8)} }

// Span is an in-flight phase measurement started by Begin.
type Span struct {
	t   *Timer
	idx int
}

// Begin starts measuring a phase.
func (t *Timer) Begin(name string) *Span {
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return &Span{t: t, idx: len(t.phases) - 1}
}

// End finishes the span. Ending twice is a no-op.
func (s *Span) End(note string) {
	if s == nil || s.t == nil {
		return
	}
	p := &s.t.phases[s.idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
	s.t = nil
}

// Observe records a duration measured outside the timer as a detail row.
func (t *Timer) Observe(name string, d time.Duration, note string) {
	t.phases = append(t.phases, Phase{Name: name, Dur: d, Note: note, Detail: true})
}

// Summary returns a human-readable listing of all tracked phases. Detail
// rows are indented under the phase rows.
func (t *Timer) Summary() string {
	report := t.Report()
	out := "timings:\n"
	for _, p := range report.Phases {
		name := p.Name
		if p.Detail {
			name = "  " + name
		}
		out += fmt.Sprintf("  %-22s %7.2f ms", name, p.DurationMS)
		if p.Note != "" {
			out += "  // " + p.Note
		}
		out += "\n"
	}
	out += fmt.Sprintf("  %-22s %7.2f ms\n", "total", report.TotalMS)
	return out
}

// PhaseReport is the serializable form of one tracked phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
	Detail     bool    `json:"detail,omitempty"`
}

// Report aggregates all tracked phases.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report flattens the phases into milliseconds. TotalMS sums the measured
// phases only, never the detail rows.
func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	report := Report{
		Phases: make([]PhaseReport, len(t.phases)),
	}
	var total time.Duration
	for i, phase := range t.phases {
		if !phase.Detail {
			total += phase.Dur
		}
		report.Phases[i] = PhaseReport{
			Name:       phase.Name,
			DurationMS: durationToMillis(phase.Dur),
			Note:       phase.Note,
			Detail:     phase.Detail,
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
