// Package harness is the test collaborator the memory model is validated
// against: TAP-style equality assertions with a plan count and a final
// pass/fail tally.
package harness

import (
	"fmt"
	"io"
	"math"

	"github.com/fatih/color"
)

// epsilon is the tolerance for floating-point equality.
const epsilon = 1e-6

var (
	okColor    = color.New(color.FgGreen)
	notOkColor = color.New(color.FgRed, color.Bold)
)

// T tallies assertion results against a declared plan.
type T struct {
	w        io.Writer
	colorize bool
	planned  int
	ran      int
	failed   int
}

// New creates a tally writing TAP-ish output to w.
func New(w io.Writer, colorize bool) *T {
	return &T{w: w, colorize: colorize}
}

// Plan declares how many assertions the run must produce.
func (t *T) Plan(n int) {
	t.planned = n
	fmt.Fprintf(t.w, "1..%d\n", n)
}

// Diag prints a diagnostic line that does not affect the tally.
func (t *T) Diag(format string, args ...any) {
	fmt.Fprintf(t.w, "# %s\n", fmt.Sprintf(format, args...))
}

func (t *T) ok(passed bool, desc string) bool {
	t.ran++
	mark := "ok"
	if !passed {
		t.failed++
		mark = "not ok"
	}
	if t.colorize {
		c := okColor
		if !passed {
			c = notOkColor
		}
		_, _ = c.Fprintf(t.w, "%s %d - %s\n", mark, t.ran, desc)
		return passed
	}
	fmt.Fprintf(t.w, "%s %d - %s\n", mark, t.ran, desc)
	return passed
}

// IsEq asserts numeric equality within epsilon.
func (t *T) IsEq(got, want float64, desc string) bool {
	passed := math.Abs(got-want) < epsilon
	if !passed {
		desc = fmt.Sprintf("%s: got %v, want %v", desc, got, want)
	}
	return t.ok(passed, desc)
}

// IsIntEq asserts exact integer equality.
func (t *T) IsIntEq(got, want int64, desc string) bool {
	passed := got == want
	if !passed {
		desc = fmt.Sprintf("%s: got %d, want %d", desc, got, want)
	}
	return t.ok(passed, desc)
}

// IsStrEq asserts string equality.
func (t *T) IsStrEq(got, want string, desc string) bool {
	passed := got == want
	if !passed {
		desc = fmt.Sprintf("%s: got %q, want %q", desc, got, want)
	}
	return t.ok(passed, desc)
}

// IsNotNull asserts that a pointer-like value is not null.
func (t *T) IsNotNull(p interface{ IsNull() bool }, desc string) bool {
	return t.ok(p != nil && !p.IsNull(), desc)
}

// IsTrue asserts a condition.
func (t *T) IsTrue(cond bool, desc string) bool {
	return t.ok(cond, desc)
}

// Pass records an unconditional success.
func (t *T) Pass(desc string) bool {
	return t.ok(true, desc)
}

// Fail records a failure, used when an operation errors before its
// assertion can run.
func (t *T) Fail(format string, args ...any) bool {
	return t.ok(false, fmt.Sprintf(format, args...))
}

// Counts reports how many assertions ran and how many failed.
func (t *T) Counts() (ran, failed int) {
	return t.ran, t.failed
}

// Done verifies the plan and returns an error when the run failed or the
// assertion count does not match the plan.
func (t *T) Done() error {
	if t.planned != 0 && t.ran != t.planned {
		return fmt.Errorf("planned %d assertions, ran %d", t.planned, t.ran)
	}
	if t.failed > 0 {
		return fmt.Errorf("%d of %d assertions failed", t.failed, t.ran)
	}
	return nil
}
