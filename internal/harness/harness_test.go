package harness_test

import (
	"strings"
	"testing"

	"cmem/internal/harness"
)

func TestTallyAndPlan(t *testing.T) {
	var sb strings.Builder
	h := harness.New(&sb, false)
	h.Plan(4)

	h.IsEq(1.5, 1.5, "floats match")
	h.IsIntEq(48, 48, "ints match")
	h.IsStrEq("abc", "abc", "strings match")
	h.IsTrue(true, "condition holds")

	if err := h.Done(); err != nil {
		t.Fatalf("done: %v", err)
	}
	ran, failed := h.Counts()
	if ran != 4 || failed != 0 {
		t.Fatalf("counts = (%d, %d), want (4, 0)", ran, failed)
	}
	out := sb.String()
	if !strings.HasPrefix(out, "1..4\n") {
		t.Fatalf("missing plan line:\n%s", out)
	}
	if !strings.Contains(out, "ok 3 - strings match") {
		t.Fatalf("missing numbered ok line:\n%s", out)
	}
}

func TestFailuresReported(t *testing.T) {
	var sb strings.Builder
	h := harness.New(&sb, false)
	h.Plan(2)

	h.IsEq(1.0, 2.0, "mismatch")
	h.Pass("still counted")

	err := h.Done()
	if err == nil {
		t.Fatal("expected failure from Done")
	}
	if !strings.Contains(sb.String(), "not ok 1 - mismatch: got 1, want 2") {
		t.Fatalf("missing not-ok detail:\n%s", sb.String())
	}
}

func TestFloatEqualityTolerance(t *testing.T) {
	var sb strings.Builder
	h := harness.New(&sb, false)
	if !h.IsEq(0.1+0.2, 0.3, "near equality") {
		t.Fatal("0.1+0.2 must compare equal to 0.3 within tolerance")
	}
	if h.IsEq(0.3001, 0.3, "outside tolerance") {
		t.Fatal("0.3001 must not compare equal to 0.3")
	}
}

type fakePtr bool

func (p fakePtr) IsNull() bool { return bool(p) }

func TestIsNotNull(t *testing.T) {
	var sb strings.Builder
	h := harness.New(&sb, false)
	if !h.IsNotNull(fakePtr(false), "live pointer") {
		t.Fatal("non-null value must pass")
	}
	if h.IsNotNull(fakePtr(true), "null pointer") {
		t.Fatal("null value must fail")
	}
}

func TestPlanMismatch(t *testing.T) {
	var sb strings.Builder
	h := harness.New(&sb, false)
	h.Plan(3)
	h.Pass("only one")
	if err := h.Done(); err == nil {
		t.Fatal("expected plan mismatch error")
	}
}

func TestDiagDoesNotAffectTally(t *testing.T) {
	var sb strings.Builder
	h := harness.New(&sb, false)
	h.Diag("section %d", 7)
	h.Pass("a")
	if ran, failed := h.Counts(); ran != 1 || failed != 0 {
		t.Fatalf("counts = (%d, %d), want (1, 0)", ran, failed)
	}
	if !strings.Contains(sb.String(), "# section 7\n") {
		t.Fatalf("missing diagnostic line:\n%s", sb.String())
	}
}
