package value_test

import (
	"testing"

	"cmem/internal/memory"
	"cmem/internal/value"
)

func TestPointerArithmeticScalesByStride(t *testing.T) {
	env, b := newEnv(t)
	frame := env.Space.PushFrame()
	defer func() { _ = env.Space.PopFrame() }()

	arr := reserve(t, env, frame, env.Types.Array(b.Float, 5))
	for i := 0; i < 5; i++ {
		el, _ := arr.Index(i)
		if err := el.WriteFloat(float64(10 * (i + 1))); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	p, err := arr.AsPointer()
	if err != nil {
		t.Fatalf("decay: %v", err)
	}
	// *(p + k) equals arr[k] for every k in bounds.
	for k := int64(0); k < 5; k++ {
		moved, err := p.Add(k)
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if moved.Addr() != p.Addr()+memory.Addr(4*k) {
			t.Fatalf("p+%d at %#x, want %#x", k, uint64(moved.Addr()), uint64(p.Addr()+memory.Addr(4*k)))
		}
		slot, err := moved.Deref()
		if err != nil {
			t.Fatalf("deref: %v", err)
		}
		got, err := slot.ReadFloat()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if want := float64(10 * (k + 1)); got != want {
			t.Fatalf("*(p+%d) = %v, want %v", k, got, want)
		}
	}
}

func TestPointerDiffRoundTrip(t *testing.T) {
	env, b := newEnv(t)
	frame := env.Space.PushFrame()
	defer func() { _ = env.Space.PopFrame() }()

	arr := reserve(t, env, frame, env.Types.Array(b.Double, 8))
	p, err := arr.AsPointer()
	if err != nil {
		t.Fatalf("decay: %v", err)
	}
	for _, k := range []int64{0, 1, 3, 7} {
		q, err := p.Add(k)
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		d, err := q.Diff(p)
		if err != nil {
			t.Fatalf("diff: %v", err)
		}
		if d != k {
			t.Fatalf("(p+%d) - p = %d, want %d", k, d, k)
		}
	}
}

func TestPointerDiffRejectsMixedPointees(t *testing.T) {
	env, b := newEnv(t)
	frame := env.Space.PushFrame()
	defer func() { _ = env.Space.PopFrame() }()

	ints := reserve(t, env, frame, env.Types.Array(b.Int, 2))
	doubles := reserve(t, env, frame, env.Types.Array(b.Double, 2))
	pi, _ := ints.AsPointer()
	pd, _ := doubles.AsPointer()
	_, err := pi.Diff(pd)
	wantFault(t, err, memory.FaultIncompatibleOperands)
}

func TestPointerRebindingSugar(t *testing.T) {
	env, b := newEnv(t)
	frame := env.Space.PushFrame()
	defer func() { _ = env.Space.PopFrame() }()

	arr := reserve(t, env, frame, env.Types.Array(b.Double, 5))
	for i := 0; i < 5; i++ {
		el, _ := arr.Index(i)
		if err := el.WriteFloat(float64(10 * (i + 1))); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	read := func(p value.Pointer) float64 {
		slot, err := p.Deref()
		if err != nil {
			t.Fatalf("deref: %v", err)
		}
		v, err := slot.ReadFloat()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		return v
	}

	ptr, _ := arr.AsPointer()
	if got := read(ptr); got != 10 {
		t.Fatalf("*ptr = %v, want 10", got)
	}

	before := ptr // value semantics: the copy keeps the old address
	if err := ptr.Inc(); err != nil {
		t.Fatalf("++: %v", err)
	}
	if got := read(ptr); got != 20 {
		t.Fatalf("after ++, *ptr = %v, want 20", got)
	}
	if got := read(before); got != 10 {
		t.Fatalf("copy taken before ++ moved too: %v", got)
	}

	if err := ptr.AddAssign(2); err != nil {
		t.Fatalf("+=: %v", err)
	}
	if got := read(ptr); got != 40 {
		t.Fatalf("after += 2, *ptr = %v, want 40", got)
	}
	if err := ptr.Dec(); err != nil {
		t.Fatalf("--: %v", err)
	}
	if err := ptr.SubAssign(1); err != nil {
		t.Fatalf("-=: %v", err)
	}
	if got := read(ptr); got != 20 {
		t.Fatalf("after -- and -= 1, *ptr = %v, want 20", got)
	}
}

func TestPointerToPointerChain(t *testing.T) {
	env, b := newEnv(t)
	frame := env.Space.PushFrame()
	defer func() { _ = env.Space.PopFrame() }()

	// double Var = 42; double *p2 = &Var; double **p1 = &p2;
	varSlot := reserve(t, env, frame, b.Double)
	if err := varSlot.WriteFloat(42); err != nil {
		t.Fatalf("write: %v", err)
	}
	p2Slot := reserve(t, env, frame, env.Types.Pointer(b.Double))
	if err := p2Slot.WritePointer(env.PointerTo(varSlot)); err != nil {
		t.Fatalf("store p2: %v", err)
	}
	p1Slot := reserve(t, env, frame, env.Types.Pointer(env.Types.Pointer(b.Double)))
	if err := p1Slot.WritePointer(env.PointerTo(p2Slot)); err != nil {
		t.Fatalf("store p1: %v", err)
	}

	// **p1 == Var.
	p1, err := p1Slot.ReadPointer()
	if err != nil {
		t.Fatalf("load p1: %v", err)
	}
	p2, err := p1.DerefPointer()
	if err != nil {
		t.Fatalf("*p1: %v", err)
	}
	target, err := p2.Deref()
	if err != nil {
		t.Fatalf("**p1: %v", err)
	}
	if got, _ := target.ReadFloat(); got != 42 {
		t.Fatalf("**p1 = %v, want 42", got)
	}

	// **p1 = 43 writes through to Var, observable via the original slot.
	if err := target.WriteFloat(43); err != nil {
		t.Fatalf("write through: %v", err)
	}
	if got, _ := varSlot.ReadFloat(); got != 43 {
		t.Fatalf("Var = %v after **p1 = 43, want 43", got)
	}

	// And mutating Var is visible through the chain.
	if err := varSlot.WriteFloat(44); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got, _ := target.ReadFloat(); got != 44 {
		t.Fatalf("**p1 = %v after Var = 44, want 44", got)
	}
}

func TestNullPointerDeref(t *testing.T) {
	env, b := newEnv(t)
	p := env.NullPointer(b.Int)
	if !p.IsNull() {
		t.Fatal("expected null pointer")
	}
	_, err := p.Deref()
	wantFault(t, err, memory.FaultNullAddress)
}

func TestPointerIndexSugar(t *testing.T) {
	env, b := newEnv(t)
	frame := env.Space.PushFrame()
	defer func() { _ = env.Space.PopFrame() }()

	arr := reserve(t, env, frame, env.Types.Array(b.Int, 4))
	for i := 0; i < 4; i++ {
		el, _ := arr.Index(i)
		if err := el.WriteInt(int64(i * i)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	p, _ := arr.AsPointer()
	slot, err := p.Index(3)
	if err != nil {
		t.Fatalf("p[3]: %v", err)
	}
	if got, _ := slot.ReadInt(); got != 9 {
		t.Fatalf("p[3] = %d, want 9", got)
	}
}
