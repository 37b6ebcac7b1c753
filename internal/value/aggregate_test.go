package value_test

import (
	"errors"
	"testing"

	"cmem/internal/ctypes"
	"cmem/internal/layout"
	"cmem/internal/memory"
	"cmem/internal/value"
)

func newEnv(t *testing.T) (*value.Env, ctypes.Builtins) {
	t.Helper()
	in := ctypes.NewInterner()
	eng := layout.New(layout.X86_64LinuxGNU(), in)
	env := value.NewEnv(memory.NewSpace(nil), in, eng)
	return env, in.Builtins()
}

func reserve(t *testing.T, env *value.Env, frame *memory.Frame, typ ctypes.TypeID) value.Aggregate {
	t.Helper()
	l, err := env.Layout.LayoutOf(typ)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	addr, err := frame.Reserve(l.Size, l.Align)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	return env.ViewAt(addr, typ)
}

func wantFault(t *testing.T, err error, code memory.FaultCode) {
	t.Helper()
	var f *memory.Fault
	if !errors.As(err, &f) {
		t.Fatalf("expected *memory.Fault %v, got %T (%v)", code, err, err)
	}
	if f.Code != code {
		t.Fatalf("expected fault %v, got %v (%v)", code, f.Code, f)
	}
}

func TestScalarArrayElementAccess(t *testing.T) {
	env, b := newEnv(t)
	frame := env.Space.PushFrame()
	defer func() {
		if err := env.Space.PopFrame(); err != nil {
			t.Fatalf("pop: %v", err)
		}
	}()

	arr := reserve(t, env, frame, env.Types.Array(b.Int, 3))
	for i, v := range []int64{5, 9, -13} {
		el, err := arr.Index(i)
		if err != nil {
			t.Fatalf("index %d: %v", i, err)
		}
		if err := el.WriteInt(v); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	for i, want := range []int64{5, 9, -13} {
		el, err := arr.Index(i)
		if err != nil {
			t.Fatalf("index %d: %v", i, err)
		}
		got, err := el.ReadInt()
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if got != want {
			t.Errorf("a[%d] = %d, want %d", i, got, want)
		}
	}
}

func TestIntWriteIntoDoubleSlotConverts(t *testing.T) {
	env, b := newEnv(t)
	frame := env.Space.PushFrame()
	defer func() { _ = env.Space.PopFrame() }()

	arr := reserve(t, env, frame, env.Types.Array(b.Double, 2))
	a0, _ := arr.Index(0)
	a1, _ := arr.Index(1)
	if err := a0.WriteFloat(1.2); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := a1.WriteInt(7); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got, _ := a0.ReadFloat(); got != 1.2 {
		t.Errorf("a[0] = %v, want 1.2", got)
	}
	if got, _ := a1.ReadFloat(); got != 7.0 {
		t.Errorf("a[1] = %v, want 7.0", got)
	}
}

func TestRowMajorElementAddresses(t *testing.T) {
	env, b := newEnv(t)
	frame := env.Space.PushFrame()
	defer func() { _ = env.Space.PopFrame() }()

	// int b[2][3][2]: address(b[i][j][k]) == base + (i*6 + j*2 + k)*4.
	typ := env.Types.Array(env.Types.Array(env.Types.Array(b.Int, 2), 3), 2)
	arr := reserve(t, env, frame, typ)
	base := arr.Addr()

	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 2; k++ {
				vi, err := arr.Index(i)
				if err != nil {
					t.Fatalf("index: %v", err)
				}
				vj, err := vi.Index(j)
				if err != nil {
					t.Fatalf("index: %v", err)
				}
				vk, err := vj.Index(k)
				if err != nil {
					t.Fatalf("index: %v", err)
				}
				want := base + memory.Addr((i*6+j*2+k)*4)
				if vk.Addr() != want {
					t.Fatalf("b[%d][%d][%d] at %#x, want %#x", i, j, k, uint64(vk.Addr()), uint64(want))
				}
			}
		}
	}

	if size, err := arr.Sizeof(); err != nil || size != 48 {
		t.Fatalf("sizeof(b) = %d (%v), want 48", size, err)
	}
}

func TestStructFieldAccess(t *testing.T) {
	env, b := newEnv(t)
	s := env.Types.Struct("s", []ctypes.StructField{
		{Name: "i", Type: b.Int},
		{Name: "c", Type: b.Char},
	})
	frame := env.Space.PushFrame()
	defer func() { _ = env.Space.PopFrame() }()

	v := reserve(t, env, frame, s)
	fi, err := v.Field("i")
	if err != nil {
		t.Fatalf("field i: %v", err)
	}
	fc, err := v.Field("c")
	if err != nil {
		t.Fatalf("field c: %v", err)
	}
	if err := fi.WriteInt(97); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := fc.WriteInt(int64('a')); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got, _ := fi.ReadInt(); got != 97 {
		t.Errorf("v.i = %d, want 97", got)
	}
	if got, _ := fc.ReadInt(); got != int64('a') {
		t.Errorf("v.c = %d, want %d", got, 'a')
	}
	if _, err := v.Field("missing"); err == nil {
		t.Fatal("unknown field must fail")
	}
}

func TestStructArrayAssignmentIsValueCopy(t *testing.T) {
	env, b := newEnv(t)
	s := env.Types.Struct("s", []ctypes.StructField{
		{Name: "i", Type: b.Int},
		{Name: "c", Type: b.Char},
	})
	frame := env.Space.PushFrame()
	defer func() { _ = env.Space.PopFrame() }()

	// struct s c[2][3]; c[1][1] = c[0][0].
	arr := reserve(t, env, frame, env.Types.Array(env.Types.Array(s, 3), 2))
	src := index2(t, arr, 0, 0)
	dst := index2(t, arr, 1, 1)

	fi, _ := src.Field("i")
	if err := fi.WriteInt(1); err != nil {
		t.Fatalf("write: %v", err)
	}
	fc, _ := src.Field("c")
	if err := fc.WriteInt(int64('a')); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := dst.CopyFrom(src); err != nil {
		t.Fatalf("copy: %v", err)
	}
	di, _ := dst.Field("i")
	if got, _ := di.ReadInt(); got != 1 {
		t.Fatalf("c[1][1].i = %d, want 1", got)
	}

	// Mutating the source afterwards must not change the destination.
	if err := fi.WriteInt(42); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got, _ := di.ReadInt(); got != 1 {
		t.Fatalf("c[1][1].i changed to %d after mutating c[0][0]", got)
	}
}

func TestCopyFromRejectsMismatchedLayouts(t *testing.T) {
	env, b := newEnv(t)
	frame := env.Space.PushFrame()
	defer func() { _ = env.Space.PopFrame() }()

	a := reserve(t, env, frame, env.Types.Array(b.Int, 2))
	c := reserve(t, env, frame, env.Types.Array(b.Double, 2))
	wantFault(t, a.CopyFrom(c), memory.FaultIncompatibleOperands)
}

func TestStrictModeIndexBounds(t *testing.T) {
	env, b := newEnv(t)
	env.Strict = true
	frame := env.Space.PushFrame()
	defer func() { _ = env.Space.PopFrame() }()

	arr := reserve(t, env, frame, env.Types.Array(b.Int, 3))
	if _, err := arr.Index(2); err != nil {
		t.Fatalf("in-bounds index: %v", err)
	}
	_, err := arr.Index(3)
	wantFault(t, err, memory.FaultIndexOutOfRange)
	_, err = arr.Index(-1)
	wantFault(t, err, memory.FaultIndexOutOfRange)
}

func TestNonStrictIndexIsUncheckedUntilRegionEnd(t *testing.T) {
	env, b := newEnv(t)
	frame := env.Space.PushFrame()
	defer func() { _ = env.Space.PopFrame() }()

	arr := reserve(t, env, frame, env.Types.Array(b.Int, 3))
	// One past the declared length: the view resolves, the access faults
	// only because it leaves the live region.
	el, err := arr.Index(3)
	if err != nil {
		t.Fatalf("unchecked index must resolve: %v", err)
	}
	_, err = el.ReadInt()
	wantFault(t, err, memory.FaultOutOfBounds)
}

func index2(t *testing.T, arr value.Aggregate, i, j int) value.Aggregate {
	t.Helper()
	vi, err := arr.Index(i)
	if err != nil {
		t.Fatalf("index %d: %v", i, err)
	}
	vj, err := vi.Index(j)
	if err != nil {
		t.Fatalf("index %d: %v", j, err)
	}
	return vj
}
