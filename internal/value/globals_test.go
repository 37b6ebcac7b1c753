package value_test

import (
	"testing"

	"cmem/internal/ctypes"
	"cmem/internal/memory"
	"cmem/internal/value"
)

func TestExternArrayTwoPhase(t *testing.T) {
	env, b := newEnv(t)
	g := value.NewGlobals(env)

	// extern int arrayEx[];
	unsized := env.Types.UnsizedArray(b.Int)
	if err := g.Declare("arrayEx", unsized); err != nil {
		t.Fatalf("declare: %v", err)
	}

	// Before the definition: the type is known but the length is not.
	typ, ok := g.TypeOf("arrayEx")
	if !ok {
		t.Fatal("declared name must resolve a type")
	}
	if _, count, _ := env.Types.ArrayInfo(typ); count != ctypes.ArrayUnsizedLength {
		t.Fatalf("pre-definition length = %d, want unsized", count)
	}
	_, err := g.Resolve("arrayEx")
	wantFault(t, err, memory.FaultUnsizedType)

	// int arrayEx[4] = {1, 2, 3, 4};
	sized := env.Types.Array(b.Int, 4)
	arr, err := g.Define("arrayEx", sized,
		value.List(value.Int(1), value.Int(2), value.Int(3), value.Int(4)))
	if err != nil {
		t.Fatalf("define: %v", err)
	}

	// The record is finalized: later lookups see the sized type.
	typ, _ = g.TypeOf("arrayEx")
	if typ != sized {
		t.Fatalf("post-definition type = %s, want int[4]", env.Types.TypeString(typ))
	}
	el, err := arr.Index(1)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if got, _ := el.ReadInt(); got != 2 {
		t.Fatalf("arrayEx[1] = %d, want 2", got)
	}

	resolved, err := g.Resolve("arrayEx")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Addr() != arr.Addr() {
		t.Fatal("resolve must return the defined storage")
	}
}

func TestGlobalsConflicts(t *testing.T) {
	env, b := newEnv(t)
	g := value.NewGlobals(env)

	if err := g.Declare("x", env.Types.UnsizedArray(b.Int)); err != nil {
		t.Fatalf("declare: %v", err)
	}
	_, err := g.Define("x", env.Types.Array(b.Double, 2), nil)
	wantFault(t, err, memory.FaultIncompatibleOperands)

	if _, err := g.Define("y", b.Int, value.Int(5)); err != nil {
		t.Fatalf("define y: %v", err)
	}
	_, err = g.Define("y", b.Int, value.Int(6))
	wantFault(t, err, memory.FaultIncompatibleOperands)

	_, err = g.Resolve("unknown")
	wantFault(t, err, memory.FaultTypeMismatch)
}

func TestDefineWithoutDeclaration(t *testing.T) {
	env, b := newEnv(t)
	g := value.NewGlobals(env)

	v, err := g.Define("answer", b.Int, value.Int(42))
	if err != nil {
		t.Fatalf("define: %v", err)
	}
	if got, _ := v.ReadInt(); got != 42 {
		t.Fatalf("answer = %d, want 42", got)
	}
}
