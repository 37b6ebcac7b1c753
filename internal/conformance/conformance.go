// Package conformance replays the C aggregate and pointer scenarios the
// memory model reproduces: array initialization and zero-fill, decay,
// scaled pointer arithmetic, multi-level indirection and heap vectors.
// Each suite builds a fresh address space and scores its assertions with
// the harness tally.
package conformance

import (
	"cmem/internal/ctypes"
	"cmem/internal/harness"
	"cmem/internal/layout"
	"cmem/internal/memory"
	"cmem/internal/value"
)

// Suite is one independent scenario group. Plan is the exact number of
// assertions Run must produce; the tally enforces it.
type Suite struct {
	Name string
	Plan int
	Run  func(st *State) error
}

// State is the per-suite execution context: a private address space and
// the tally the suite reports into. Suites never share state, which is
// what makes the runner safe to parallelize.
type State struct {
	T       *harness.T
	Env     *value.Env
	B       ctypes.Builtins
	Globals *value.Globals
}

// NewState builds an isolated state for one suite run.
func NewState(t *harness.T, target layout.Target) *State {
	in := ctypes.NewInterner()
	eng := layout.New(target, in)
	env := value.NewEnv(memory.NewSpace(nil), in, eng)
	return &State{
		T:       t,
		Env:     env,
		B:       in.Builtins(),
		Globals: value.NewGlobals(env),
	}
}

// local reserves frame storage for typ and returns a typed view of it.
func (st *State) local(frame *memory.Frame, typ ctypes.TypeID) (value.Aggregate, error) {
	l, err := st.Env.Layout.LayoutOf(typ)
	if err != nil {
		return value.Aggregate{}, err
	}
	addr, err := frame.Reserve(l.Size, l.Align)
	if err != nil {
		return value.Aggregate{}, err
	}
	return st.Env.ViewAt(addr, typ), nil
}

// calloc allocates a zeroed heap vector of count elements and returns a
// pointer to its first element. Alloc zero-fills, so malloc scenarios go
// through the same path.
func (st *State) calloc(elem ctypes.TypeID, count int) (value.Pointer, error) {
	l, err := st.Env.Layout.LayoutOf(elem)
	if err != nil {
		return value.Pointer{}, err
	}
	addr, err := st.Env.Space.Alloc(l.Stride()*count, l.Align)
	if err != nil {
		return value.Pointer{}, err
	}
	slot := st.Env.ViewAt(addr, st.Env.Types.Array(elem, uint32(count)))
	return slot.AsPointer()
}

// readFloat dereferences p and reads the slot as a float64.
func readFloat(p value.Pointer) (float64, error) {
	slot, err := p.Deref()
	if err != nil {
		return 0, err
	}
	return slot.ReadFloat()
}

// readInt dereferences p and reads the slot as an int64.
func readInt(p value.Pointer) (int64, error) {
	slot, err := p.Deref()
	if err != nil {
		return 0, err
	}
	return slot.ReadInt()
}

// Suites returns the full scenario registry in source order.
func Suites() []Suite {
	return []Suite{
		{Name: "intarr", Plan: 3, Run: runIntArr},
		{Name: "doublearr", Plan: 2, Run: runDoubleArr},
		{Name: "arr-init", Plan: 16, Run: runArrInit},
		{Name: "structarr", Plan: 8, Run: runStructArr},
		{Name: "argarr", Plan: 1, Run: runArgArr},
		{Name: "multidim", Plan: 7, Run: runMultidim},
		{Name: "ptrarr", Plan: 2, Run: runPtrArr},
		{Name: "stringarr-init", Plan: 3, Run: runStringArrInit},
		{Name: "partialarr-init", Plan: 5, Run: runPartialArrInit},
		{Name: "extern-global", Plan: 3, Run: runExternGlobal},
		{Name: "array-arithmetic", Plan: 3, Run: runArrayArithmetic},
		{Name: "pointer-arithmetic-1", Plan: 11, Run: runPointerArithmetic1},
		{Name: "pointer-arithmetic-2", Plan: 4, Run: runPointerArithmetic2},
		{Name: "pointer-to-pointer", Plan: 27, Run: runPointerToPointer},
		{Name: "row-pointer-rebind", Plan: 2, Run: runRowPointerRebind},
		{Name: "zero-through-pointers", Plan: 5, Run: runZeroThroughPointers},
		{Name: "pointer-plus-long", Plan: 1, Run: runPointerPlusLong},
		{Name: "dvector", Plan: 3, Run: runDVector},
	}
}
