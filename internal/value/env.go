package value

import (
	"cmem/internal/ctypes"
	"cmem/internal/layout"
	"cmem/internal/memory"
)

// Env bundles the collaborators every typed view needs: the byte store,
// the type interner and the layout engine. Strict turns on opt-in array
// bounds checking on Index; it is off by default because the semantics
// under test are C's, which does not check.
type Env struct {
	Space  *memory.Space
	Types  *ctypes.Interner
	Layout *layout.Engine
	Strict bool
}

// NewEnv wires an Env over an existing space, interner and engine.
func NewEnv(space *memory.Space, types *ctypes.Interner, eng *layout.Engine) *Env {
	return &Env{
		Space:  space,
		Types:  types,
		Layout: eng,
	}
}

// layoutOf adapts layout errors into memory faults: a type whose size is
// not yet known cannot back any storage operation.
func (env *Env) layoutOf(t ctypes.TypeID) (layout.TypeLayout, *memory.Fault) {
	l, err := env.Layout.LayoutOf(t)
	if err != nil {
		return layout.TypeLayout{}, memory.NewFault(memory.FaultUnsizedType, "no layout for %s: %v", env.Types.TypeString(t), err)
	}
	return l, nil
}

func (env *Env) strideOf(t ctypes.TypeID) (int, *memory.Fault) {
	l, f := env.layoutOf(t)
	if f != nil {
		return 0, f
	}
	stride := l.Stride()
	if stride <= 0 {
		return 0, memory.NewFault(memory.FaultUnsizedType, "zero stride for %s", env.Types.TypeString(t))
	}
	return stride, nil
}
