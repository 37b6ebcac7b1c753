package value

import (
	"cmem/internal/ctypes"
)

// DecayForCall applies C's decay rule at a function-call boundary: an
// array argument is passed as a pointer to its first element, losing the
// outer dimension's extent but keeping the inner-dimension stride.
func DecayForCall(arg Aggregate) (Pointer, error) {
	return arg.AsPointer()
}

// ParamType is the type a declared function parameter actually has inside
// the callee: an array-typed formal (T param[N]) adjusts to T*, so the
// declared N carries no runtime effect.
func (env *Env) ParamType(declared ctypes.TypeID) ctypes.TypeID {
	if elem, _, ok := env.Types.ArrayInfo(declared); ok {
		return env.Types.Pointer(elem)
	}
	return declared
}

// ParamSizeof is sizeof(param) as observed inside the callee. For an
// array-typed formal this is the pointer size of the target, never
// N * sizeof(T).
func (env *Env) ParamSizeof(declared ctypes.TypeID) (int, error) {
	return env.Layout.SizeOf(env.ParamType(declared))
}
