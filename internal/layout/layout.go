package layout

import (
	"cmem/internal/ctypes"
)

// TypeLayout is the byte layout of a type for a specific Target.
type TypeLayout struct {
	Size  int
	Align int

	// Struct-only: per-field byte offsets and alignments, declaration order.
	FieldOffsets []int
	FieldAligns  []int
}

// Stride is the byte distance between consecutive array elements of this
// type, and the scale factor for pointer arithmetic over it.
func (l TypeLayout) Stride() int {
	return roundUp(l.Size, maxInt(1, l.Align))
}

// Engine computes memory layout for types.
type Engine struct {
	Target Target
	Types  *ctypes.Interner

	cache *cache
}

// New creates a new layout Engine for the specified target.
func New(target Target, typesIn *ctypes.Interner) *Engine {
	return &Engine{
		Target: target,
		Types:  typesIn,
		cache:  newCache(),
	}
}

// LayoutOf computes and caches the layout of a type.
//
// Layouts are deterministic. The type graph built through the interner is
// acyclic (a struct field can only reference a type interned before the
// struct itself), so no cycle tracking is needed here.
func (e *Engine) LayoutOf(t ctypes.TypeID) (TypeLayout, error) {
	l, lerr := e.layoutOf(t)
	if lerr != nil {
		return l, lerr
	}
	return l, nil
}

func (e *Engine) layoutOf(t ctypes.TypeID) (TypeLayout, *LayoutError) {
	if e == nil || e.Types == nil {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	if e.cache == nil {
		e.cache = newCache()
	}
	if cached, ok := e.cache.get(t); ok {
		return cached.Layout, cached.Err
	}
	l, lerr := e.computeLayout(t)
	e.cache.put(t, &cacheEntry{Layout: l, Err: lerr})
	return l, lerr
}

// SizeOf returns the size of a type in bytes (C sizeof).
func (e *Engine) SizeOf(t ctypes.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// AlignOf returns the alignment requirement of a type in bytes.
func (e *Engine) AlignOf(t ctypes.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Align, err
}

// StrideOf returns the array/pointer-arithmetic stride of a type in bytes.
func (e *Engine) StrideOf(t ctypes.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Stride(), err
}

// FieldOffset returns the byte offset of a struct field by declaration index.
func (e *Engine) FieldOffset(structT ctypes.TypeID, fieldIdx int) (int, error) {
	l, err := e.LayoutOf(structT)
	if err != nil {
		return 0, err
	}
	if fieldIdx < 0 || fieldIdx >= len(l.FieldOffsets) {
		return 0, &LayoutError{Kind: LayoutErrFieldIndex, Type: structT, Field: fieldIdx}
	}
	return l.FieldOffsets[fieldIdx], nil
}
