package value

import (
	"fortio.org/safecast"

	"cmem/internal/ctypes"
	"cmem/internal/memory"
)

// Aggregate is a typed view over a contiguous span of the address space.
// It owns no bytes: it is an address paired with a type, bounded by the
// lifetime of the region it points into.
type Aggregate struct {
	env  *Env
	addr memory.Addr
	typ  ctypes.TypeID
}

// ViewAt builds a typed view at an address.
func (env *Env) ViewAt(addr memory.Addr, typ ctypes.TypeID) Aggregate {
	return Aggregate{env: env, addr: addr, typ: typ}
}

// Addr returns the base address of the view.
func (a Aggregate) Addr() memory.Addr { return a.addr }

// Type returns the static type of the view.
func (a Aggregate) Type() ctypes.TypeID { return a.typ }

// Sizeof returns the byte size of the viewed type.
func (a Aggregate) Sizeof() (int, error) {
	l, f := a.env.layoutOf(a.typ)
	if f != nil {
		return 0, f
	}
	return l.Size, nil
}

// Index resolves array element n. In strict mode an index at or past the
// declared length faults with IndexOutOfRange; otherwise C semantics
// apply and only the underlying region bounds protect the access.
func (a Aggregate) Index(n int) (Aggregate, error) {
	elem, count, ok := a.env.Types.ArrayInfo(a.typ)
	if !ok {
		return Aggregate{}, memory.NewFault(memory.FaultTypeMismatch, "index on non-array %s", a.env.Types.TypeString(a.typ))
	}
	if a.env.Strict && count != ctypes.ArrayUnsizedLength {
		length, err := safecast.Conv[int](count)
		if err != nil {
			return Aggregate{}, memory.NewFault(memory.FaultUnsizedType, "array length overflow for %s", a.env.Types.TypeString(a.typ))
		}
		if n < 0 || n >= length {
			return Aggregate{}, memory.NewFault(memory.FaultIndexOutOfRange, "index %d out of range [0, %d)", n, length)
		}
	}
	stride, f := a.env.strideOf(elem)
	if f != nil {
		return Aggregate{}, f
	}
	return Aggregate{
		env:  a.env,
		addr: a.addr + memory.Addr(int64(n)*int64(stride)),
		typ:  elem,
	}, nil
}

// Field resolves a struct member by name.
func (a Aggregate) Field(name string) (Aggregate, error) {
	idx, ok := a.env.Types.FieldIndex(a.typ, name)
	if !ok {
		return Aggregate{}, memory.NewFault(memory.FaultTypeMismatch, "no field %q on %s", name, a.env.Types.TypeString(a.typ))
	}
	info, _ := a.env.Types.StructInfo(a.typ)
	off, err := a.env.Layout.FieldOffset(a.typ, idx)
	if err != nil {
		return Aggregate{}, memory.NewFault(memory.FaultUnsizedType, "field offset: %v", err)
	}
	return Aggregate{
		env:  a.env,
		addr: a.addr + memory.Addr(off),
		typ:  info.Fields[idx].Type,
	}, nil
}

// AsPointer decays an array view to a pointer to its first element. The
// outer dimension's extent is intentionally discarded: that is C's
// decay-at-boundary rule.
func (a Aggregate) AsPointer() (Pointer, error) {
	elem, _, ok := a.env.Types.ArrayInfo(a.typ)
	if !ok {
		return Pointer{}, memory.NewFault(memory.FaultTypeMismatch, "decay of non-array %s", a.env.Types.TypeString(a.typ))
	}
	return Pointer{env: a.env, addr: a.addr, pointee: elem}, nil
}

// CopyFrom assigns by value: a byte copy of the full layout size from src.
// Both sides must have the same type.
func (a Aggregate) CopyFrom(src Aggregate) error {
	if a.typ != src.typ {
		return memory.NewFault(memory.FaultIncompatibleOperands, "copy %s from %s",
			a.env.Types.TypeString(a.typ), a.env.Types.TypeString(src.typ))
	}
	l, f := a.env.layoutOf(a.typ)
	if f != nil {
		return f
	}
	return a.env.Space.Copy(a.addr, src.addr, l.Size)
}

// Zero fills the viewed span with the zero value of its type.
func (a Aggregate) Zero() error {
	l, f := a.env.layoutOf(a.typ)
	if f != nil {
		return f
	}
	return a.env.Space.WriteAt(a.addr, make([]byte, l.Size))
}

// Scalar access ---------------------------------------------------------

// ReadInt reads an integer-kind scalar (bool, char, int, uint),
// sign-extending signed representations.
func (a Aggregate) ReadInt() (int64, error) {
	tt := a.env.Types.MustLookup(a.typ)
	l, f := a.env.layoutOf(a.typ)
	if f != nil {
		return 0, f
	}
	b, err := a.env.Space.ReadAt(a.addr, l.Size)
	if err != nil {
		return 0, err
	}
	switch {
	case tt.Kind == ctypes.KindUint || tt.Kind == ctypes.KindBool:
		return decodeUnsigned(b), nil
	case tt.Kind == ctypes.KindChar || tt.Kind == ctypes.KindInt:
		return decodeSigned(b), nil
	case tt.Kind == ctypes.KindFloat:
		// Usual conversion on read: truncation toward zero.
		return int64(decodeFloat(b)), nil
	default:
		return 0, memory.NewFault(memory.FaultTypeMismatch, "integer read of %s", a.env.Types.TypeString(a.typ))
	}
}

// WriteInt stores an integer into the slot, applying the usual numeric
// conversion when the slot is a floating-point type.
func (a Aggregate) WriteInt(v int64) error {
	tt := a.env.Types.MustLookup(a.typ)
	l, f := a.env.layoutOf(a.typ)
	if f != nil {
		return f
	}
	switch {
	case isIntegerKind(tt.Kind):
		return a.env.Space.WriteAt(a.addr, encodeInt(v, l.Size))
	case tt.Kind == ctypes.KindFloat:
		return a.env.Space.WriteAt(a.addr, encodeFloat(float64(v), l.Size))
	default:
		return memory.NewFault(memory.FaultTypeMismatch, "integer write to %s", a.env.Types.TypeString(a.typ))
	}
}

// ReadFloat reads a floating-point slot, or an integer slot converted
// exactly (the usual arithmetic conversion).
func (a Aggregate) ReadFloat() (float64, error) {
	tt := a.env.Types.MustLookup(a.typ)
	l, f := a.env.layoutOf(a.typ)
	if f != nil {
		return 0, f
	}
	b, err := a.env.Space.ReadAt(a.addr, l.Size)
	if err != nil {
		return 0, err
	}
	switch {
	case tt.Kind == ctypes.KindFloat:
		return decodeFloat(b), nil
	case tt.Kind == ctypes.KindUint || tt.Kind == ctypes.KindBool:
		return float64(decodeUnsigned(b)), nil
	case isIntegerKind(tt.Kind):
		return float64(decodeSigned(b)), nil
	default:
		return 0, memory.NewFault(memory.FaultTypeMismatch, "float read of %s", a.env.Types.TypeString(a.typ))
	}
}

// WriteFloat stores a float into the slot; an integer slot truncates
// toward zero (C assignment conversion).
func (a Aggregate) WriteFloat(v float64) error {
	tt := a.env.Types.MustLookup(a.typ)
	l, f := a.env.layoutOf(a.typ)
	if f != nil {
		return f
	}
	switch {
	case tt.Kind == ctypes.KindFloat:
		return a.env.Space.WriteAt(a.addr, encodeFloat(v, l.Size))
	case isIntegerKind(tt.Kind):
		return a.env.Space.WriteAt(a.addr, encodeInt(int64(v), l.Size))
	default:
		return memory.NewFault(memory.FaultTypeMismatch, "float write to %s", a.env.Types.TypeString(a.typ))
	}
}

// ReadPointer loads a stored pointer value from a pointer-typed slot.
func (a Aggregate) ReadPointer() (Pointer, error) {
	pointee, ok := a.env.Types.Pointee(a.typ)
	if !ok {
		return Pointer{}, memory.NewFault(memory.FaultTypeMismatch, "pointer read of %s", a.env.Types.TypeString(a.typ))
	}
	b, err := a.env.Space.ReadAt(a.addr, a.env.Layout.Target.PtrSize)
	if err != nil {
		return Pointer{}, err
	}
	return Pointer{env: a.env, addr: a.env.decodeAddr(b), pointee: pointee}, nil
}

// WritePointer stores a pointer value into a pointer-typed slot. The
// pointee types must agree.
func (a Aggregate) WritePointer(p Pointer) error {
	pointee, ok := a.env.Types.Pointee(a.typ)
	if !ok {
		return memory.NewFault(memory.FaultTypeMismatch, "pointer write to %s", a.env.Types.TypeString(a.typ))
	}
	if !p.IsNull() && p.pointee != pointee {
		return memory.NewFault(memory.FaultIncompatibleOperands, "store %s* into %s",
			a.env.Types.TypeString(p.pointee), a.env.Types.TypeString(a.typ))
	}
	return a.env.Space.WriteAt(a.addr, a.env.encodeAddr(p.addr))
}
