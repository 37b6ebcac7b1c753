package value

import (
	"cmem/internal/ctypes"
	"cmem/internal/memory"
)

// Pointer is an address paired with a pointee type. Unlike Aggregate it
// can be reseated: the arithmetic sugar below rebinds the pointer's own
// address field and never touches the pointee. A Pointer has value
// semantics - copies taken before a rebind keep the old address.
type Pointer struct {
	env     *Env
	addr    memory.Addr
	pointee ctypes.TypeID
}

// NullPointer builds a null pointer of the given pointee type.
func (env *Env) NullPointer(pointee ctypes.TypeID) Pointer {
	return Pointer{env: env, addr: memory.NullAddr, pointee: pointee}
}

// PointerTo takes the address of a view (the & operator).
func (env *Env) PointerTo(a Aggregate) Pointer {
	return Pointer{env: env, addr: a.addr, pointee: a.typ}
}

// IsNull reports whether the pointer is null.
func (p Pointer) IsNull() bool { return p.addr == memory.NullAddr }

// Addr returns the raw address.
func (p Pointer) Addr() memory.Addr { return p.addr }

// Pointee returns the pointee type.
func (p Pointer) Pointee() ctypes.TypeID { return p.pointee }

// Add returns p + k, moving k pointee strides. For a pointer-to-pointer
// the stride is the target word size, which is what makes T** chains step
// one slot at a time.
func (p Pointer) Add(k int64) (Pointer, error) {
	stride, f := p.env.strideOf(p.pointee)
	if f != nil {
		return Pointer{}, f
	}
	return Pointer{
		env:     p.env,
		addr:    memory.Addr(int64(p.addr) + k*int64(stride)),
		pointee: p.pointee,
	}, nil
}

// Sub returns p - k.
func (p Pointer) Sub(k int64) (Pointer, error) {
	return p.Add(-k)
}

// Diff returns p - q in elements. Both pointers must share a pointee type.
func (p Pointer) Diff(q Pointer) (int64, error) {
	if p.pointee != q.pointee {
		return 0, memory.NewFault(memory.FaultIncompatibleOperands, "pointer difference between %s* and %s*",
			p.env.Types.TypeString(p.pointee), p.env.Types.TypeString(q.pointee))
	}
	stride, f := p.env.strideOf(p.pointee)
	if f != nil {
		return 0, f
	}
	return (int64(p.addr) - int64(q.addr)) / int64(stride), nil
}

// Rebinding sugar: these mutate the pointer variable itself, not the
// pointee.

// Inc is the ++ operator.
func (p *Pointer) Inc() error { return p.AddAssign(1) }

// Dec is the -- operator.
func (p *Pointer) Dec() error { return p.SubAssign(1) }

// AddAssign is the += operator.
func (p *Pointer) AddAssign(k int64) error {
	moved, err := p.Add(k)
	if err != nil {
		return err
	}
	p.addr = moved.addr
	return nil
}

// SubAssign is the -= operator.
func (p *Pointer) SubAssign(k int64) error {
	return p.AddAssign(-k)
}

// Deref yields the pointee view (* operator). Dereferencing null faults.
func (p Pointer) Deref() (Aggregate, error) {
	if p.IsNull() {
		return Aggregate{}, memory.NewFault(memory.FaultNullAddress, "dereference of null %s*", p.env.Types.TypeString(p.pointee))
	}
	return Aggregate{env: p.env, addr: p.addr, typ: p.pointee}, nil
}

// DerefPointer loads the next level of a pointer chain: for a T** it reads
// the stored T* value. Chains of arbitrary depth are just repeated calls.
func (p Pointer) DerefPointer() (Pointer, error) {
	slot, err := p.Deref()
	if err != nil {
		return Pointer{}, err
	}
	return slot.ReadPointer()
}

// Index is the p[n] sugar: *(p + n).
func (p Pointer) Index(n int64) (Aggregate, error) {
	moved, err := p.Add(n)
	if err != nil {
		return Aggregate{}, err
	}
	return moved.Deref()
}
