package value

import (
	"fortio.org/safecast"

	"cmem/internal/ctypes"
	"cmem/internal/memory"
)

// LiteralKind tags one node of an initializer tree.
type LiteralKind uint8

const (
	LitInt LiteralKind = iota + 1
	LitFloat
	LitString
	LitList
)

// Literal is a node in a (possibly nested, possibly partial) initializer
// tree, consumed positionally against the target type's shape.
type Literal struct {
	Kind  LiteralKind
	Int   int64
	Float float64
	Str   string
	List  []*Literal
}

// Int builds an integer literal.
func Int(v int64) *Literal { return &Literal{Kind: LitInt, Int: v} }

// Char builds a character literal; it is an integer in C.
func Char(c byte) *Literal { return &Literal{Kind: LitInt, Int: int64(c)} }

// Float builds a floating-point literal.
func Float(v float64) *Literal { return &Literal{Kind: LitFloat, Float: v} }

// Str builds a string literal (initializes a char* slot).
func Str(s string) *Literal { return &Literal{Kind: LitString, Str: s} }

// List builds a braced initializer list.
func List(items ...*Literal) *Literal { return &Literal{Kind: LitList, List: items} }

// Len reports the number of entries in a list literal.
func (l *Literal) Len() int {
	if l == nil || l.Kind != LitList {
		return 0
	}
	return len(l.List)
}

// Apply writes the literal tree into the span at addr typed as typ.
// The whole span is zero-filled first, so any slot the tree does not
// supply reads back as the zero value of its scalar type - never garbage.
func (env *Env) Apply(typ ctypes.TypeID, lit *Literal, addr memory.Addr) error {
	target := env.ViewAt(addr, typ)
	if err := target.Zero(); err != nil {
		return err
	}
	if lit == nil {
		return nil
	}
	return env.applyAt(typ, lit, addr)
}

func (env *Env) applyAt(typ ctypes.TypeID, lit *Literal, addr memory.Addr) error {
	tt, ok := env.Types.Lookup(typ)
	if !ok {
		return memory.NewFault(memory.FaultTypeMismatch, "initializer for unknown type#%d", typ)
	}

	switch tt.Kind {
	case ctypes.KindArray:
		return env.applyArray(typ, tt, lit, addr)
	case ctypes.KindStruct:
		return env.applyStruct(typ, lit, addr)
	case ctypes.KindPointer:
		return env.applyPointer(typ, lit, addr)
	default:
		return env.applyScalar(typ, lit, addr)
	}
}

func (env *Env) applyArray(typ ctypes.TypeID, tt ctypes.Type, lit *Literal, addr memory.Addr) error {
	if lit.Kind != LitList {
		return memory.NewFault(memory.FaultMisshapedInitializer, "scalar initializer for %s", env.Types.TypeString(typ))
	}
	if tt.Count == ctypes.ArrayUnsizedLength {
		return memory.NewFault(memory.FaultUnsizedType, "initializer for unsized %s", env.Types.TypeString(typ))
	}
	length, err := safecast.Conv[int](tt.Count)
	if err != nil {
		return memory.NewFault(memory.FaultUnsizedType, "array length overflow for %s", env.Types.TypeString(typ))
	}
	if len(lit.List) > length {
		return memory.NewFault(memory.FaultMisshapedInitializer, "%d initializers for %s", len(lit.List), env.Types.TypeString(typ))
	}
	stride, f := env.strideOf(tt.Elem)
	if f != nil {
		return f
	}
	// Slots len(lit.List)..length stay zero from the initial fill.
	for i, item := range lit.List {
		if err := env.applyAt(tt.Elem, item, addr+memory.Addr(i*stride)); err != nil {
			return err
		}
	}
	return nil
}

func (env *Env) applyStruct(typ ctypes.TypeID, lit *Literal, addr memory.Addr) error {
	if lit.Kind != LitList {
		return memory.NewFault(memory.FaultMisshapedInitializer, "scalar initializer for %s", env.Types.TypeString(typ))
	}
	info, ok := env.Types.StructInfo(typ)
	if !ok {
		return memory.NewFault(memory.FaultTypeMismatch, "initializer for non-struct type#%d", typ)
	}
	if len(lit.List) > len(info.Fields) {
		return memory.NewFault(memory.FaultMisshapedInitializer, "%d initializers for %s with %d fields",
			len(lit.List), env.Types.TypeString(typ), len(info.Fields))
	}
	for i, item := range lit.List {
		off, err := env.Layout.FieldOffset(typ, i)
		if err != nil {
			return memory.NewFault(memory.FaultUnsizedType, "field offset: %v", err)
		}
		if err := env.applyAt(info.Fields[i].Type, item, addr+memory.Addr(off)); err != nil {
			return err
		}
	}
	return nil
}

func (env *Env) applyPointer(typ ctypes.TypeID, lit *Literal, addr memory.Addr) error {
	pointee, _ := env.Types.Pointee(typ)
	slot := env.ViewAt(addr, typ)
	switch lit.Kind {
	case LitString:
		p, err := env.CString(lit.Str)
		if err != nil {
			return err
		}
		if p.pointee != pointee {
			return memory.NewFault(memory.FaultIncompatibleOperands, "string literal for %s", env.Types.TypeString(typ))
		}
		return slot.WritePointer(p)
	case LitInt:
		if lit.Int != 0 {
			return memory.NewFault(memory.FaultMisshapedInitializer, "integer initializer %d for %s", lit.Int, env.Types.TypeString(typ))
		}
		return slot.WritePointer(env.NullPointer(pointee))
	default:
		return memory.NewFault(memory.FaultMisshapedInitializer, "bad initializer for %s", env.Types.TypeString(typ))
	}
}

func (env *Env) applyScalar(typ ctypes.TypeID, lit *Literal, addr memory.Addr) error {
	slot := env.ViewAt(addr, typ)
	switch lit.Kind {
	case LitInt:
		return slot.WriteInt(lit.Int)
	case LitFloat:
		return slot.WriteFloat(lit.Float)
	case LitList:
		return memory.NewFault(memory.FaultMisshapedInitializer, "braced initializer for scalar %s", env.Types.TypeString(typ))
	default:
		return memory.NewFault(memory.FaultMisshapedInitializer, "bad initializer for %s", env.Types.TypeString(typ))
	}
}
