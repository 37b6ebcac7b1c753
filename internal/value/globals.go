package value

import (
	"cmem/internal/ctypes"
	"cmem/internal/memory"
)

// Globals resolves file-scope names with C's two-phase model: an extern
// declaration may record an unsized array type, and the later defining
// declaration supplies both the storage and the final length. The entry is
// mutable until finalized; resolving a declared-but-undefined name reports
// the size as not yet known.
type Globals struct {
	env    *Env
	byName map[string]*globalEntry
}

type globalEntry struct {
	name    string
	typ     ctypes.TypeID
	addr    memory.Addr
	defined bool
}

// NewGlobals creates an empty global scope over env.
func NewGlobals(env *Env) *Globals {
	return &Globals{
		env:    env,
		byName: make(map[string]*globalEntry, 16),
	}
}

// Declare records a forward (extern) declaration. Re-declaring with the
// same type is a no-op; declaring after a definition keeps the definition.
func (g *Globals) Declare(name string, typ ctypes.TypeID) error {
	if e, ok := g.byName[name]; ok {
		if e.defined {
			return nil
		}
		if !g.compatible(e.typ, typ) {
			return memory.NewFault(memory.FaultIncompatibleOperands, "conflicting declarations of %q: %s vs %s",
				name, g.env.Types.TypeString(e.typ), g.env.Types.TypeString(typ))
		}
		return nil
	}
	g.byName[name] = &globalEntry{name: name, typ: typ}
	return nil
}

// Define supplies the defining declaration: it finalizes the recorded
// type, reserves storage and applies the initializer (zero-filling any
// unsupplied slots).
func (g *Globals) Define(name string, typ ctypes.TypeID, lit *Literal) (Aggregate, error) {
	e, ok := g.byName[name]
	if !ok {
		e = &globalEntry{name: name, typ: typ}
		g.byName[name] = e
	} else {
		if e.defined {
			return Aggregate{}, memory.NewFault(memory.FaultIncompatibleOperands, "redefinition of %q", name)
		}
		if !g.compatible(e.typ, typ) {
			return Aggregate{}, memory.NewFault(memory.FaultIncompatibleOperands, "definition of %q as %s conflicts with declaration %s",
				name, g.env.Types.TypeString(typ), g.env.Types.TypeString(e.typ))
		}
		// Finalize: the sized type replaces the tentative unsized one.
		e.typ = typ
	}

	l, f := g.env.layoutOf(e.typ)
	if f != nil {
		return Aggregate{}, f
	}
	addr, err := g.env.Space.Alloc(l.Size, l.Align)
	if err != nil {
		return Aggregate{}, err
	}
	if err := g.env.Apply(e.typ, lit, addr); err != nil {
		return Aggregate{}, err
	}
	e.addr = addr
	e.defined = true
	return g.env.ViewAt(addr, e.typ), nil
}

// Resolve returns the view of a defined global. A declared-but-undefined
// name has no storage and, for an unsized array, no known length yet.
func (g *Globals) Resolve(name string) (Aggregate, error) {
	e, ok := g.byName[name]
	if !ok {
		return Aggregate{}, memory.NewFault(memory.FaultTypeMismatch, "undeclared global %q", name)
	}
	if !e.defined {
		return Aggregate{}, memory.NewFault(memory.FaultUnsizedType, "global %q declared but not defined", name)
	}
	return g.env.ViewAt(e.addr, e.typ), nil
}

// TypeOf reports the currently known type of a name: the tentative one
// before the definition, the finalized one after.
func (g *Globals) TypeOf(name string) (ctypes.TypeID, bool) {
	e, ok := g.byName[name]
	if !ok {
		return ctypes.NoTypeID, false
	}
	return e.typ, true
}

// compatible accepts identical types, or an unsized array declaration
// matched with a sized definition over the same element type.
func (g *Globals) compatible(declared, other ctypes.TypeID) bool {
	if declared == other {
		return true
	}
	dElem, dCount, dOK := g.env.Types.ArrayInfo(declared)
	oElem, _, oOK := g.env.Types.ArrayInfo(other)
	if dOK && oOK && dElem == oElem && dCount == ctypes.ArrayUnsizedLength {
		return true
	}
	return false
}
