package ctypes

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the primitive C types used by the evaluator.
type Builtins struct {
	Invalid TypeID
	Void    TypeID
	Bool    TypeID
	Char    TypeID
	Short   TypeID
	Int     TypeID
	Long    TypeID
	UInt    TypeID
	ULong   TypeID
	Float   TypeID
	Double  TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	structs  []StructInfo
}

// NewInterner constructs an interner seeded with the built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[typeKey]TypeID, 64),
	}
	in.structs = append(in.structs, StructInfo{}) // reserve 0 as invalid sentinel
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Void = in.Intern(Type{Kind: KindVoid})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Char = in.Intern(Type{Kind: KindChar, Width: Width8})
	in.builtins.Short = in.Intern(MakeInt(Width16))
	in.builtins.Int = in.Intern(MakeInt(Width32))
	in.builtins.Long = in.Intern(MakeInt(Width64))
	in.builtins.UInt = in.Intern(MakeUint(Width32))
	in.builtins.ULong = in.Intern(MakeUint(Width64))
	in.builtins.Float = in.Intern(MakeFloat(Width32))
	in.builtins.Double = in.Intern(MakeFloat(Width64))
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	key := typeKey(t)
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("ctypes: invalid TypeID")
	}
	return tt
}

// Pointer interns a pointer to elem.
func (in *Interner) Pointer(elem TypeID) TypeID {
	return in.Intern(MakePointer(elem))
}

// Array interns a fixed-length array of elem.
func (in *Interner) Array(elem TypeID, count uint32) TypeID {
	return in.Intern(MakeArray(elem, count))
}

// UnsizedArray interns an array whose length has not been seen yet.
func (in *Interner) UnsizedArray(elem TypeID) TypeID {
	return in.Intern(MakeArray(elem, ArrayUnsizedLength))
}

// ArrayInfo reports the element type and length of an array type.
// ok is false when id is not an array. For an unsized array the reported
// length is ArrayUnsizedLength.
func (in *Interner) ArrayInfo(id TypeID) (elem TypeID, count uint32, ok bool) {
	tt, found := in.Lookup(id)
	if !found || tt.Kind != KindArray {
		return NoTypeID, 0, false
	}
	return tt.Elem, tt.Count, true
}

// Pointee reports the pointee type of a pointer type.
func (in *Interner) Pointee(id TypeID) (TypeID, bool) {
	tt, found := in.Lookup(id)
	if !found || tt.Kind != KindPointer {
		return NoTypeID, false
	}
	return tt.Elem, true
}

type typeKey struct {
	Kind   Kind
	Elem   TypeID
	Count  uint32
	Width  Width
	Struct uint32
}
