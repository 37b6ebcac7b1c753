package ctypes

import (
	"fmt"

	"fortio.org/safecast"
)

// StructField is one named member of a struct, in declaration order.
type StructField struct {
	Name string
	Type TypeID
}

// StructInfo carries the declaration-order field list of a struct type.
type StructInfo struct {
	Name   string
	Fields []StructField
}

// Struct registers a new struct type with the given declaration-order fields.
// Two calls with identical fields produce distinct types: C structs have
// nominal identity, not structural identity.
func (in *Interner) Struct(name string, fields []StructField) TypeID {
	idx, err := safecast.Conv[uint32](len(in.structs))
	if err != nil {
		panic(fmt.Errorf("len(structs) overflow: %w", err))
	}
	in.structs = append(in.structs, StructInfo{
		Name:   name,
		Fields: append([]StructField(nil), fields...),
	})
	return in.internRaw(Type{Kind: KindStruct, Struct: idx})
}

// StructInfo returns the field list of a struct type.
func (in *Interner) StructInfo(id TypeID) (*StructInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindStruct {
		return nil, false
	}
	if tt.Struct == 0 || int(tt.Struct) >= len(in.structs) {
		return nil, false
	}
	return &in.structs[tt.Struct], true
}

// FieldIndex resolves a field name to its declaration index.
func (in *Interner) FieldIndex(id TypeID, name string) (int, bool) {
	info, ok := in.StructInfo(id)
	if !ok {
		return 0, false
	}
	for i, f := range info.Fields {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}
