package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"cmem/internal/ctypes"
)

// typeTable is the TOML descriptor the layout command consumes: struct
// declarations in order, then the type expressions to report on.
type typeTable struct {
	Structs []structDecl `toml:"structs"`
	Types   []string     `toml:"types"`
}

type structDecl struct {
	Name   string      `toml:"name"`
	Fields []fieldDecl `toml:"fields"`
}

type fieldDecl struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

func loadTypeTable(path string) (*typeTable, error) {
	var table typeTable
	if _, err := toml.DecodeFile(path, &table); err != nil {
		return nil, fmt.Errorf("read type table %s: %w", path, err)
	}
	return &table, nil
}

// typeResolver maps type expressions from a descriptor onto interned
// TypeIDs. Struct names become visible in declaration order, so a later
// struct can embed an earlier one.
type typeResolver struct {
	in      *ctypes.Interner
	structs map[string]ctypes.TypeID
}

func newTypeResolver(in *ctypes.Interner) *typeResolver {
	return &typeResolver{in: in, structs: make(map[string]ctypes.TypeID)}
}

func (r *typeResolver) declare(decl structDecl) (ctypes.TypeID, error) {
	if decl.Name == "" {
		return ctypes.NoTypeID, fmt.Errorf("struct declaration without a name")
	}
	if _, ok := r.structs[decl.Name]; ok {
		return ctypes.NoTypeID, fmt.Errorf("struct %q declared twice", decl.Name)
	}
	fields := make([]ctypes.StructField, 0, len(decl.Fields))
	for _, f := range decl.Fields {
		ft, err := r.parse(f.Type)
		if err != nil {
			return ctypes.NoTypeID, fmt.Errorf("struct %q field %q: %w", decl.Name, f.Name, err)
		}
		fields = append(fields, ctypes.StructField{Name: f.Name, Type: ft})
	}
	id := r.in.Struct(decl.Name, fields)
	r.structs[decl.Name] = id
	return id, nil
}

// parse reads a type expression: a base name ("int", "struct s"), then
// any "*" suffixes, then array extents written outermost first, matching
// how the engine renders types ("int*[3]" is an array of 3 int pointers).
func (r *typeResolver) parse(expr string) (ctypes.TypeID, error) {
	s := strings.TrimSpace(expr)
	base, rest, err := r.parseBase(s)
	if err != nil {
		return ctypes.NoTypeID, err
	}

	for strings.HasPrefix(rest, "*") {
		base = r.in.Pointer(base)
		rest = strings.TrimSpace(rest[1:])
	}

	var dims []uint32
	for rest != "" {
		if rest[0] != '[' {
			return ctypes.NoTypeID, fmt.Errorf("unexpected %q in type %q", rest, expr)
		}
		rb := strings.IndexByte(rest, ']')
		if rb < 0 {
			return ctypes.NoTypeID, fmt.Errorf("unterminated array extent in type %q", expr)
		}
		var n uint32
		if _, err := fmt.Sscanf(rest[1:rb], "%d", &n); err != nil || n == 0 {
			return ctypes.NoTypeID, fmt.Errorf("bad array extent %q in type %q", rest[1:rb], expr)
		}
		dims = append(dims, n)
		rest = strings.TrimSpace(rest[rb+1:])
	}
	// Extents fold innermost-out: int[2][3] is 2 rows of int[3].
	for i := len(dims) - 1; i >= 0; i-- {
		base = r.in.Array(base, dims[i])
	}
	return base, nil
}

func (r *typeResolver) parseBase(s string) (ctypes.TypeID, string, error) {
	if name, ok := strings.CutPrefix(s, "struct "); ok {
		name = strings.TrimSpace(name)
		end := strings.IndexAny(name, "*[")
		rest := ""
		if end >= 0 {
			rest = strings.TrimSpace(name[end:])
			name = strings.TrimSpace(name[:end])
		}
		id, ok := r.structs[name]
		if !ok {
			return ctypes.NoTypeID, "", fmt.Errorf("unknown struct %q", name)
		}
		return id, rest, nil
	}

	end := strings.IndexAny(s, "*[")
	rest := ""
	name := s
	if end >= 0 {
		rest = strings.TrimSpace(s[end:])
		name = strings.TrimSpace(s[:end])
	}
	b := r.in.Builtins()
	builtins := map[string]ctypes.TypeID{
		"void":   b.Void,
		"bool":   b.Bool,
		"char":   b.Char,
		"short":  b.Short,
		"int":    b.Int,
		"long":   b.Long,
		"uint":   b.UInt,
		"ulong":  b.ULong,
		"float":  b.Float,
		"double": b.Double,
	}
	id, ok := builtins[name]
	if !ok {
		return ctypes.NoTypeID, "", fmt.Errorf("unknown type name %q", name)
	}
	return id, rest, nil
}
