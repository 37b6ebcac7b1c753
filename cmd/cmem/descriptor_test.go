package main

import (
	"os"
	"path/filepath"
	"testing"

	"cmem/internal/ctypes"
	"cmem/internal/layout"
)

func newResolver(t *testing.T) (*typeResolver, *layout.Engine, *ctypes.Interner) {
	t.Helper()
	in := ctypes.NewInterner()
	eng := layout.New(layout.X86_64LinuxGNU(), in)
	return newTypeResolver(in), eng, in
}

func TestParseTypeExpressions(t *testing.T) {
	r, eng, in := newResolver(t)

	cases := []struct {
		expr      string
		rendered  string
		size      int
		align     int
	}{
		{"int", "int", 4, 4},
		{"double", "double", 8, 8},
		{"char*", "char*", 8, 8},
		{"double**", "double**", 8, 8},
		{"int[2][3]", "int[2][3]", 24, 4},
		{"int*[3]", "int*[3]", 24, 8},
		{"int[2][3][2]", "int[2][3][2]", 48, 4},
	}
	for _, tc := range cases {
		id, err := r.parse(tc.expr)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.expr, err)
		}
		if got := in.TypeString(id); got != tc.rendered {
			t.Errorf("%q rendered as %q, want %q", tc.expr, got, tc.rendered)
		}
		l, err := eng.LayoutOf(id)
		if err != nil {
			t.Fatalf("layout %q: %v", tc.expr, err)
		}
		if l.Size != tc.size || l.Align != tc.align {
			t.Errorf("%q layout = (%d, %d), want (%d, %d)", tc.expr, l.Size, l.Align, tc.size, tc.align)
		}
	}
}

func TestParseStructTypes(t *testing.T) {
	r, eng, _ := newResolver(t)

	if _, err := r.declare(structDecl{
		Name: "s",
		Fields: []fieldDecl{
			{Name: "i", Type: "int"},
			{Name: "c", Type: "char"},
		},
	}); err != nil {
		t.Fatalf("declare: %v", err)
	}

	id, err := r.parse("struct s[3]")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	l, err := eng.LayoutOf(id)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if l.Size != 24 {
		t.Fatalf("sizeof(struct s[3]) = %d, want 24", l.Size)
	}
}

func TestParseErrors(t *testing.T) {
	r, _, _ := newResolver(t)
	for _, expr := range []string{"", "intt", "struct missing", "int[", "int[0]", "int[x]", "int]2["} {
		if _, err := r.parse(expr); err == nil {
			t.Errorf("parse %q: expected error", expr)
		}
	}
}

func TestLoadTypeTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "types.toml")
	doc := `
types = ["int[2][3]", "char*"]

[[structs]]
name = "s"

  [[structs.fields]]
  name = "i"
  type = "int"

  [[structs.fields]]
  name = "c"
  type = "char"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	table, err := loadTypeTable(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(table.Structs) != 1 || table.Structs[0].Name != "s" || len(table.Structs[0].Fields) != 2 {
		t.Fatalf("unexpected structs: %+v", table.Structs)
	}
	if len(table.Types) != 2 {
		t.Fatalf("unexpected types: %+v", table.Types)
	}
}
