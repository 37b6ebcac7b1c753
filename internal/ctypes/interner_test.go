package ctypes

import "testing"

func TestInternerDedupsStructuralTypes(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()

	p1 := in.Pointer(b.Int)
	p2 := in.Pointer(b.Int)
	if p1 != p2 {
		t.Fatalf("expected identical TypeIDs for int*, got %d and %d", p1, p2)
	}

	a1 := in.Array(b.Double, 4)
	a2 := in.Array(b.Double, 4)
	if a1 != a2 {
		t.Fatalf("expected identical TypeIDs for double[4], got %d and %d", a1, a2)
	}
	if a3 := in.Array(b.Double, 5); a3 == a1 {
		t.Fatal("double[5] must not alias double[4]")
	}
}

func TestStructsAreNominal(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	fields := []StructField{{Name: "i", Type: b.Int}, {Name: "c", Type: b.Char}}

	s1 := in.Struct("s", fields)
	s2 := in.Struct("s", fields)
	if s1 == s2 {
		t.Fatal("two struct declarations must have distinct identity")
	}

	idx, ok := in.FieldIndex(s1, "c")
	if !ok || idx != 1 {
		t.Fatalf("FieldIndex(c) = %d, %v; want 1, true", idx, ok)
	}
	if _, ok := in.FieldIndex(s1, "missing"); ok {
		t.Fatal("unknown field must not resolve")
	}
}

func TestUnsizedArrayInfo(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()

	arr := in.UnsizedArray(b.Int)
	elem, count, ok := in.ArrayInfo(arr)
	if !ok || elem != b.Int || count != ArrayUnsizedLength {
		t.Fatalf("ArrayInfo = (%d, %d, %v); want (%d, unsized, true)", elem, count, ok, b.Int)
	}

	sized := in.Array(b.Int, 4)
	if sized == arr {
		t.Fatal("finalized int[4] must be a distinct TypeID from int[]")
	}
}

func TestTypeString(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()

	cases := []struct {
		id   TypeID
		want string
	}{
		{b.Int, "int"},
		{b.Double, "double"},
		{in.Pointer(in.Pointer(b.Double)), "double**"},
		{in.Array(in.Array(b.Int, 3), 2), "int[2][3]"},
		{in.UnsizedArray(b.Int), "int[]"},
	}
	for _, tc := range cases {
		if got := in.TypeString(tc.id); got != tc.want {
			t.Errorf("TypeString(%d) = %q, want %q", tc.id, got, tc.want)
		}
	}
}
