package conformance

import (
	"cmem/internal/ctypes"
	"cmem/internal/value"
)

// int a[3]; element assignment and readback, including a negative value.
func runIntArr(st *State) error {
	frame := st.Env.Space.PushFrame()
	defer func() { _ = st.Env.Space.PopFrame() }()

	a, err := st.local(frame, st.Env.Types.Array(st.B.Int, 3))
	if err != nil {
		return err
	}
	for i, v := range []int64{5, 9, -13} {
		el, err := a.Index(i)
		if err != nil {
			return err
		}
		if err := el.WriteInt(v); err != nil {
			return err
		}
	}
	for i, want := range []int64{5, 9, -13} {
		el, err := a.Index(i)
		if err != nil {
			return err
		}
		got, err := el.ReadInt()
		if err != nil {
			return err
		}
		st.T.IsIntEq(got, want, "a[i]")
	}
	return nil
}

// double a[2]; the second store is an integer converted on assignment.
func runDoubleArr(st *State) error {
	frame := st.Env.Space.PushFrame()
	defer func() { _ = st.Env.Space.PopFrame() }()

	a, err := st.local(frame, st.Env.Types.Array(st.B.Double, 2))
	if err != nil {
		return err
	}
	a0, err := a.Index(0)
	if err != nil {
		return err
	}
	if err := a0.WriteFloat(1.2); err != nil {
		return err
	}
	a1, err := a.Index(1)
	if err != nil {
		return err
	}
	if err := a1.WriteInt(7); err != nil {
		return err
	}

	got0, err := a0.ReadFloat()
	if err != nil {
		return err
	}
	st.T.IsEq(got0, 1.2, "a[0]")
	got1, err := a1.ReadFloat()
	if err != nil {
		return err
	}
	st.T.IsEq(got1, 7.0, "a[1]")
	return nil
}

// Braced initializers over int, float and char arrays, plus one whose
// entries were constant expressions in the source form.
func runArrInit(st *State) error {
	frame := st.Env.Space.PushFrame()
	defer func() { _ = st.Env.Space.PopFrame() }()

	checkInts := func(name string, elem ctypes.TypeID, lit *value.Literal, want []int64) error {
		a, err := st.local(frame, st.Env.Types.Array(elem, uint32(len(want))))
		if err != nil {
			return err
		}
		if err := st.Env.Apply(a.Type(), lit, a.Addr()); err != nil {
			return err
		}
		for i, w := range want {
			el, err := a.Index(i)
			if err != nil {
				return err
			}
			got, err := el.ReadInt()
			if err != nil {
				return err
			}
			st.T.IsIntEq(got, w, name)
		}
		return nil
	}

	// int a[] = {10, 20, 30};
	if err := checkInts("int a[i]", st.B.Int,
		value.List(value.Int(10), value.Int(20), value.Int(30)),
		[]int64{10, 20, 30}); err != nil {
		return err
	}

	// float a[] = {2.2, 3.3, 4.4};
	fa, err := st.local(frame, st.Env.Types.Array(st.B.Float, 3))
	if err != nil {
		return err
	}
	if err := st.Env.Apply(fa.Type(), value.List(value.Float(2.2), value.Float(3.3), value.Float(4.4)), fa.Addr()); err != nil {
		return err
	}
	for i, w := range []float64{2.2, 3.3, 4.4} {
		el, err := fa.Index(i)
		if err != nil {
			return err
		}
		got, err := el.ReadFloat()
		if err != nil {
			return err
		}
		st.T.IsEq(got, float64(float32(w)), "float a[i]")
	}

	// char a[] = {97, 98, 99}; and char a[] = {'a', 'b', 'c'};
	if err := checkInts("char a[i]", st.B.Char,
		value.List(value.Int(97), value.Int(98), value.Int(99)),
		[]int64{'a', 'b', 'c'}); err != nil {
		return err
	}
	if err := checkInts("char a[i] (quoted)", st.B.Char,
		value.List(value.Char('a'), value.Char('b'), value.Char('c')),
		[]int64{'a', 'b', 'c'}); err != nil {
		return err
	}

	// int a[] = {2 ^ 1, 3 & 1, 4 | 1, (5 + 1) / 2};
	return checkInts("expr a[i]", st.B.Int,
		value.List(value.Int(3), value.Int(1), value.Int(5), value.Int(3)),
		[]int64{3, 1, 5, 3})
}

func (st *State) structS() ctypes.TypeID {
	return st.Env.Types.Struct("s", []ctypes.StructField{
		{Name: "i", Type: st.B.Int},
		{Name: "c", Type: st.B.Char},
	})
}

// struct s a[] = {{1, 'a'}, {2, 'b'}}; verified twice, matching the
// plain and compound-literal spellings of the same data.
func runStructArr(st *State) error {
	frame := st.Env.Space.PushFrame()
	defer func() { _ = st.Env.Space.PopFrame() }()

	s := st.structS()
	lit := value.List(
		value.List(value.Int(1), value.Char('a')),
		value.List(value.Int(2), value.Char('b')),
	)
	for run := 0; run < 2; run++ {
		a, err := st.local(frame, st.Env.Types.Array(s, 2))
		if err != nil {
			return err
		}
		if err := st.Env.Apply(a.Type(), lit, a.Addr()); err != nil {
			return err
		}
		for i, want := range []struct {
			i int64
			c int64
		}{{1, 'a'}, {2, 'b'}} {
			el, err := a.Index(i)
			if err != nil {
				return err
			}
			fi, err := el.Field("i")
			if err != nil {
				return err
			}
			gi, err := fi.ReadInt()
			if err != nil {
				return err
			}
			st.T.IsIntEq(gi, want.i, "a[i].i")
			fc, err := el.Field("c")
			if err != nil {
				return err
			}
			gc, err := fc.ReadInt()
			if err != nil {
				return err
			}
			st.T.IsIntEq(gc, want.c, "a[i].c")
		}
	}
	return nil
}

// long dummy(char foo[42]) { return sizeof(foo); } - the parameter decays,
// so the callee sees a pointer regardless of the written extent.
func runArgArr(st *State) error {
	size, err := st.Env.ParamSizeof(st.Env.Types.Array(st.B.Char, 1))
	if err != nil {
		return err
	}
	st.T.IsIntEq(int64(size), int64(st.Env.Layout.Target.PtrSize), "sizeof(char foo[42]) in callee")
	return nil
}

// Multidimensional arrays: row-major element addressing, sizeof of a
// fully nested initializer, and whole-element struct assignment.
func runMultidim(st *State) error {
	frame := st.Env.Space.PushFrame()
	defer func() { _ = st.Env.Space.PopFrame() }()

	// int a[2][3] = {{5,6,7},{50,60,70}};
	a, err := st.local(frame, st.Env.Types.Array(st.Env.Types.Array(st.B.Int, 3), 2))
	if err != nil {
		return err
	}
	if err := st.Env.Apply(a.Type(), value.List(
		value.List(value.Int(5), value.Int(6), value.Int(7)),
		value.List(value.Int(50), value.Int(60), value.Int(70)),
	), a.Addr()); err != nil {
		return err
	}
	a1, err := a.Index(1)
	if err != nil {
		return err
	}
	a12, err := a1.Index(2)
	if err != nil {
		return err
	}
	got, err := a12.ReadInt()
	if err != nil {
		return err
	}
	st.T.IsIntEq(got, 70, "a[1][2]")

	// int b[][3][2] = {{{1,2},{3,4},{5,6}}, {{6,5},{4,3},{2,1}}};
	// the omitted length comes from the initializer: 2.
	bt := st.Env.Types.Array(st.Env.Types.Array(st.Env.Types.Array(st.B.Int, 2), 3), 2)
	b, err := st.local(frame, bt)
	if err != nil {
		return err
	}
	if err := st.Env.Apply(bt, value.List(
		value.List(
			value.List(value.Int(1), value.Int(2)),
			value.List(value.Int(3), value.Int(4)),
			value.List(value.Int(5), value.Int(6)),
		),
		value.List(
			value.List(value.Int(6), value.Int(5)),
			value.List(value.Int(4), value.Int(3)),
			value.List(value.Int(2), value.Int(1)),
		),
	), b.Addr()); err != nil {
		return err
	}
	b1, err := b.Index(1)
	if err != nil {
		return err
	}
	b11, err := b1.Index(1)
	if err != nil {
		return err
	}
	b110, err := b11.Index(0)
	if err != nil {
		return err
	}
	got, err = b110.ReadInt()
	if err != nil {
		return err
	}
	st.T.IsIntEq(got, 4, "b[1][1][0]")
	size, err := b.Sizeof()
	if err != nil {
		return err
	}
	st.T.IsIntEq(int64(size), 48, "sizeof(b)")

	// struct s c[2][3] with a whole-element copy c[1][1] = c[0][0].
	s := st.structS()
	c, err := st.local(frame, st.Env.Types.Array(st.Env.Types.Array(s, 3), 2))
	if err != nil {
		return err
	}
	if err := st.Env.Apply(c.Type(), value.List(
		value.List(
			value.List(value.Int(1), value.Char('a')),
			value.List(value.Int(2), value.Char('b')),
			value.List(value.Int(3), value.Char('c')),
		),
		value.List(
			value.List(value.Int(4), value.Char('d')),
			value.List(value.Int(5), value.Char('e')),
			value.List(value.Int(6), value.Char('f')),
		),
	), c.Addr()); err != nil {
		return err
	}
	c1, err := c.Index(1)
	if err != nil {
		return err
	}
	c11, err := c1.Index(1)
	if err != nil {
		return err
	}
	checkField := func(v value.Aggregate, name string, want int64, desc string) error {
		f, err := v.Field(name)
		if err != nil {
			return err
		}
		got, err := f.ReadInt()
		if err != nil {
			return err
		}
		st.T.IsIntEq(got, want, desc)
		return nil
	}
	if err := checkField(c11, "i", 5, "c[1][1].i"); err != nil {
		return err
	}
	if err := checkField(c11, "c", 'e', "c[1][1].c"); err != nil {
		return err
	}
	c0, err := c.Index(0)
	if err != nil {
		return err
	}
	c00, err := c0.Index(0)
	if err != nil {
		return err
	}
	if err := c11.CopyFrom(c00); err != nil {
		return err
	}
	if err := checkField(c11, "i", 1, "c[1][1].i after copy"); err != nil {
		return err
	}
	return checkField(c11, "c", 'a', "c[1][1].c after copy")
}

// char *a[] = {"a", "bc", "def"};
func runStringArrInit(st *State) error {
	frame := st.Env.Space.PushFrame()
	defer func() { _ = st.Env.Space.PopFrame() }()

	a, err := st.local(frame, st.Env.Types.Array(st.Env.Types.Pointer(st.B.Char), 3))
	if err != nil {
		return err
	}
	if err := st.Env.Apply(a.Type(), value.List(
		value.Str("a"), value.Str("bc"), value.Str("def"),
	), a.Addr()); err != nil {
		return err
	}
	for i, want := range []string{"a", "bc", "def"} {
		el, err := a.Index(i)
		if err != nil {
			return err
		}
		p, err := el.ReadPointer()
		if err != nil {
			return err
		}
		got, err := st.Env.GoString(p)
		if err != nil {
			return err
		}
		st.T.IsStrEq(got, want, "a[i]")
	}
	return nil
}

// Partial initializers zero-fill: the unsupplied tail of a double array
// and of a struct array reads back as zeros, never as garbage.
func runPartialArrInit(st *State) error {
	frame := st.Env.Space.PushFrame()
	defer func() { _ = st.Env.Space.PopFrame() }()

	// double a[4] = {1.1, 2.2};
	a, err := st.local(frame, st.Env.Types.Array(st.B.Double, 4))
	if err != nil {
		return err
	}
	if err := st.Env.Apply(a.Type(), value.List(value.Float(1.1), value.Float(2.2)), a.Addr()); err != nil {
		return err
	}
	for _, i := range []int{2, 3} {
		el, err := a.Index(i)
		if err != nil {
			return err
		}
		got, err := el.ReadFloat()
		if err != nil {
			return err
		}
		st.T.IsEq(got, 0.0, "a[i] tail")
	}

	// struct s b[3] = {{97, 'a'}};
	b, err := st.local(frame, st.Env.Types.Array(st.structS(), 3))
	if err != nil {
		return err
	}
	if err := st.Env.Apply(b.Type(), value.List(
		value.List(value.Int(97), value.Char('a')),
	), b.Addr()); err != nil {
		return err
	}
	b0, err := b.Index(0)
	if err != nil {
		return err
	}
	f, err := b0.Field("i")
	if err != nil {
		return err
	}
	got, err := f.ReadInt()
	if err != nil {
		return err
	}
	st.T.IsIntEq(got, 97, "b[0].i")

	b2, err := b.Index(2)
	if err != nil {
		return err
	}
	for _, name := range []string{"i", "c"} {
		f, err := b2.Field(name)
		if err != nil {
			return err
		}
		got, err := f.ReadInt()
		if err != nil {
			return err
		}
		st.T.IsIntEq(got, 0, "b[2] zero field")
	}
	return nil
}

// extern int arrayEx[]; followed by int arrayEx[4] = {1, 2, 3, 4};
// Before the definition the length is unknown and resolution fails;
// after it the record is finalized and elements are readable.
func runExternGlobal(st *State) error {
	if err := st.Globals.Declare("arrayEx", st.Env.Types.UnsizedArray(st.B.Int)); err != nil {
		return err
	}
	_, err := st.Globals.Resolve("arrayEx")
	st.T.IsTrue(err != nil, "resolve before definition fails")

	arr, err := st.Globals.Define("arrayEx", st.Env.Types.Array(st.B.Int, 4),
		value.List(value.Int(1), value.Int(2), value.Int(3), value.Int(4)))
	if err != nil {
		return err
	}
	typ, _ := st.Globals.TypeOf("arrayEx")
	_, count, _ := st.Env.Types.ArrayInfo(typ)
	st.T.IsIntEq(int64(count), 4, "finalized length")

	el, err := arr.Index(1)
	if err != nil {
		return err
	}
	got, err := el.ReadInt()
	if err != nil {
		return err
	}
	st.T.IsIntEq(got, 2, "arrayEx[1]")
	return nil
}

// float a[5] with stores at computed positions.
func runArrayArithmetic(st *State) error {
	frame := st.Env.Space.PushFrame()
	defer func() { _ = st.Env.Space.PopFrame() }()

	a, err := st.local(frame, st.Env.Types.Array(st.B.Float, 5))
	if err != nil {
		return err
	}
	for _, i := range []int{0, 0 + 1, 2} {
		el, err := a.Index(i)
		if err != nil {
			return err
		}
		if err := el.WriteFloat(42); err != nil {
			return err
		}
	}
	for _, i := range []int{0, 1, 2} {
		el, err := a.Index(i)
		if err != nil {
			return err
		}
		got, err := el.ReadFloat()
		if err != nil {
			return err
		}
		st.T.IsEq(got, 42, "a[i]")
	}
	return nil
}
