package conformance

import (
	"cmem/internal/memory"
	"cmem/internal/value"
)

// ff mirrors a call used to build pointer offsets from non-constant
// expressions.
func ff() int64 { return 3 }

// int *d[3] and int **e[4]: pointers stored in array slots, with a whole
// pointer array decaying into a pointer-to-pointer slot.
func runPtrArr(st *State) error {
	frame := st.Env.Space.PushFrame()
	defer func() { _ = st.Env.Space.PopFrame() }()

	b, err := st.local(frame, st.B.Int)
	if err != nil {
		return err
	}
	if err := b.WriteInt(22); err != nil {
		return err
	}

	intPtr := st.Env.Types.Pointer(st.B.Int)
	d, err := st.local(frame, st.Env.Types.Array(intPtr, 3))
	if err != nil {
		return err
	}
	d1, err := d.Index(1)
	if err != nil {
		return err
	}
	if err := d1.WritePointer(st.Env.PointerTo(b)); err != nil {
		return err
	}
	p, err := d1.ReadPointer()
	if err != nil {
		return err
	}
	got, err := readInt(p)
	if err != nil {
		return err
	}
	st.T.IsIntEq(got, 22, "*(d[1])")

	e, err := st.local(frame, st.Env.Types.Array(st.Env.Types.Pointer(intPtr), 4))
	if err != nil {
		return err
	}
	e0, err := e.Index(0)
	if err != nil {
		return err
	}
	dp, err := d.AsPointer()
	if err != nil {
		return err
	}
	if err := e0.WritePointer(dp); err != nil {
		return err
	}
	outer, err := e0.ReadPointer()
	if err != nil {
		return err
	}
	slot, err := outer.Index(1)
	if err != nil {
		return err
	}
	inner, err := slot.ReadPointer()
	if err != nil {
		return err
	}
	got, err = readInt(inner)
	if err != nil {
		return err
	}
	st.T.IsIntEq(got, 22, "*(e[0][1])")
	return nil
}

// Scaled arithmetic over a heap float vector, with offsets built from
// constants, calls and conversions.
func runPointerArithmetic1(st *State) error {
	b, err := st.calloc(st.B.Float, 5)
	if err != nil {
		return err
	}
	write := func(k int64, v float64) error {
		slot, err := b.Index(k)
		if err != nil {
			return err
		}
		return slot.WriteFloat(v)
	}
	check := func(k int64, want float64, desc string) error {
		slot, err := b.Index(k)
		if err != nil {
			return err
		}
		got, err := slot.ReadFloat()
		if err != nil {
			return err
		}
		st.T.IsEq(got, want, desc)
		return nil
	}

	// *b = 42; *(b+1) = 42; *(2+b) = 42;
	for k := int64(0); k < 3; k++ {
		if err := write(k, 42); err != nil {
			return err
		}
		if err := check(k, 42, "*(b+k)"); err != nil {
			return err
		}
	}
	// *(b+ff()) = 45; *(ff()+b+1) = 46;
	if err := write(ff(), 45); err != nil {
		return err
	}
	if err := check(3, 45, "*(b+3)"); err != nil {
		return err
	}
	if err := write(ff()+1, 46); err != nil {
		return err
	}
	if err := check(4, 46, "*(b+4)"); err != nil {
		return err
	}
	// *(b + (0 ? 1 : 2)) = -1;
	if err := write(2, -1); err != nil {
		return err
	}
	if err := check(2, -1, "*(b+2)"); err != nil {
		return err
	}
	// *(b+0) = 1; *(b + (int)*(b+0) - 1) = 35;
	if err := write(0, 1); err != nil {
		return err
	}
	v0, err := readFloat(b)
	if err != nil {
		return err
	}
	if err := write(int64(v0)-1, 35); err != nil {
		return err
	}
	if err := check(0, 35, "*(b+0)"); err != nil {
		return err
	}
	// *(b + (int)(float)(2)) = -45;
	if err := write(int64(float64(2)), -45); err != nil {
		return err
	}
	if err := check(2, -45, "*(b+2)"); err != nil {
		return err
	}
	// *(b + 1 + 3 + 1 - 5*1 + ff() - 3) = -4; the offset folds to zero.
	if err := write(1+3+1-5*1+ff()-3, -4); err != nil {
		return err
	}
	if err := check(0, -4, "*(b+0)"); err != nil {
		return err
	}
	got, err := readFloat(b)
	if err != nil {
		return err
	}
	st.T.IsEq(got, -4, "*b")
	// The same offset plus one, assigned and read in one expression.
	if err := write(1+3+1-5*1+ff()-3+1, -48); err != nil {
		return err
	}
	return check(1, -48, "*(b+1)")
}

// calloc with element counts built from calls and folded arithmetic; each
// allocation must come back non-null.
func runPointerArithmetic2(st *State) error {
	for _, count := range []int64{1 + 1, 1 + ff(), ff() + ff(), ff() + 1 + 0 + 0 + 1*0} {
		arr, err := st.calloc(st.B.Float, int(count))
		if err != nil {
			return err
		}
		st.T.IsTrue(!arr.IsNull(), "calloc result non-null")
	}
	return nil
}

// doubleChain runs the Var / *PPptr2 / **PPptr1 scenario: writes to the
// target are visible through two levels of indirection.
func (st *State) doubleChain(frame *memory.Frame) error {
	varSlot, err := st.local(frame, st.B.Double)
	if err != nil {
		return err
	}
	if err := varSlot.WriteFloat(42); err != nil {
		return err
	}
	p2, err := st.local(frame, st.Env.Types.Pointer(st.B.Double))
	if err != nil {
		return err
	}
	if err := p2.WritePointer(st.Env.PointerTo(varSlot)); err != nil {
		return err
	}
	p1, err := st.local(frame, st.Env.Types.Pointer(st.Env.Types.Pointer(st.B.Double)))
	if err != nil {
		return err
	}
	if err := p1.WritePointer(st.Env.PointerTo(p2)); err != nil {
		return err
	}

	deref2 := func() (float64, error) {
		outer, err := p1.ReadPointer()
		if err != nil {
			return 0, err
		}
		inner, err := outer.DerefPointer()
		if err != nil {
			return 0, err
		}
		return readFloat(inner)
	}
	got, err := deref2()
	if err != nil {
		return err
	}
	st.T.IsEq(got, 42, "**PPptr1")
	if err := varSlot.WriteFloat(43); err != nil {
		return err
	}
	got, err = deref2()
	if err != nil {
		return err
	}
	st.T.IsEq(got, 43, "**PPptr1 after Var changed")
	return nil
}

// doubleArr5 reserves double arr[5] = {10, 20, 30, 40, 50}.
func (st *State) doubleArr5(frame *memory.Frame) (value.Aggregate, error) {
	arr, err := st.local(frame, st.Env.Types.Array(st.B.Double, 5))
	if err != nil {
		return value.Aggregate{}, err
	}
	err = st.Env.Apply(arr.Type(), value.List(
		value.Float(10), value.Float(20), value.Float(30), value.Float(40), value.Float(50),
	), arr.Addr())
	if err != nil {
		return value.Aggregate{}, err
	}
	return arr, nil
}

// The twelve pointer-to-pointer cases: two-level chains, then every
// spelling of moving a pointer one element at a time.
func runPointerToPointer(st *State) error {
	frame := st.Env.Space.PushFrame()
	defer func() { _ = st.Env.Space.PopFrame() }()

	// 1 and 2 are the same chain declared in two styles.
	if err := st.doubleChain(frame); err != nil {
		return err
	}
	if err := st.doubleChain(frame); err != nil {
		return err
	}

	// 3: the same chain over int.
	i, err := st.local(frame, st.B.Int)
	if err != nil {
		return err
	}
	if err := i.WriteInt(50); err != nil {
		return err
	}
	ptr2 := st.Env.PointerTo(i)
	p1Slot, err := st.local(frame, st.Env.Types.Pointer(st.Env.Types.Pointer(st.B.Int)))
	if err != nil {
		return err
	}
	p2Slot, err := st.local(frame, st.Env.Types.Pointer(st.B.Int))
	if err != nil {
		return err
	}
	if err := p2Slot.WritePointer(ptr2); err != nil {
		return err
	}
	if err := p1Slot.WritePointer(st.Env.PointerTo(p2Slot)); err != nil {
		return err
	}
	outer, err := p1Slot.ReadPointer()
	if err != nil {
		return err
	}
	inner, err := outer.DerefPointer()
	if err != nil {
		return err
	}
	got, err := readInt(inner)
	if err != nil {
		return err
	}
	st.T.IsIntEq(got, 50, "**ptr1")
	got, err = readInt(ptr2)
	if err != nil {
		return err
	}
	st.T.IsIntEq(got, 50, "*ptr2")

	checkAt := func(p value.Pointer, want float64, desc string) error {
		got, err := readFloat(p)
		if err != nil {
			return err
		}
		st.T.IsEq(got, want, desc)
		return nil
	}

	// 4: ++ptr. 5: ptr += 1. 7: ptr = 1 + ptr. 8: ptr++.
	for _, step := range []func(p *value.Pointer) error{
		func(p *value.Pointer) error { return p.Inc() },
		func(p *value.Pointer) error { return p.AddAssign(1) },
		func(p *value.Pointer) error {
			moved, err := p.Add(1)
			if err != nil {
				return err
			}
			*p = moved
			return nil
		},
		func(p *value.Pointer) error { return p.Inc() },
	} {
		arr, err := st.doubleArr5(frame)
		if err != nil {
			return err
		}
		ptr, err := arr.AsPointer()
		if err != nil {
			return err
		}
		if err := checkAt(ptr, 10, "*ptr"); err != nil {
			return err
		}
		if err := step(&ptr); err != nil {
			return err
		}
		if err := checkAt(ptr, 20, "*ptr after advance"); err != nil {
			return err
		}
	}

	// 6: the int spelling of ptr = 1 + ptr.
	iarr, err := st.local(frame, st.Env.Types.Array(st.B.Int, 5))
	if err != nil {
		return err
	}
	if err := st.Env.Apply(iarr.Type(), value.List(
		value.Int(10), value.Int(20), value.Int(30), value.Int(40), value.Int(50),
	), iarr.Addr()); err != nil {
		return err
	}
	iptr, err := iarr.AsPointer()
	if err != nil {
		return err
	}
	gotI, err := readInt(iptr)
	if err != nil {
		return err
	}
	st.T.IsIntEq(gotI, 10, "*ptr")
	iptr, err = iptr.Add(1)
	if err != nil {
		return err
	}
	gotI, err = readInt(iptr)
	if err != nil {
		return err
	}
	st.T.IsIntEq(gotI, 20, "*ptr after 1 + ptr")

	// 9: ptr = ptr - 1. 10: ptr -= 1. 11: ptr--.
	for _, step := range []func(p *value.Pointer) error{
		func(p *value.Pointer) error {
			moved, err := p.Sub(1)
			if err != nil {
				return err
			}
			*p = moved
			return nil
		},
		func(p *value.Pointer) error { return p.SubAssign(1) },
		func(p *value.Pointer) error { return p.Dec() },
	} {
		arr, err := st.doubleArr5(frame)
		if err != nil {
			return err
		}
		base, err := arr.AsPointer()
		if err != nil {
			return err
		}
		ptr, err := base.Add(2)
		if err != nil {
			return err
		}
		if err := checkAt(ptr, 30, "*ptr at &arr[2]"); err != nil {
			return err
		}
		if err := step(&ptr); err != nil {
			return err
		}
		if err := checkAt(ptr, 20, "*ptr after retreat"); err != nil {
			return err
		}
	}

	// 12: walk the whole array with ptr++.
	arr, err := st.doubleArr5(frame)
	if err != nil {
		return err
	}
	ptr, err := arr.AsPointer()
	if err != nil {
		return err
	}
	for k := 0; k < 5; k++ {
		el, err := arr.Index(k)
		if err != nil {
			return err
		}
		want, err := el.ReadFloat()
		if err != nil {
			return err
		}
		if err := checkAt(ptr, want, "*ptr == arr[i]"); err != nil {
			return err
		}
		if err := ptr.Inc(); err != nil {
			return err
		}
	}
	return nil
}

// float **m: a heap vector of row pointers whose first row pointer is
// advanced in place with += 1.
func runRowPointerRebind(st *State) error {
	floatPtr := st.Env.Types.Pointer(st.B.Float)
	m, err := st.calloc(floatPtr, 5)
	if err != nil {
		return err
	}
	st.T.IsNotNull(m, "m non-null")

	for k := int64(0); k < 2; k++ {
		row, err := st.calloc(st.B.Float, 10)
		if err != nil {
			return err
		}
		slot, err := m.Index(k)
		if err != nil {
			return err
		}
		if err := slot.WritePointer(row); err != nil {
			return err
		}
	}

	// m[0] += 1: load, advance, store back.
	m0, err := m.Index(0)
	if err != nil {
		return err
	}
	row0, err := m0.ReadPointer()
	if err != nil {
		return err
	}
	if err := row0.AddAssign(1); err != nil {
		return err
	}
	if err := m0.WritePointer(row0); err != nil {
		return err
	}
	st.T.Pass("ok")
	return nil
}

// zero(&a, &b, &c) writes zero through three out-pointers.
func runZeroThroughPointers(st *State) error {
	frame := st.Env.Space.PushFrame()
	defer func() { _ = st.Env.Space.PopFrame() }()

	zero := func(ptrs ...value.Pointer) error {
		for _, p := range ptrs {
			slot, err := p.Deref()
			if err != nil {
				return err
			}
			if err := slot.WriteInt(0); err != nil {
				return err
			}
		}
		return nil
	}

	slots := make([]value.Aggregate, 3)
	for k := range slots {
		v, err := st.local(frame, st.B.Int)
		if err != nil {
			return err
		}
		if err := v.WriteInt(10); err != nil {
			return err
		}
		slots[k] = v
	}
	got, err := slots[0].ReadInt()
	if err != nil {
		return err
	}
	st.T.IsIntEq(got, 10, "a before zero")

	if err := zero(st.Env.PointerTo(slots[0]), st.Env.PointerTo(slots[1]), st.Env.PointerTo(slots[2])); err != nil {
		return err
	}
	for _, v := range slots {
		got, err := v.ReadInt()
		if err != nil {
			return err
		}
		st.T.IsIntEq(got, 0, "zeroed")
	}
	st.T.Pass("ok")
	return nil
}

// next_pointer(v) returns v advanced by a long-typed one.
func runPointerPlusLong(st *State) error {
	v, err := st.calloc(st.B.Float, 5)
	if err != nil {
		return err
	}
	for k, val := range []float64{5, 6} {
		slot, err := v.Index(int64(k))
		if err != nil {
			return err
		}
		if err := slot.WriteFloat(val); err != nil {
			return err
		}
	}
	next, err := v.Add(1)
	if err != nil {
		return err
	}
	got, err := readFloat(next)
	if err != nil {
		return err
	}
	st.T.IsEq(got, 6, "*(next_pointer(v))")
	return nil
}

// dvector(nl, nh) allocates a heap double vector and returns a pointer
// offset so that indexing starts at nl-1. Allocation zero-fills; the
// filled prefix reads back 42.
func runDVector(st *State) error {
	dvector := func(nl, nh int64) (value.Pointer, error) {
		v, err := st.calloc(st.B.Double, int(nh-nl+1+1))
		if err != nil {
			return value.Pointer{}, err
		}
		for k := int64(0); k < nh-nl; k++ {
			slot, err := v.Index(k)
			if err != nil {
				return value.Pointer{}, err
			}
			if err := slot.WriteFloat(42); err != nil {
				return value.Pointer{}, err
			}
		}
		return v.Add(1 - nl)
	}

	arr, err := dvector(1, 12)
	if err != nil {
		return err
	}
	st.T.IsNotNull(arr, "arr non-null")
	for _, k := range []int64{1, 9} {
		slot, err := arr.Index(k)
		if err != nil {
			return err
		}
		got, err := slot.ReadFloat()
		if err != nil {
			return err
		}
		st.T.IsEq(got, 42, "arr[k]")
	}
	return nil
}
