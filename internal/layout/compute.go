package layout

import (
	"fortio.org/safecast"

	"cmem/internal/ctypes"
)

func (e *Engine) computeLayout(id ctypes.TypeID) (TypeLayout, *LayoutError) {
	if id == ctypes.NoTypeID {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrUnknownType, Type: id}
	}
	tt, ok := e.Types.Lookup(id)
	if !ok {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrUnknownType, Type: id}
	}

	switch tt.Kind {
	case ctypes.KindVoid:
		return TypeLayout{Size: 0, Align: 1}, nil

	case ctypes.KindBool, ctypes.KindChar:
		return TypeLayout{Size: 1, Align: 1}, nil

	case ctypes.KindInt, ctypes.KindUint, ctypes.KindFloat:
		return scalarLayoutBytes(int(tt.Width) / 8), nil

	case ctypes.KindPointer:
		return e.ptrLayout(), nil

	case ctypes.KindArray:
		if tt.Count == ctypes.ArrayUnsizedLength {
			return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrUnsizedArray, Type: id}
		}
		return e.arrayLayout(id, tt.Elem, tt.Count)

	case ctypes.KindStruct:
		return e.structLayout(id)

	default:
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrUnknownType, Type: id}
	}
}

func (e *Engine) ptrLayout() TypeLayout {
	ptrSize := e.Target.PtrSize
	ptrAlign := e.Target.PtrAlign
	if ptrSize <= 0 {
		ptrSize = 8
	}
	if ptrAlign <= 0 {
		ptrAlign = ptrSize
	}
	return TypeLayout{Size: ptrSize, Align: ptrAlign}
}

func scalarLayoutBytes(size int) TypeLayout {
	if size <= 0 {
		return TypeLayout{Size: 0, Align: 1}
	}
	return TypeLayout{Size: size, Align: size}
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// arrayLayout folds innermost-to-outermost: the element of T[a][b] is T[b],
// which gives row-major storage (last index varies fastest).
func (e *Engine) arrayLayout(id, elem ctypes.TypeID, length uint32) (TypeLayout, *LayoutError) {
	elemLayout, lerr := e.layoutOf(elem)
	if lerr != nil {
		return TypeLayout{Size: 0, Align: 1}, lerr
	}
	elemAlign := maxInt(1, elemLayout.Align)
	stride := roundUp(elemLayout.Size, elemAlign)
	n, err := safecast.Conv[int](length)
	if err != nil || n < 0 {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrLengthConversion, Type: id, Err: err}
	}
	return TypeLayout{
		Size:  stride * n,
		Align: elemAlign,
	}, nil
}

// structLayout assigns fields in declaration order, each offset rounded up
// to the field's own alignment; the total size rounds up to the struct
// alignment (the max field alignment). Natural alignment, no reordering.
func (e *Engine) structLayout(id ctypes.TypeID) (TypeLayout, *LayoutError) {
	info, ok := e.Types.StructInfo(id)
	if !ok || info == nil {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrUnknownType, Type: id}
	}
	if len(info.Fields) == 0 {
		return TypeLayout{Size: 0, Align: 1}, nil
	}

	fields := info.Fields
	offsets := make([]int, len(fields))
	aligns := make([]int, len(fields))

	size := 0
	align := 1
	for i := range fields {
		fl, lerr := e.layoutOf(fields[i].Type)
		if lerr != nil {
			return TypeLayout{Size: 0, Align: 1}, lerr
		}
		fAlign := maxInt(1, fl.Align)
		size = roundUp(size, fAlign)
		offsets[i] = size
		aligns[i] = fAlign
		size += fl.Size
		align = maxInt(align, fAlign)
	}
	size = roundUp(size, align)

	return TypeLayout{
		Size:         size,
		Align:        align,
		FieldOffsets: offsets,
		FieldAligns:  aligns,
	}, nil
}
