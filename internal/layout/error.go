package layout

import (
	"fmt"

	"cmem/internal/ctypes"
)

// LayoutErrorKind enumerates types of layout calculation errors.
type LayoutErrorKind uint8

const (
	// LayoutErrUnsizedArray indicates an array declared without an extent
	// whose defining declaration has not been processed yet.
	LayoutErrUnsizedArray LayoutErrorKind = iota + 1
	LayoutErrUnknownType
	LayoutErrLengthConversion
	LayoutErrFieldIndex
)

// LayoutError represents an error during memory layout calculation.
type LayoutError struct {
	Kind  LayoutErrorKind
	Type  ctypes.TypeID
	Field int   // for LayoutErrFieldIndex
	Err   error // for LayoutErrLengthConversion
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrUnsizedArray:
		return fmt.Sprintf("array length not yet known (type#%d)", e.Type)
	case LayoutErrUnknownType:
		return fmt.Sprintf("unknown type (type#%d)", e.Type)
	case LayoutErrLengthConversion:
		if e.Err != nil {
			return fmt.Sprintf("array length conversion error (type#%d): %v", e.Type, e.Err)
		}
		return fmt.Sprintf("array length conversion error (type#%d)", e.Type)
	case LayoutErrFieldIndex:
		return fmt.Sprintf("field index %d out of range (type#%d)", e.Field, e.Type)
	default:
		return fmt.Sprintf("layout error kind=%d type#%d", e.Kind, e.Type)
	}
}

func (e *LayoutError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
