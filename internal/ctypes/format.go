package ctypes

import "fmt"

// TypeString renders a type for diagnostics, e.g. "int[2][3]" or "double**".
func (in *Interner) TypeString(id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return fmt.Sprintf("type#%d", id)
	}
	switch tt.Kind {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindInt:
		switch tt.Width {
		case Width16:
			return "short"
		case Width64:
			return "long"
		default:
			return "int"
		}
	case KindUint:
		if tt.Width == Width64 {
			return "unsigned long"
		}
		return "unsigned int"
	case KindFloat:
		if tt.Width == Width64 {
			return "double"
		}
		return "float"
	case KindPointer:
		return in.TypeString(tt.Elem) + "*"
	case KindArray:
		// C spells the outermost extent first: int[2][3] is 2 elements of int[3].
		dims := ""
		elem := id
		for {
			et, ok := in.Lookup(elem)
			if !ok || et.Kind != KindArray {
				break
			}
			if et.Count == ArrayUnsizedLength {
				dims += "[]"
			} else {
				dims += fmt.Sprintf("[%d]", et.Count)
			}
			elem = et.Elem
		}
		return in.TypeString(elem) + dims
	case KindStruct:
		if info, ok := in.StructInfo(id); ok && info.Name != "" {
			return "struct " + info.Name
		}
		return "struct"
	default:
		return fmt.Sprintf("type#%d", id)
	}
}
