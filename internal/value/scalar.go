package value

import (
	"encoding/binary"
	"math"

	"cmem/internal/ctypes"
	"cmem/internal/memory"
)

// Scalars are stored little-endian. Signed integers are two's complement;
// chars are signed 8-bit; floats use IEEE 754 bit patterns.

func encodeInt(v int64, width int) []byte {
	b := make([]byte, width)
	switch width {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	default:
		binary.LittleEndian.PutUint64(b, uint64(v))
	}
	return b
}

func decodeSigned(b []byte) int64 {
	switch len(b) {
	case 1:
		return int64(int8(b[0]))
	case 2:
		return int64(int16(binary.LittleEndian.Uint16(b)))
	case 4:
		return int64(int32(binary.LittleEndian.Uint32(b)))
	default:
		return int64(binary.LittleEndian.Uint64(b))
	}
}

func decodeUnsigned(b []byte) int64 {
	switch len(b) {
	case 1:
		return int64(b[0])
	case 2:
		return int64(binary.LittleEndian.Uint16(b))
	case 4:
		return int64(binary.LittleEndian.Uint32(b))
	default:
		return int64(binary.LittleEndian.Uint64(b))
	}
}

func encodeFloat(v float64, width int) []byte {
	if width == 4 {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
		return b
	}
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	return b
}

func decodeFloat(b []byte) float64 {
	if len(b) == 4 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

func (env *Env) encodeAddr(a memory.Addr) []byte {
	b := make([]byte, env.Layout.Target.PtrSize)
	switch len(b) {
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(a))
	default:
		binary.LittleEndian.PutUint64(b, uint64(a))
	}
	return b
}

func (env *Env) decodeAddr(b []byte) memory.Addr {
	switch len(b) {
	case 4:
		return memory.Addr(binary.LittleEndian.Uint32(b))
	default:
		return memory.Addr(binary.LittleEndian.Uint64(b))
	}
}

// isIntegerKind reports whether k stores an integer representation.
func isIntegerKind(k ctypes.Kind) bool {
	switch k {
	case ctypes.KindBool, ctypes.KindChar, ctypes.KindInt, ctypes.KindUint:
		return true
	default:
		return false
	}
}
