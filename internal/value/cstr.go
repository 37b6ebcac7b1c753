package value

import (
	"golang.org/x/text/unicode/norm"

	"cmem/internal/memory"
)

// cstrScanLimit bounds GoString's search for a terminating NUL.
const cstrScanLimit = 1 << 20

// CString places a NUL-terminated copy of s in a fresh heap block and
// returns a char pointer to it. The text is NFC-normalized first so that
// byte-wise comparison of equal literals from different sources agrees.
func (env *Env) CString(s string) (Pointer, error) {
	s = norm.NFC.String(s)
	b := append([]byte(s), 0)
	addr, err := env.Space.Alloc(len(b), 1)
	if err != nil {
		return Pointer{}, err
	}
	if err := env.Space.WriteAt(addr, b); err != nil {
		return Pointer{}, err
	}
	return Pointer{env: env, addr: addr, pointee: env.Types.Builtins().Char}, nil
}

// GoString reads the NUL-terminated bytes a char pointer refers to.
func (env *Env) GoString(p Pointer) (string, error) {
	if p.IsNull() {
		return "", memory.NewFault(memory.FaultNullAddress, "string read through null pointer")
	}
	var out []byte
	for i := 0; i < cstrScanLimit; i++ {
		b, err := env.Space.ReadAt(p.addr+memory.Addr(i), 1)
		if err != nil {
			return "", err
		}
		if b[0] == 0 {
			return string(out), nil
		}
		out = append(out, b[0])
	}
	return "", memory.NewFault(memory.FaultOutOfBounds, "unterminated string at %#x", uint64(p.addr))
}
