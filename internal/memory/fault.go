package memory

import "fmt"

// FaultCode identifies the type of memory fault.
type FaultCode int

// Stable fault codes - do not change values.
const (
	FaultNullAddress          FaultCode = 2001 // MEM2001: access through null address
	FaultOutOfBounds          FaultCode = 2002 // MEM2002: access outside any live region
	FaultUseAfterRelease      FaultCode = 2003 // MEM2003: region already released
	FaultDoubleRelease        FaultCode = 2004 // MEM2004: region released twice
	FaultInvalidRegion        FaultCode = 2005 // MEM2005: address is not a region base
	FaultRegionOverlap        FaultCode = 2006 // MEM2006: allocator placed overlapping regions
	FaultIndexOutOfRange      FaultCode = 2007 // MEM2007: strict-mode array index out of range
	FaultIncompatibleOperands FaultCode = 2008 // MEM2008: mixed pointee or layout in an operation
	FaultMisshapedInitializer FaultCode = 2009 // MEM2009: literal tree does not match target shape
	FaultUnsizedType          FaultCode = 2010 // MEM2010: operation on a type with no known size
	FaultTypeMismatch         FaultCode = 2011 // MEM2011: value kind does not match the slot type
)

// String returns the code as "MEM2001" format.
func (c FaultCode) String() string {
	return fmt.Sprintf("MEM%d", c)
}

// Fault is a synchronous, non-retriable memory-model failure.
type Fault struct {
	Code    FaultCode
	Message string
}

// Error implements the error interface.
func (f *Fault) Error() string {
	return fmt.Sprintf("fault %s: %s", f.Code, f.Message)
}

// NewFault builds a fault with a formatted message.
func NewFault(code FaultCode, format string, args ...any) *Fault {
	return &Fault{Code: code, Message: fmt.Sprintf(format, args...)}
}

func nullAddress() *Fault {
	return NewFault(FaultNullAddress, "access through null address")
}

func outOfBounds(addr Addr, n int) *Fault {
	return NewFault(FaultOutOfBounds, "access [%#x, %#x) outside any live region", uint64(addr), uint64(addr)+uint64(n))
}

func useAfterRelease(addr Addr) *Fault {
	return NewFault(FaultUseAfterRelease, "use-after-release: address %#x", uint64(addr))
}
