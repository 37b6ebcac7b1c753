package memory

import (
	"sort"
)

// Addr is an address in the simulated byte-addressable space.
// Address 0 is the null address and is never mapped.
type Addr uint64

// NullAddr is the unmapped null address.
const NullAddr Addr = 0

// RegionKind distinguishes stack-frame reservations from heap blocks.
type RegionKind uint8

const (
	RegionStack RegionKind = iota + 1
	RegionHeap
)

func (k RegionKind) String() string {
	switch k {
	case RegionStack:
		return "stack"
	case RegionHeap:
		return "heap"
	default:
		return "unknown"
	}
}

// Allocator chooses base addresses for new regions. It is an external
// collaborator: the Space only tracks region liveness and bounds.
type Allocator interface {
	// Place picks a base for a region of size bytes with the given alignment.
	// cursor is the lowest address the Space has not handed out yet.
	Place(cursor Addr, size, align int) Addr
}

// BumpAllocator places regions at monotonically increasing addresses.
// Bases are never reused within a Space's lifetime.
type BumpAllocator struct{}

func (BumpAllocator) Place(cursor Addr, size, align int) Addr {
	if align <= 1 {
		return cursor
	}
	a := Addr(align)
	r := cursor % a
	if r == 0 {
		return cursor
	}
	return cursor + (a - r)
}

type region struct {
	base     Addr
	size     int
	data     []byte // nil once released; size stays for bounds bookkeeping
	align    int
	kind     RegionKind
	released bool
}

func (r *region) end() Addr {
	return r.base + Addr(r.size)
}

// span is the address-space footprint of the region. An empty region keeps
// a one-byte footprint so its base stays unique and locatable; bounds
// checks still use end(), so the extra byte is never readable.
func (r *region) span() Addr {
	if r.size == 0 {
		return r.base + 1
	}
	return r.end()
}

// Space is a growable byte-addressable store made of independently
// lifetimed regions. It is single-threaded: the host synchronizes access
// when layering multiple execution contexts on top.
type Space struct {
	alloc   Allocator
	cursor  Addr
	regions []*region // sorted by base, bases never reused
	frames  []*Frame
}

// NewSpace creates an empty address space. A nil allocator selects the
// built-in bump allocator.
func NewSpace(alloc Allocator) *Space {
	if alloc == nil {
		alloc = BumpAllocator{}
	}
	return &Space{
		alloc: alloc,
		// Leave the first page unmapped so that address 0 stays null and
		// small accidental offsets from null still fault.
		cursor: 0x1000,
	}
}

func (s *Space) newRegion(size, align int, kind RegionKind) (*region, *Fault) {
	if size < 0 {
		return nil, NewFault(FaultOutOfBounds, "negative region size %d", size)
	}
	if align <= 0 {
		align = 1
	}
	base := s.alloc.Place(s.cursor, size, align)
	if base == NullAddr {
		return nil, NewFault(FaultInvalidRegion, "allocator placed region at null")
	}
	r := &region{
		base:  base,
		size:  size,
		data:  make([]byte, size),
		align: align,
		kind:  kind,
	}
	if f := s.insert(r); f != nil {
		return nil, f
	}
	if r.span() > s.cursor {
		s.cursor = r.span()
	}
	return r, nil
}

// insert keeps regions sorted by base and rejects footprint overlap with
// any other region, live or released (bases are stable for the Space's
// lifetime).
func (s *Space) insert(r *region) *Fault {
	i := sort.Search(len(s.regions), func(i int) bool {
		return s.regions[i].base >= r.base
	})
	if i < len(s.regions) && r.span() > s.regions[i].base {
		return NewFault(FaultRegionOverlap, "region [%#x, %#x) overlaps [%#x, %#x)",
			uint64(r.base), uint64(r.end()), uint64(s.regions[i].base), uint64(s.regions[i].end()))
	}
	if i > 0 && s.regions[i-1].span() > r.base {
		prev := s.regions[i-1]
		return NewFault(FaultRegionOverlap, "region [%#x, %#x) overlaps [%#x, %#x)",
			uint64(r.base), uint64(r.end()), uint64(prev.base), uint64(prev.end()))
	}
	s.regions = append(s.regions, nil)
	copy(s.regions[i+1:], s.regions[i:])
	s.regions[i] = r
	return nil
}

// find locates the region whose footprint contains addr, live or released.
func (s *Space) find(addr Addr) *region {
	i := sort.Search(len(s.regions), func(i int) bool {
		return s.regions[i].span() > addr
	})
	if i >= len(s.regions) {
		return nil
	}
	r := s.regions[i]
	if addr < r.base {
		return nil
	}
	return r
}

// locate resolves addr..addr+n to a live region, or faults.
func (s *Space) locate(addr Addr, n int) (*region, *Fault) {
	if addr == NullAddr {
		return nil, nullAddress()
	}
	r := s.find(addr)
	if r == nil {
		return nil, outOfBounds(addr, n)
	}
	if r.released {
		return nil, useAfterRelease(addr)
	}
	if addr+Addr(n) > r.end() {
		return nil, outOfBounds(addr, n)
	}
	return r, nil
}

// ReadAt copies n bytes starting at addr out of the space.
func (s *Space) ReadAt(addr Addr, n int) ([]byte, error) {
	r, f := s.locate(addr, n)
	if f != nil {
		return nil, f
	}
	off := int(addr - r.base)
	out := make([]byte, n)
	copy(out, r.data[off:off+n])
	return out, nil
}

// WriteAt copies b into the space starting at addr.
func (s *Space) WriteAt(addr Addr, b []byte) error {
	r, f := s.locate(addr, len(b))
	if f != nil {
		return f
	}
	off := int(addr - r.base)
	copy(r.data[off:], b)
	return nil
}

// Copy moves n bytes from src to dst with memmove semantics: the source is
// read in full before the destination is written, so overlap is safe.
func (s *Space) Copy(dst, src Addr, n int) error {
	if n == 0 {
		return nil
	}
	b, err := s.ReadAt(src, n)
	if err != nil {
		return err
	}
	return s.WriteAt(dst, b)
}

// Alloc reserves a heap block of size bytes. The block is zero-filled
// (calloc semantics).
func (s *Space) Alloc(size, align int) (Addr, error) {
	r, f := s.newRegion(size, align, RegionHeap)
	if f != nil {
		return NullAddr, f
	}
	return r.base, nil
}

// Release frees a heap block by its base address. Heap blocks may be
// released in any order; releasing twice is a fault.
func (s *Space) Release(addr Addr) error {
	r := s.find(addr)
	if r == nil || r.base != addr {
		return NewFault(FaultInvalidRegion, "release of %#x: not a region base", uint64(addr))
	}
	if r.kind != RegionHeap {
		return NewFault(FaultInvalidRegion, "release of %#x: not a heap block", uint64(addr))
	}
	if r.released {
		return NewFault(FaultDoubleRelease, "double release: address %#x", uint64(addr))
	}
	r.released = true
	r.data = nil
	return nil
}
