package memory

// Frame is a stack-like scope of reservations. Frames nest strictly:
// PopFrame releases the most recently pushed frame and everything it
// reserved, in reverse reservation order.
type Frame struct {
	space   *Space
	regions []*region
	popped  bool
}

// PushFrame opens a new stack frame scope.
func (s *Space) PushFrame() *Frame {
	f := &Frame{space: s}
	s.frames = append(s.frames, f)
	return f
}

// Reserve allocates size bytes inside the frame and returns the base
// address. The reservation lives until the frame is popped.
func (f *Frame) Reserve(size, align int) (Addr, error) {
	if f.popped {
		return NullAddr, NewFault(FaultUseAfterRelease, "reserve on popped frame")
	}
	r, fault := f.space.newRegion(size, align, RegionStack)
	if fault != nil {
		return NullAddr, fault
	}
	f.regions = append(f.regions, r)
	return r.base, nil
}

// PopFrame closes the innermost frame, releasing all of its reservations.
// Frames must be popped in reverse push order.
func (s *Space) PopFrame() error {
	if len(s.frames) == 0 {
		return NewFault(FaultInvalidRegion, "pop with no open frame")
	}
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	f.popped = true
	for i := len(f.regions) - 1; i >= 0; i-- {
		r := f.regions[i]
		if r.released {
			return NewFault(FaultDoubleRelease, "double release: address %#x", uint64(r.base))
		}
		r.released = true
		r.data = nil
	}
	f.regions = nil
	return nil
}

// FrameDepth reports how many frames are currently open.
func (s *Space) FrameDepth() int {
	return len(s.frames)
}
