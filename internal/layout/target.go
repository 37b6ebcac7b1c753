package layout

// Target describes the host platform's pointer properties.
type Target struct {
	Name     string // e.g. "x86_64-linux-gnu"
	PtrSize  int    // bytes
	PtrAlign int    // bytes
}

func X86_64LinuxGNU() Target {
	return Target{
		Name:     "x86_64-linux-gnu",
		PtrSize:  8,
		PtrAlign: 8,
	}
}
