package memory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when SnapshotImage format changes.
const snapshotSchemaVersion uint16 = 1

// SnapshotRegion is the serialized form of one region.
type SnapshotRegion struct {
	Base     uint64
	Size     int
	Align    int
	Kind     uint8
	Released bool
	Data     []byte
}

// SnapshotImage is a full serialized address space. Open stack frames are
// not captured: snapshots are taken between frames, when only globals and
// heap blocks are live.
type SnapshotImage struct {
	Schema  uint16
	Cursor  uint64
	Regions []SnapshotRegion
}

// Snapshot captures the current space as a serializable image.
func (s *Space) Snapshot() (*SnapshotImage, error) {
	if len(s.frames) != 0 {
		return nil, NewFault(FaultInvalidRegion, "snapshot with %d open stack frames", len(s.frames))
	}
	img := &SnapshotImage{
		Schema:  snapshotSchemaVersion,
		Cursor:  uint64(s.cursor),
		Regions: make([]SnapshotRegion, 0, len(s.regions)),
	}
	for _, r := range s.regions {
		sr := SnapshotRegion{
			Base:     uint64(r.base),
			Size:     r.size,
			Align:    r.align,
			Kind:     uint8(r.kind),
			Released: r.released,
		}
		if !r.released {
			sr.Data = append([]byte(nil), r.data...)
		}
		img.Regions = append(img.Regions, sr)
	}
	return img, nil
}

// Restore rebuilds a space from an image produced by Snapshot.
func Restore(img *SnapshotImage, alloc Allocator) (*Space, error) {
	if img == nil || img.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("snapshot schema mismatch: got %d want %d", imgSchema(img), snapshotSchemaVersion)
	}
	s := NewSpace(alloc)
	for _, sr := range img.Regions {
		r := &region{
			base:     Addr(sr.Base),
			size:     sr.Size,
			align:    sr.Align,
			kind:     RegionKind(sr.Kind),
			released: sr.Released,
		}
		if !sr.Released {
			r.data = make([]byte, sr.Size)
			copy(r.data, sr.Data)
		}
		if f := s.insert(r); f != nil {
			return nil, f
		}
	}
	s.cursor = Addr(img.Cursor)
	return s, nil
}

func imgSchema(img *SnapshotImage) uint16 {
	if img == nil {
		return 0
	}
	return img.Schema
}

// SaveSnapshot serializes the space to path, replacing it atomically.
func (s *Space) SaveSnapshot(path string) error {
	img, err := s.Snapshot()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(img); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// LoadSnapshot reads a snapshot from path. The boolean reports whether the
// file existed.
func LoadSnapshot(path string, alloc Allocator) (*Space, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer func() {
		_ = f.Close()
	}()
	var img SnapshotImage
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&img); err != nil {
		return nil, true, err
	}
	s, err := Restore(&img, alloc)
	if err != nil {
		return nil, true, err
	}
	return s, true, nil
}
