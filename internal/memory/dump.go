package memory

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

const dumpPreviewBytes = 16

type dumpRecord struct {
	base    string
	size    string
	kind    string
	state   string
	preview string
}

// DumpString renders the region table for debugging: base, size, kind,
// liveness and a short hex preview of the leading bytes.
func (s *Space) DumpString() string {
	if s == nil || len(s.regions) == 0 {
		return ""
	}
	records := make([]dumpRecord, 0, len(s.regions))
	for _, r := range s.regions {
		rec := dumpRecord{
			base:  fmt.Sprintf("%#x", uint64(r.base)),
			size:  fmt.Sprintf("%d", r.size),
			kind:  r.kind.String(),
			state: "live",
		}
		if r.released {
			rec.state = "released"
		} else {
			n := min(len(r.data), dumpPreviewBytes)
			rec.preview = hex.EncodeToString(r.data[:n])
			if len(r.data) > n {
				rec.preview += ".."
			}
		}
		records = append(records, rec)
	}

	widths := [4]int{len("BASE"), len("SIZE"), len("KIND"), len("STATE")}
	for _, rec := range records {
		widths[0] = maxInt(widths[0], runewidth.StringWidth(rec.base))
		widths[1] = maxInt(widths[1], runewidth.StringWidth(rec.size))
		widths[2] = maxInt(widths[2], runewidth.StringWidth(rec.kind))
		widths[3] = maxInt(widths[3], runewidth.StringWidth(rec.state))
	}

	var b strings.Builder
	writeRow := func(cols [5]string) {
		for i := 0; i < 4; i++ {
			b.WriteString(runewidth.FillRight(cols[i], widths[i]))
			b.WriteString("  ")
		}
		b.WriteString(cols[4])
		b.WriteString("\n")
	}
	writeRow([5]string{"BASE", "SIZE", "KIND", "STATE", "BYTES"})
	for _, rec := range records {
		writeRow([5]string{rec.base, rec.size, rec.kind, rec.state, rec.preview})
	}
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
