// Package frame implements per-frame section orchestration (spec §4.3-
// §4.4's LfGlobal -> Lf* -> HfGlobal -> Hf* dispatch), the up-to-4
// saved-reference-frame store, and the `jxli` frame-index scan API
// (spec §6).
package frame

import "github.com/jxl-go/jxl/internal/xlerr"

// IndexEntry is one decoded `jxli` entry: the codestream byte offset
// delta to this frame's TOC (relative to the previous entry's), the
// duration in ticks, and how many animation frames this TOC entry
// covers (spec §6: "a single non-animated entry can represent several
// displayed frames via framecount").
type IndexEntry struct {
	OffsetDelta uint64
	Ticks       uint64
	FrameCount  uint64
}

// FrameIndexBox is the fully decoded `jxli` box content.
type FrameIndexBox struct {
	TicksNumerator   uint32
	TicksDenominator uint32
	Entries          []IndexEntry
}

// ScanIndex decodes a `jxli` box's payload. It never touches pixel
// data or even the codestream itself: spec §6 describes it as "a
// separate scan-mode API" over the index box alone.
//
// Grounded on internal/container/parser.go's byte-oriented box-content
// walk (be32/be64 big-endian length reads), adapted here to a
// LEB128-style unsigned varint reader since `jxli`'s entry format is
// itself varint-encoded rather than fixed-width like box headers.
func ScanIndex(payload []byte) (*FrameIndexBox, error) {
	pos := 0
	numEntries, n, err := readVarint(payload, pos)
	if err != nil {
		return nil, err
	}
	pos += n

	if pos+8 > len(payload) {
		return nil, xlerr.New(xlerr.InvalidBox, "jxli truncated before TNUM/TDEN")
	}
	tnum := be32(payload[pos:])
	tden := be32(payload[pos+4:])
	pos += 8

	box := &FrameIndexBox{TicksNumerator: tnum, TicksDenominator: tden}
	for i := uint64(0); i < numEntries; i++ {
		offDelta, n, err := readVarint(payload, pos)
		if err != nil {
			return nil, err
		}
		pos += n
		ticks, n, err := readVarint(payload, pos)
		if err != nil {
			return nil, err
		}
		pos += n
		frames, n, err := readVarint(payload, pos)
		if err != nil {
			return nil, err
		}
		pos += n
		box.Entries = append(box.Entries, IndexEntry{OffsetDelta: offDelta, Ticks: ticks, FrameCount: frames})
	}
	return box, nil
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// readVarint reads an unsigned LEB128 varint starting at pos, returning
// the value and the number of bytes consumed.
func readVarint(b []byte, pos int) (uint64, int, error) {
	var v uint64
	var shift uint
	for i := 0; ; i++ {
		if pos+i >= len(b) {
			return 0, 0, xlerr.New(xlerr.InvalidBox, "truncated varint")
		}
		c := b[pos+i]
		v |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return v, i + 1, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, 0, xlerr.New(xlerr.InvalidBox, "varint too long")
		}
	}
}

// AbsoluteOffset resolves entry i's codestream offset, given the
// previous entries' offsets accumulate via delta (spec §6:
// "off_delta" is relative).
func (box *FrameIndexBox) AbsoluteOffset(i int) uint64 {
	var total uint64
	for j := 0; j <= i; j++ {
		total += box.Entries[j].OffsetDelta
	}
	return total
}

// TotalDisplayedFrames returns the total displayed-frame count the
// index covers: sum of every entry's framecount (a single TOC entry
// can represent several displayed frames, spec §6). This is distinct
// from len(box.Entries), the number of indexed TOC positions.
func (box *FrameIndexBox) TotalDisplayedFrames() uint64 {
	var n uint64
	for _, e := range box.Entries {
		n += e.FrameCount
	}
	return n
}
