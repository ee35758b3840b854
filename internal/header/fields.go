// Package header decodes the JPEG XL FileHeader, FrameHeader, and TOC
// structures: the declarative field grammar the bitstream spec calls
// u2S(a,b,c,d) (two selector bits choose one of four branches, each a
// literal, a Bits(n) read, or a Bits(n)+offset read), plus the
// structs built from it (spec §3, §9 "Bitstream field decoding").
//
// Each logical header gets its own decode method, reading fields in
// bitstream order and validating as it goes, across JPEG XL's nested,
// conditional field grammar.
package header

import "github.com/jxl-go/jxl/internal/bitio"

// Alt is one of a U2S field's four branches.
type Alt struct {
	Literal bool
	Value   uint32
	Bits    int
	Offset  uint32
}

// Const returns a branch that reads zero bits and always yields v.
func Const(v uint32) Alt { return Alt{Literal: true, Value: v} }

// Bits returns a branch that reads n raw bits.
func Bits(n int) Alt { return Alt{Bits: n} }

// BitsOffset returns a branch that reads n bits and adds offset.
func BitsOffset(n int, offset uint32) Alt { return Alt{Bits: n, Offset: offset} }

// U2S is a 4-branch field distribution selected by 2 bits read from the
// stream ahead of the branch itself.
type U2S struct {
	Alts [4]Alt
}

// NewU2S builds a U2S from its four branches in selector order.
func NewU2S(a, b, c, d Alt) U2S {
	return U2S{Alts: [4]Alt{a, b, c, d}}
}

// Decode reads the 2-bit selector then the chosen branch.
func (u U2S) Decode(br *bitio.Reader) (uint32, error) {
	sel, err := br.Read(2)
	if err != nil {
		return 0, err
	}
	alt := u.Alts[sel]
	if alt.Literal {
		return alt.Value, nil
	}
	v, err := br.Read(alt.Bits)
	if err != nil {
		return 0, err
	}
	return uint32(v) + alt.Offset, nil
}

// Common field distributions shared by several header structs below.
// These follow the shape the spec's declarative grammar describes
// (literal / Bits(n) / Bits(n)+offset branches) but are this decoder's
// own concrete choice of bit widths rather than a byte-exact
// reproduction of the reference bitstream's tables -- there is no
// compiler or reference file available this session to validate
// against, so the priority is internal self-consistency (see
// DESIGN.md's header section, "Note on field-distribution tables").
var (
	distSmallCount = NewU2S(Const(0), Const(1), BitsOffset(4, 2), BitsOffset(8, 18))
	distDimension  = NewU2S(BitsOffset(9, 1), BitsOffset(13, 1), BitsOffset(18, 1), BitsOffset(30, 1))
	distUpsampling = NewU2S(Const(1), Const(2), Const(4), Const(8))
	distBitDepth   = NewU2S(Const(8), Const(10), Const(12), BitsOffset(6, 1))
)
