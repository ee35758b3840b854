// Package container implements the JPEG XL ISOBMFF-style box container:
// locating the codestream inside jxlc/jxlp boxes and capturing Exif/xml/
// jumb/brob metadata (spec §3, §4.2).
//
// The parser walks the container as a flat sequence of boxes: read a
// box header, dispatch on its four-character kind, advance past the
// payload. Box lengths are big-endian (ISOBMFF), with support for the
// 64-bit "XL box" extension and the "rest of file" (length==0)
// convention.
package container

import "encoding/binary"

// FourCC builds a big-endian four-character-code the way ISOBMFF boxes
// encode their kind (unlike RIFF's little-endian FourCC).
func FourCC(a, b, c, d byte) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d)
}

var (
	KindJXLSignature = FourCC('J', 'X', 'L', ' ')
	KindFtyp         = FourCC('f', 't', 'y', 'p')
	KindJxlc         = FourCC('j', 'x', 'l', 'c')
	KindJxlp         = FourCC('j', 'x', 'l', 'p')
	KindJxli         = FourCC('j', 'x', 'l', 'i')
	KindExif         = FourCC('E', 'x', 'i', 'f')
	KindXML          = FourCC('x', 'm', 'l', ' ')
	KindJumb         = FourCC('j', 'u', 'm', 'b')
	KindBrob         = FourCC('b', 'r', 'o', 'b')
)

// KindString renders a FourCC for diagnostics.
func KindString(k uint32) string {
	return string([]byte{byte(k >> 24), byte(k >> 16), byte(k >> 8), byte(k)})
}

// BoxHeaderSize is the size of a standard (non-XL) box header: 4-byte
// length + 4-byte kind.
const BoxHeaderSize = 8

// ToEOF is the sentinel box-length value meaning "extends to end of
// file", matching length==0 in the ISOBMFF box convention and playing
// the role u64::MAX plays in the source's internal API (spec §4.2).
const ToEOF = ^uint64(0)

// CodestreamSignature is the bare (non-container) codestream magic.
var CodestreamSignature = [2]byte{0xFF, 0x0A}

// ContainerSignature is the 12-byte ISOBMFF-style JXL signature box.
var ContainerSignature = [12]byte{
	0x00, 0x00, 0x00, 0x0C, 0x4A, 0x58, 0x4C, 0x20, 0x0D, 0x0A, 0x87, 0x0A,
}

func be32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
func be64(b []byte) uint64 { return binary.BigEndian.Uint64(b) }
