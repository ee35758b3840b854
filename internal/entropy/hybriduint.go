// Package entropy implements the JPEG XL entropy core: hybrid-integer
// configs, the ANS/Huffman symbol coders, context maps, and the LZ77/RLE
// match-copy layer that sits in front of both (spec §4.3).
//
// The Huffman decoder builds a two-level lookup table
// (BuildHuffmanTable/ReadSymbol); the ANS table reader uses the same
// "table of {symbol,offset,cutoff} indexed by low state bits" shape,
// generalizing the Huffman table's structure to ANS's renormalizing
// state machine instead of inventing an unrelated one.
package entropy

import (
	"github.com/jxl-go/jxl/internal/bitio"
	"github.com/jxl-go/jxl/internal/xlerr"
)

// HybridUintConfig is the (split_exponent, msb_in_token, lsb_in_token)
// triple controlling how a raw token integer maps onto a decoded value
// (spec §4.3 "Hybrid-uint decode").
type HybridUintConfig struct {
	SplitExponent int
	MsbInToken    int
	LsbInToken    int
}

// DecodeHybridUintConfig reads a config from the bitstream: split_exponent
// takes log2AlphaSize bits, then msb/lsb are read conditionally on how
// much room split_exponent leaves.
func DecodeHybridUintConfig(br *bitio.Reader, log2AlphaSize int) (HybridUintConfig, error) {
	split, err := br.Read(log2AlphaSize)
	if err != nil {
		return HybridUintConfig{}, err
	}
	cfg := HybridUintConfig{SplitExponent: int(split)}
	nbits := bitsFor(cfg.SplitExponent)
	msb, err := br.Read(nbits)
	if err != nil {
		return HybridUintConfig{}, err
	}
	if int(msb) > cfg.SplitExponent {
		return HybridUintConfig{}, xlerr.New(xlerr.InvalidHuffman, "msb_in_token %d exceeds split_exponent %d", msb, cfg.SplitExponent)
	}
	cfg.MsbInToken = int(msb)
	lsb, err := br.Read(bitsFor(cfg.SplitExponent - cfg.MsbInToken))
	if err != nil {
		return HybridUintConfig{}, err
	}
	if int(lsb) > cfg.SplitExponent-cfg.MsbInToken {
		return HybridUintConfig{}, xlerr.New(xlerr.InvalidHuffman, "lsb_in_token %d too large", lsb)
	}
	cfg.LsbInToken = int(lsb)
	return cfg, nil
}

// bitsFor returns ceil(log2(n+1)), the number of bits needed to
// represent any value in [0, n].
func bitsFor(n int) int {
	if n <= 0 {
		return 0
	}
	b := 0
	for (1 << uint(b)) <= n {
		b++
	}
	return b
}

// Decode maps a raw token into its integer value, reading any
// additional "extra" bits from br per spec §4.3:
//
//	t < 2^split_exponent -> t
//	otherwise: the token's own bits below the split carry a low field
//	(lsb_in_token bits) and a high field (msb_in_token bits); what
//	remains of (t - split) above those two fields is not a value but a
//	bit *count* n -- how many further bits to pull fresh off the
//	bitstream as the "extra" field. The final value re-assembles an
//	implicit leading 1, the high field, the extra field, and the low
//	field, MSB to LSB.
func (c HybridUintConfig) Decode(br *bitio.Reader, token uint32) (uint32, error) {
	split := uint32(1) << uint(c.SplitExponent)
	if token < split {
		return token, nil
	}
	shift := uint(c.MsbInToken + c.LsbInToken)
	rest := token - split
	n := c.SplitExponent - c.MsbInToken - c.LsbInToken + int(rest>>shift)
	if n < 0 || n > 32 {
		return 0, xlerr.New(xlerr.ArithmeticOverflow, "hybrid-uint extra-bit count %d out of range", n)
	}
	lowBits := rest & ((1 << uint(c.LsbInToken)) - 1)
	highBits := (rest >> uint(c.LsbInToken)) & ((1 << uint(c.MsbInToken)) - 1)
	extra, err := br.Read(n)
	if err != nil {
		return 0, err
	}
	value := (((uint32(1) << uint(c.MsbInToken)) | highBits) << uint(n+c.LsbInToken)) + (uint32(extra) << uint(c.LsbInToken)) + lowBits
	return value, nil
}
