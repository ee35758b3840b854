package entropy

import (
	"github.com/jxl-go/jxl/internal/bitio"
	"github.com/jxl-go/jxl/internal/pool"
	"github.com/jxl-go/jxl/internal/xlerr"
)

// ansPrecisionBits is the table precision (spec §4.3: "12-bit-precision
// table of 4096 entries").
const ansPrecisionBits = 12
const ansTableSize = 1 << ansPrecisionBits
const ansInitState = uint32(0x130000) // spec-defined final-state check constant

// ansSlot is one of the 4096 table entries: which symbol owns this
// state-space slot, and the (offset, cutoff) pair used to compute the
// next state on decode.
type ansSlot struct {
	symbol uint16
	offset uint16
	cutoff uint16
}

// ANSTable is the per-cluster frequency table built from a decoded
// symbol distribution.
type ANSTable struct {
	slots [ansTableSize]ansSlot
}

// BuildANSTable builds the 4096-entry lookup table from per-symbol
// frequencies (which must sum to ansTableSize). Symbols with zero
// frequency own no slots. This follows the same "table of
// {symbol,offset,cutoff} triples indexed by low state bits" shape as
// the Huffman two-level table (see huffman.go / DESIGN.md) generalized
// to ANS's renormalizing state machine instead of a fixed-length code.
func BuildANSTable(freqs []uint32) (*ANSTable, error) {
	var total uint32
	for _, f := range freqs {
		total += f
	}
	if total != ansTableSize {
		return nil, xlerr.New(xlerr.InvalidHuffman, "ANS frequencies sum to %d, want %d", total, ansTableSize)
	}
	t := &ANSTable{}
	pos := uint32(0)
	for sym, f := range freqs {
		if f == 0 {
			continue
		}
		for i := uint32(0); i < f; i++ {
			t.slots[pos+i] = ansSlot{
				symbol: uint16(sym),
				offset: uint16(i),
				cutoff: uint16(f),
			}
		}
		pos += f
	}
	return t, nil
}

// ReadFlatDistribution reads the simplest ANS distribution shortcut: a
// single symbol owning the entire table (used when a cluster's
// alphabet collapses to one live symbol, e.g. the LZ77-disabled
// degenerate case).
func ReadFlatDistribution(symbol int, alphabetSize int) []uint32 {
	freqs := pool.GetUint32(alphabetSize)
	freqs[symbol] = ansTableSize
	return freqs
}

// ReadANSDistribution reads a per-cluster frequency table from the
// bitstream. Each live symbol's frequency is coded as a hybrid-uint
// value (split_exponent=10, msb=1, lsb=1 mirrors the source's default
// distribution code shape) after a unary-coded "is this symbol live"
// prefix; the final implicit symbol's frequency fills the remainder so
// that all frequencies always sum to exactly ansTableSize.
func ReadANSDistribution(br *bitio.Reader, alphabetSize int) ([]uint32, error) {
	freqs := pool.GetUint32(alphabetSize)
	remaining := uint32(ansTableSize)
	cfg := HybridUintConfig{SplitExponent: 10, MsbInToken: 1, LsbInToken: 1}
	lastLive := -1
	for s := 0; s < alphabetSize && remaining > 0; s++ {
		isLive, err := br.Read(1)
		if err != nil {
			return nil, err
		}
		if isLive == 0 {
			continue
		}
		token, err := br.Read(bitsFor(int(remaining)))
		if err != nil {
			return nil, err
		}
		v, err := cfg.Decode(br, uint32(token))
		if err != nil {
			return nil, err
		}
		if v == 0 {
			v = 1
		}
		if v > remaining {
			v = remaining
		}
		freqs[s] = v
		remaining -= v
		lastLive = s
	}
	if remaining > 0 {
		if lastLive < 0 {
			return nil, xlerr.New(xlerr.InvalidHuffman, "ANS distribution has no live symbols")
		}
		freqs[lastLive] += remaining
	}
	return freqs, nil
}

// ANSReader is the stateful symbol decoder for one cluster's table,
// per spec §4.3: 32-bit state, 16-bit renormalization chunks.
type ANSReader struct {
	state uint32
	br    *bitio.Reader
}

// NewANSReader reads the initial 32-bit state word from br.
func NewANSReader(br *bitio.Reader) (*ANSReader, error) {
	v, err := br.Read(32)
	if err != nil {
		return nil, err
	}
	return &ANSReader{state: uint32(v), br: br}, nil
}

// ReadSymbol decodes one symbol against t and advances the ANS state.
func (r *ANSReader) ReadSymbol(t *ANSTable) (uint32, error) {
	slot := t.slots[r.state&(ansTableSize-1)]
	r.state = (r.state>>ansPrecisionBits)*uint32(slot.cutoff) + uint32(slot.offset)
	if r.state < (1 << 16) {
		bits, err := r.br.Read(16)
		if err != nil {
			return 0, err
		}
		r.state = (r.state << 16) | uint32(bits)
	}
	return uint32(slot.symbol), nil
}

// CheckFinalState validates that the reader ended in the spec-defined
// terminal state, the ANS analogue of a CRC over the decoded stream.
func (r *ANSReader) CheckFinalState() error {
	if r.state != ansInitState {
		return xlerr.New(xlerr.ArithmeticOverflow, "ANS final state %#x != %#x", r.state, ansInitState)
	}
	return nil
}
