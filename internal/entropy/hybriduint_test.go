package entropy

import (
	"math/bits"
	"testing"

	"github.com/jxl-go/jxl/internal/bitio"
)

// encodeForTest is the literal inverse of HybridUintConfig.Decode, used
// only to round-trip test the decode direction (encoding itself is out
// of scope for this decoder).
func encodeForTest(c HybridUintConfig, value uint32) (token uint32, extraBitsCount int, extra uint32) {
	split := uint32(1) << uint(c.SplitExponent)
	if value < split {
		return value, 0, 0
	}
	shift := uint(c.MsbInToken + c.LsbInToken)
	l := bits.Len32(value) // total bit length, top bit is the implicit 1
	n := l - c.MsbInToken - c.LsbInToken - 1
	maskM := (uint32(1) << uint(c.MsbInToken)) - 1
	maskL := (uint32(1) << uint(c.LsbInToken)) - 1
	maskN := (uint32(1) << uint(n)) - 1

	highBits := (value >> uint(n+c.LsbInToken)) & maskM
	extraVal := (value >> uint(c.LsbInToken)) & maskN
	lowBits := value & maskL

	baseN := c.SplitExponent - c.MsbInToken - c.LsbInToken
	rest := (uint32(n-baseN) << shift) | (highBits << uint(c.LsbInToken)) | lowBits
	return split + rest, n, extraVal
}

type bitSink struct {
	bits []uint64 // one bit per slot, LSB-first overall
}

func (s *bitSink) writeBits(v uint64, n int) {
	for i := 0; i < n; i++ {
		s.bits = append(s.bits, (v>>uint(i))&1)
	}
}

func (s *bitSink) bytes() []byte {
	out := make([]byte, (len(s.bits)+7)/8)
	for i, b := range s.bits {
		if b != 0 {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

func TestHybridUintRoundTrip(t *testing.T) {
	configs := []HybridUintConfig{
		{SplitExponent: 4, MsbInToken: 2, LsbInToken: 0},
		{SplitExponent: 8, MsbInToken: 3, LsbInToken: 2},
		{SplitExponent: 2, MsbInToken: 1, LsbInToken: 1},
		{SplitExponent: 0, MsbInToken: 0, LsbInToken: 0},
	}
	values := []uint32{0, 1, 2, 3, 5, 7, 15, 16, 31, 100, 255, 1000, 1 << 20}

	for _, cfg := range configs {
		for _, v := range values {
			token, nbits, extra := encodeForTest(cfg, v)
			sink := &bitSink{}
			sink.writeBits(uint64(extra), nbits)
			br := bitio.NewReader(sink.bytes())

			got, err := cfg.Decode(br, token)
			if err != nil {
				t.Fatalf("cfg=%+v v=%d: decode error: %v", cfg, v, err)
			}
			if got != v {
				t.Fatalf("cfg=%+v v=%d: got %d (token=%d nbits=%d extra=%d)", cfg, v, got, token, nbits, extra)
			}
			if int(br.BitsRead()) != nbits {
				t.Fatalf("cfg=%+v v=%d: consumed %d bits, want %d", cfg, v, br.BitsRead(), nbits)
			}
		}
	}
}
