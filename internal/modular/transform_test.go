package modular

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jxl-go/jxl/internal/bitio"
)

type bitSink struct {
	bits []uint64
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

func TestDecodeTransformsSingleRCT(t *testing.T) {
	sink := &bitSink{}
	sink.writeBits(1, 2) // transform count selector -> Const(1)
	sink.writeBits(0, 2) // kind = TransformRCT
	sink.writeBits(0, 2) // beginC selector -> Const(0)
	sink.writeBits(2, 2) // rctType selector -> BitsOffset(4,2)
	sink.writeBits(3, 4) // rctType bits -> 3+2 = 5

	br := bitio.NewReader(sink.bytes())
	got, err := DecodeTransforms(br)
	if err != nil {
		t.Fatal(err)
	}
	want := []Transform{{Kind: TransformRCT, BeginC: 0, RCTType: 5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("DecodeTransforms mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeTransformsEmptyListIsNonNil(t *testing.T) {
	sink := &bitSink{}
	sink.writeBits(0, 2) // transform count selector -> Const(0)

	br := bitio.NewReader(sink.bytes())
	got, err := DecodeTransforms(br)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Transform{}, got); diff != "" {
		t.Fatalf("DecodeTransforms mismatch (-want +got):\n%s", diff)
	}
}
