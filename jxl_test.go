package jxl

import (
	"bytes"
	"testing"

	"github.com/jxl-go/jxl/internal/container"
	jxlcolor "github.com/jxl-go/jxl/internal/color"
	"github.com/jxl-go/jxl/internal/header"
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

// allDefaultCodestream builds a bare (no container) all-default
// 1x1 file header bitstream, matching header_test.go's
// TestDecodeFileHeaderAllDefault shape but prefixed with the
// codestream signature.
func allDefaultCodestream(t *testing.T) []byte {
	t.Helper()
	sink := &bitSink{}
	sink.writeBits(1, 1) // all_default
	sink.writeBits(0, 2) // width selector -> Bits(9)+1
	sink.writeBits(0, 9) // width-1 = 0 -> width 1
	sink.writeBits(0, 2) // height selector -> Bits(9)+1
	sink.writeBits(0, 9) // height-1 = 0 -> height 1

	body := sink.bytes()
	out := make([]byte, 0, 2+len(body))
	out = append(out, container.CodestreamSignature[0], container.CodestreamSignature[1])
	out = append(out, body...)
	return out
}

func TestDecodeConfigBareCodestream(t *testing.T) {
	data := allDefaultCodestream(t)
	cfg, err := DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 1 || cfg.Height != 1 {
		t.Fatalf("got %dx%d, want 1x1", cfg.Width, cfg.Height)
	}
}

func TestProcessReachesWithImageInfo(t *testing.T) {
	data := allDefaultCodestream(t)
	d := NewDecoder()
	res, err := d.Process(data)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Complete || res.Next != StateWithImageInfo {
		t.Fatalf("got %+v, want Complete in StateWithImageInfo", res)
	}
	if d.BasicInfo() == nil || d.BasicInfo().Width != 1 {
		t.Fatalf("expected basic info width 1, got %+v", d.BasicInfo())
	}
}

func TestProcessReportsNeedsMoreInputOnTruncatedContainer(t *testing.T) {
	d := NewDecoder()
	res, err := d.Process([]byte{0x00, 0x00, 0x00, 0x0c, 'J', 'X', 'L'})
	if err != nil {
		t.Fatal(err)
	}
	if !res.NeedsMoreInput {
		t.Fatalf("got %+v, want NeedsMoreInput on a truncated container signature", res)
	}
}

func TestMapTransferFunctionDistinguishesSwappedOrdering(t *testing.T) {
	if mapTransferFunction(header.TransferPQ) != jxlcolor.TransferPQ {
		t.Fatal("TransferPQ must map to color.TransferPQ despite differing enum ordering")
	}
	if mapTransferFunction(header.TransferBT709) != jxlcolor.TransferBT709 {
		t.Fatal("TransferBT709 must map to color.TransferBT709 despite differing enum ordering")
	}
}

// TestChunkedProcessMatchesSingleShot drives Process byte-by-byte,
// growing the buffer one byte at a time until it stops asking for more
// input, and checks the resulting basic info matches a single Process
// call over the whole buffer.
func TestChunkedProcessMatchesSingleShot(t *testing.T) {
	data := allDefaultCodestream(t)

	whole := NewDecoder()
	if _, err := whole.Process(data); err != nil {
		t.Fatal(err)
	}

	chunked := NewDecoder()
	for i := 0; i < len(data); i++ {
		res, err := chunked.Process(data[i : i+1])
		if err != nil {
			t.Fatalf("byte %d: %v", i, err)
		}
		if res.Complete {
			break
		}
		if !res.NeedsMoreInput {
			t.Fatalf("byte %d: got %+v, want NeedsMoreInput or Complete", i, res)
		}
	}

	if chunked.BasicInfo() == nil || whole.BasicInfo() == nil {
		t.Fatal("expected both decoders to reach basic info")
	}
	if chunked.BasicInfo().Width != whole.BasicInfo().Width || chunked.BasicInfo().Height != whole.BasicInfo().Height {
		t.Fatalf("chunked %+v != whole %+v", chunked.BasicInfo(), whole.BasicInfo())
	}
	if chunked.State() != whole.State() {
		t.Fatalf("chunked state %v != whole state %v", chunked.State(), whole.State())
	}
}

func TestRewindReturnsToInitialized(t *testing.T) {
	data := allDefaultCodestream(t)
	d := NewDecoder()
	if _, err := d.Process(data); err != nil {
		t.Fatal(err)
	}
	d.Rewind()
	if d.State() != StateInitialized {
		t.Fatalf("got state %v, want StateInitialized", d.State())
	}
	if d.BasicInfo() != nil {
		t.Fatal("expected basic info cleared after rewind")
	}
}
