package entropy

import (
	"testing"

	"github.com/jxl-go/jxl/internal/bitio"
)

func TestANSFlatDistributionAlwaysDecodesTheOneSymbol(t *testing.T) {
	freqs := ReadFlatDistribution(3, 8)
	table, err := BuildANSTable(freqs)
	if err != nil {
		t.Fatal(err)
	}
	// Plenty of 16-bit renorm chunks so ReadSymbol never runs dry.
	data := make([]byte, 64)
	for i := range data {
		data[i] = 0xAB
	}
	br := bitio.NewReader(data)
	reader, err := NewANSReader(br)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 16; i++ {
		sym, err := reader.ReadSymbol(table)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if sym != 3 {
			t.Fatalf("read %d: got symbol %d, want 3", i, sym)
		}
	}
}

func TestBuildANSTableRejectsBadTotal(t *testing.T) {
	freqs := []uint32{100, 200}
	if _, err := BuildANSTable(freqs); err == nil {
		t.Fatal("expected error for frequencies not summing to table size")
	}
}
