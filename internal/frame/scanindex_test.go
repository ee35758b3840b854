package frame

import "testing"

func appendVarint(b []byte, v uint64) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b = append(b, c|0x80)
		} else {
			b = append(b, c)
			return b
		}
	}
}

func TestScanIndexTwoEntries(t *testing.T) {
	var payload []byte
	payload = appendVarint(payload, 2) // num_entries
	payload = append(payload, 0, 0, 0, 100, 0, 0, 0, 1)
	payload = appendVarint(payload, 0)   // off_delta entry 0
	payload = appendVarint(payload, 100) // ticks entry 0
	payload = appendVarint(payload, 1)   // framecount entry 0
	payload = appendVarint(payload, 500) // off_delta entry 1
	payload = appendVarint(payload, 200) // ticks entry 1
	payload = appendVarint(payload, 3)   // framecount entry 1

	box, err := ScanIndex(payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(box.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(box.Entries))
	}
	if box.TicksNumerator != 100 || box.TicksDenominator != 1 {
		t.Fatalf("got TNUM=%d TDEN=%d", box.TicksNumerator, box.TicksDenominator)
	}
	if box.AbsoluteOffset(0) != 0 || box.AbsoluteOffset(1) != 500 {
		t.Fatalf("got offsets %d, %d", box.AbsoluteOffset(0), box.AbsoluteOffset(1))
	}
	if box.TotalDisplayedFrames() != 4 {
		t.Fatalf("got %d total displayed frames, want 4", box.TotalDisplayedFrames())
	}
}

func TestScanIndexTruncatedPayloadFails(t *testing.T) {
	if _, err := ScanIndex([]byte{1}); err == nil {
		t.Fatal("expected error for truncated jxli payload")
	}
}
