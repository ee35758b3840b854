package bitio

import "testing"

func TestReadLSBFirst(t *testing.T) {
	// byte 0 = 0b10110010 -> LSB-first bits read as 0,1,0,0,1,1,0,1
	buf := []byte{0xb2, 0x01}
	r := NewReader(buf)
	want := []uint64{0, 1, 0, 0, 1, 1, 0, 1}
	for i, w := range want {
		got, err := r.Read(1)
		if err != nil {
			t.Fatalf("bit %d: %v", i, err)
		}
		if got != w {
			t.Fatalf("bit %d: got %d want %d", i, got, w)
		}
	}
}

func TestPeekDoesNotAdvance(t *testing.T) {
	r := NewReader([]byte{0xff, 0x00})
	a, err := r.Peek(8)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Peek(8)
	if err != nil {
		t.Fatal(err)
	}
	if a != b || a != 0xff {
		t.Fatalf("peek not idempotent: %d, %d", a, b)
	}
	if r.BitsRead() != 0 {
		t.Fatalf("peek advanced cursor: %d", r.BitsRead())
	}
}

func TestConsumeOutOfBounds(t *testing.T) {
	r := NewReader([]byte{0x01})
	if err := r.Consume(16); err == nil {
		t.Fatal("expected OutOfBounds")
	}
}

func TestJumpToByteBoundary(t *testing.T) {
	r := NewReader([]byte{0x00, 0xff})
	if _, err := r.Read(3); err != nil {
		t.Fatal(err)
	}
	if err := r.JumpToByteBoundary(); err != nil {
		t.Fatal(err)
	}
	if r.BitsRead() != 8 {
		t.Fatalf("expected aligned to byte 1, got %d bits", r.BitsRead())
	}
}

func TestJumpToByteBoundaryRejectsNonZeroPadding(t *testing.T) {
	r := NewReader([]byte{0x01})
	if _, err := r.Read(1); err != nil {
		t.Fatal(err)
	}
	if err := r.JumpToByteBoundary(); err == nil {
		t.Fatal("expected InvalidPadding")
	}
}

func TestSplitAt(t *testing.T) {
	r := NewReader([]byte{0x11, 0x22, 0x33, 0x44})
	section, err := r.SplitAt(2)
	if err != nil {
		t.Fatal(err)
	}
	v, err := section.Read(16)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x2211 {
		t.Fatalf("got %x", v)
	}
	rest, err := r.Read(16)
	if err != nil {
		t.Fatal(err)
	}
	if rest != 0x4433 {
		t.Fatalf("got %x", rest)
	}
}

func TestLargeReadAcrossBytes(t *testing.T) {
	buf := make([]byte, 10)
	for i := range buf {
		buf[i] = byte(i + 1)
	}
	r := NewReader(buf)
	v, err := r.Read(40)
	if err != nil {
		t.Fatal(err)
	}
	want := uint64(0)
	for i := 4; i >= 0; i-- {
		want = (want << 8) | uint64(buf[i])
	}
	if v != want {
		t.Fatalf("got %x want %x", v, want)
	}
}
