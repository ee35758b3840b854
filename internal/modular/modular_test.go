package modular

import "testing"

func TestInverseRCTYCoCgRoundTripsAgainstForward(t *testing.T) {
	// Forward YCoCg for one pixel (R,G,B) = (200,50,10):
	co := int32(200) - int32(10)
	tmp := int32(10) + (co >> 1)
	cg := int32(50) - tmp
	y := tmp + (cg >> 1)

	a := []int32{co}
	b := []int32{cg}
	c := []int32{y}
	if err := InverseRCT(RCTYCoCg, 0, a, b, c); err != nil {
		t.Fatal(err)
	}
	if a[0] != 200 || b[0] != 50 || c[0] != 10 {
		t.Fatalf("got (%d,%d,%d), want (200,50,10)", a[0], b[0], c[0])
	}
}

func TestInverseRCTRejectsMismatchedLengths(t *testing.T) {
	a := []int32{1, 2}
	b := []int32{1}
	c := []int32{1}
	if err := InverseRCT(RCTNoop, 0, a, b, c); err == nil {
		t.Fatal("expected error for mismatched channel lengths")
	}
}

func TestUnsqueezeScalarFlatSequenceIsExact(t *testing.T) {
	// A flat avg sequence (no trend) with zero residual must reproduce
	// the same value on both output samples.
	a, b := UnsqueezeScalar(10, 0, 10, 10)
	if a != 10 || b != 10 {
		t.Fatalf("got (%d,%d), want (10,10)", a, b)
	}
}

func TestUnsqueezeHorizontalDoublesWidth(t *testing.T) {
	avg := []int32{5, 7, 9}
	res := []int32{0, 0, 0}
	out, err := UnsqueezeHorizontal(avg, res, 6)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 6 {
		t.Fatalf("got len %d, want 6", len(out))
	}
}

func TestInversePaletteZeroPredictorCopiesLiveEntries(t *testing.T) {
	// 2 live colors, no delta rows; every index should copy straight
	// from the palette table.
	palette := [][]int32{{100, 200}, {10, 20}}
	indices := []int32{0, 1, 1, 0}
	out := InversePalette(indices, palette, 2, PaletteZero, 2)
	wantCh0 := []int32{100, 10, 10, 100}
	wantCh1 := []int32{200, 20, 20, 200}
	for i := range wantCh0 {
		if out[0][i] != wantCh0[i] || out[1][i] != wantCh1[i] {
			t.Fatalf("pixel %d: got (%d,%d) want (%d,%d)", i, out[0][i], out[1][i], wantCh0[i], wantCh1[i])
		}
	}
}

func TestPredictZeroAndWestAndNorth(t *testing.T) {
	n := Neighborhood{West: 3, North: 7}
	if Predict(PredictorZero, n, 0) != 0 {
		t.Fatal("zero predictor should return 0")
	}
	if Predict(PredictorWest, n, 0) != 3 {
		t.Fatal("west predictor should return west neighbor")
	}
	if Predict(PredictorNorth, n, 0) != 7 {
		t.Fatal("north predictor should return north neighbor")
	}
}

func TestUnpackSigned(t *testing.T) {
	cases := map[uint32]int32{0: 0, 1: -1, 2: 1, 3: -2, 4: 2}
	for u, want := range cases {
		if got := unpackSigned(u); got != want {
			t.Fatalf("unpackSigned(%d) = %d, want %d", u, got, want)
		}
	}
}
