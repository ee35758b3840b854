package color

import "testing"

func almostEqual(a, b, eps float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

func TestSRGBRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 0.001, 0.01, 0.04045, 0.2, 0.5, 0.9, 1.0} {
		got := FromLinear(TransferSRGB, ToLinear(TransferSRGB, v))
		if !almostEqual(got, v, 2e-6) {
			t.Fatalf("sRGB round trip at %v: got %v", v, got)
		}
	}
}

func TestBT709RoundTrip(t *testing.T) {
	for _, v := range []float64{0, 0.001, 0.018, 0.081, 0.3, 0.7, 1.0} {
		got := FromLinear(TransferBT709, ToLinear(TransferBT709, v))
		if !almostEqual(got, v, 2e-6) {
			t.Fatalf("BT.709 round trip at %v: got %v", v, got)
		}
	}
}

func TestPQRoundTrip(t *testing.T) {
	for _, v := range []float64{0.001, 0.1, 0.3, 0.5, 0.8, 1.0} {
		got := FromLinear(TransferPQ, ToLinear(TransferPQ, v))
		if !almostEqual(got, v, 2e-6) {
			t.Fatalf("PQ round trip at %v: got %v", v, got)
		}
	}
}

func TestHLGRoundTrip(t *testing.T) {
	for _, v := range []float64{0.01, 0.1, 0.49, 0.5, 0.51, 0.9, 1.0} {
		got := FromLinear(TransferHLG, ToLinear(TransferHLG, v))
		if !almostEqual(got, v, 2e-6) {
			t.Fatalf("HLG round trip at %v: got %v", v, got)
		}
	}
}

func TestFastSRGBApproximationWithinTolerance(t *testing.T) {
	for _, v := range []float64{0.05, 0.2, 0.5, 0.8, 1.0} {
		precise := srgbToLinear(v)
		fast := FastSRGBToLinear(v)
		if !almostEqual(precise, fast, 0.01) {
			t.Fatalf("fast sRGB approximation diverges at %v: precise=%v fast=%v", v, precise, fast)
		}
	}
}

func TestXYBRoundTrip(t *testing.T) {
	cases := [][3]float64{
		{0.5, 0.5, 0.5},
		{1.0, 0.0, 0.0},
		{0.0, 1.0, 0.0},
		{0.0, 0.0, 1.0},
		{0.2, 0.6, 0.9},
	}
	for _, c := range cases {
		x, y, z := LinearToXYB(c[0], c[1], c[2])
		r, g, b := XYBToLinear(x, y, z)
		if !almostEqual(r, c[0], 1e-6) || !almostEqual(g, c[1], 1e-6) || !almostEqual(b, c[2], 1e-6) {
			t.Fatalf("XYB round trip for %v: got (%v,%v,%v)", c, r, g, b)
		}
	}
}

func TestYCbCrRoundTrip(t *testing.T) {
	cases := [][3]float64{
		{0.5, 0.5, 0.5},
		{1.0, 0.0, 0.0},
		{0.0, 1.0, 0.0},
		{0.0, 0.0, 1.0},
		{0.3, 0.3, 0.7},
	}
	for _, c := range cases {
		y, cb, cr := RGBToYCbCr(c[0], c[1], c[2])
		r, g, b := YCbCrToRGB(y, cb, cr)
		if !almostEqual(r, c[0], 1e-6) || !almostEqual(g, c[1], 1e-6) || !almostEqual(b, c[2], 1e-6) {
			t.Fatalf("YCbCr round trip for %v: got (%v,%v,%v)", c, r, g, b)
		}
	}
}
