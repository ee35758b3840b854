package vardct

import "testing"

func TestAdjustedQuantBiasSpecialCases(t *testing.T) {
	biases := DefaultQuantBiases
	if v := AdjustedQuantBias(ChannelY, 0, biases); v != 0 {
		t.Fatalf("q=0 should give bias 0, got %v", v)
	}
	if v := AdjustedQuantBias(ChannelY, 1, biases); v != biases.PerChannel[ChannelY] {
		t.Fatalf("q=1 should give +biases[c], got %v", v)
	}
	if v := AdjustedQuantBias(ChannelY, -1, biases); v != -biases.PerChannel[ChannelY] {
		t.Fatalf("q=-1 should give -biases[c], got %v", v)
	}
	got := AdjustedQuantBias(ChannelY, 4, biases)
	want := 4.0 - biases.Shared/4.0
	if got != want {
		t.Fatalf("q=4: got %v want %v", got, want)
	}
}

func TestCrossChannelCorrect(t *testing.T) {
	x := []float64{1, 1}
	b := []float64{2, 2}
	y := []float64{4, 8}
	CrossChannelCorrect(x, b, y, 0.5, 0.25)
	if x[0] != 3 || x[1] != 5 {
		t.Fatalf("x: got %v", x)
	}
	if b[0] != 3 || b[1] != 4 {
		t.Fatalf("b: got %v", b)
	}
}

func TestNewGlobalScaleDMScale(t *testing.T) {
	gs := NewGlobalScale(1.0, [3]int{2, 2, 2})
	for c, v := range gs.DMScale {
		if v != 1.0 {
			t.Fatalf("channel %d: qm_scale=2 should give DMScale 1.0, got %v", c, v)
		}
	}
}
