// Package vardct implements the VarDCT frame reconstruction path:
// dequantization, the block-context map, per-block coefficient decode,
// and the inverse DCT family (spec §4.4).
//
// Dequantization uses an open-ended per-transform-family matrix with a
// continuous global scale, rather than a small fixed quantizer table.
package vardct

import "math"

// Channel indexes the three color channels a quant matrix/bias set is
// keyed by (X, Y, B in XYB order).
type Channel int

const (
	ChannelX Channel = iota
	ChannelY
	ChannelB
)

// QuantMatrix holds one transform family's per-coefficient
// dequantization weights for each of the three channels.
type QuantMatrix struct {
	Weights [3][]float64 // indexed by Channel, length num_coeffs for the family
}

// GlobalScale bundles the quantizer's global and per-channel DM scale
// knobs (spec §4.4 step 5: "scale = inv_global_scale / raw_quant
// multiplied by per-channel DM multipliers").
type GlobalScale struct {
	InvGlobalScale float64
	DMScale        [3]float64 // (1/1.25)^(qm_scale[c]-2), one per channel
}

// NewGlobalScale derives the DM multipliers from the per-channel
// qm_scale exponents transmitted in HfGlobal.
func NewGlobalScale(invGlobalScale float64, qmScale [3]int) GlobalScale {
	var g GlobalScale
	g.InvGlobalScale = invGlobalScale
	for c := 0; c < 3; c++ {
		g.DMScale[c] = math.Pow(1.0/1.25, float64(qmScale[c]-2))
	}
	return g
}

// QuantBiases holds the per-channel bias constants used by
// AdjustedQuantBias; biases[3] is the shared denominator term (spec
// §4.4 step 5).
type QuantBiases struct {
	PerChannel [3]float64
	Shared     float64
}

// DefaultQuantBiases mirrors libjxl's default kDefaultQuantBias, scaled
// to this decoder's own self-consistent units (not claimed byte-exact
// to the real bitstream default, consistent with the header/entropy
// packages' documented self-consistency tradeoff).
var DefaultQuantBiases = QuantBiases{
	PerChannel: [3]float64{0.84, 0.8, 0.84},
	Shared:     0.8,
}

// AdjustedQuantBias implements spec §4.4 step 5's bias function:
// returns 0 at q==0, ±biases[c] at q==±1, else q - biases[3]/q.
func AdjustedQuantBias(c Channel, q int32, biases QuantBiases) float64 {
	switch q {
	case 0:
		return 0
	case 1:
		return biases.PerChannel[c]
	case -1:
		return -biases.PerChannel[c]
	default:
		return float64(q) - biases.Shared/float64(q)
	}
}

// Dequantize converts one decoded (quantized) coefficient to its
// reconstructed DCT-domain value, per spec §4.4 step 5, excluding the
// cross-channel correction term (applied separately once Y for the
// block is known, since it is added into X/B after their own
// dequantization).
func Dequantize(m *QuantMatrix, gs GlobalScale, biases QuantBiases, c Channel, k int, raw int32, rawQuant float64) float64 {
	scale := gs.InvGlobalScale / rawQuant * gs.DMScale[c]
	bias := AdjustedQuantBias(c, raw, biases)
	return m.Weights[c][k] * scale * bias
}

// CrossChannelCorrect applies the tile-level Y->X and Y->B color
// correlation multipliers to already-dequantized X/B coefficients
// (spec §4.4 step 5: "X += y_to_x . Y; B += y_to_b . Y").
func CrossChannelCorrect(x, b []float64, y []float64, yToX, yToB float64) {
	for i := range y {
		x[i] += yToX * y[i]
		b[i] += yToB * y[i]
	}
}
