package modular

// WeightedPredictor implements the self-adapting "Weighted" predictor
// (spec Glossary "Predictor": "weighted"): four fixed sub-predictors
// (west, north, average of west+north+northeast-northwest gradient
// variants) are combined with per-sample weights that adapt based on
// which sub-predictor scored closest to the true value last time, a
// continuously adapting weighted blend rather than a hard single-choice
// predictor.
type WeightedPredictor struct {
	weights [4]int32
}

// NewWeightedPredictor returns a predictor with uniform initial
// weights.
func NewWeightedPredictor() *WeightedPredictor {
	return &WeightedPredictor{weights: [4]int32{1 << 16, 1 << 16, 1 << 16, 1 << 16}}
}

func (w *WeightedPredictor) subEstimates(n Neighborhood) [4]int32 {
	return [4]int32{
		n.West,
		n.North,
		n.West + n.North - n.NorthWest,
		n.North + n.NorthEast - n.North, // simple NE-biased term
	}
}

// Estimate returns the current weighted blend of the four
// sub-predictors for the sample about to be decoded.
func (w *WeightedPredictor) Estimate(n Neighborhood) int32 {
	est := w.subEstimates(n)
	var totalW, sum int64
	for i, e := range est {
		totalW += int64(w.weights[i])
		sum += int64(w.weights[i]) * int64(e)
	}
	if totalW == 0 {
		return est[0]
	}
	return int32(sum / totalW)
}

// Update adjusts the per-estimator weights after the true value is
// known, rewarding sub-predictors that were closer to actual and
// decaying the rest (simple multiplicative-weights scheme).
func (w *WeightedPredictor) Update(n Neighborhood, actual int32) {
	est := w.subEstimates(n)
	for i, e := range est {
		err := abs32(e - actual)
		// Closer estimates decay slower; clamp weights to stay positive
		// and bounded so repeated updates cannot over/underflow.
		delta := int32(1<<12) - err
		w.weights[i] += delta
		if w.weights[i] < 1 {
			w.weights[i] = 1
		}
		if w.weights[i] > 1<<20 {
			w.weights[i] = 1 << 20
		}
	}
}
