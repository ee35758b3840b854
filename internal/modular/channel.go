package modular

import "github.com/jxl-go/jxl/internal/entropy"

// unpackSigned undoes JPEG XL's zigzag packing of signed residuals into
// the unsigned integers the entropy coder actually transmits (spec
// §4.4 "decode the residual ... add to the predictor's value" assumes
// this standard mapping, used throughout the format for residuals).
func unpackSigned(u uint32) int32 {
	if u&1 == 0 {
		return int32(u >> 1)
	}
	return -int32((u + 1) >> 1)
}

// Channel is one decoded modular plane.
type Channel struct {
	Width, Height int
	Data          []int32
}

// ReadStream decodes one channel's group-sized patch by walking tree
// for every pixel, in row-major order: predict from causal neighbors,
// decode the residual from the leaf's context via sr, add, store (spec
// §4.4 "Modular read_stream"). The tree selects among 14 predictors
// per leaf context rather than a single fixed predictor.
func ReadStream(sr *entropy.SymbolReader, tree Tree, channel, width, height int) (*Channel, error) {
	ch := &Channel{Width: width, Height: height, Data: make([]int32, width*height)}
	wp := NewWeightedPredictor()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			n := neighborhoodAt(ch.Data, width, height, x, y)
			leaf := tree.Leaf(channel, x, y, n)

			weightedEst := wp.Estimate(n)
			pred := Predict(leaf.Predictor, n, weightedEst)

			sym, err := sr.ReadSymbol(leaf.Context)
			if err != nil {
				return nil, err
			}
			residual := unpackSigned(sym) * leaf.Multiplier

			val := pred + residual
			ch.Data[y*width+x] = val
			wp.Update(n, val)
		}
	}
	return ch, nil
}
