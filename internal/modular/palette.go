package modular

// PalettePredictor selects which predictor reconstructs delta-coded
// palette entries beyond the first num_colors (spec §4.5 "Palette").
type PalettePredictor int

const (
	PaletteZero PalettePredictor = iota
	PaletteWeighted
	PaletteAverageAll
)

// InversePalette reconstructs numCh output channels from one
// palette-index channel and a palette table of shape
// (numColors+numDeltas) x numCh. Rows at index >= numColors are delta
// entries: the predictor's estimate (built from already-reconstructed
// output rows, row-serial) is added back. Supports an arbitrary output
// channel count and delta-residual rows, not just a fixed flat palette.
func InversePalette(indices []int32, palette [][]int32, numColors int, predictor PalettePredictor, width int) [][]int32 {
	numCh := len(palette[0])
	height := (len(indices) + width - 1) / width
	out := make([][]int32, numCh)
	for c := range out {
		out[c] = make([]int32, len(indices))
	}

	wp := make([]*WeightedPredictor, numCh)
	for c := range wp {
		wp[c] = NewWeightedPredictor()
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pos := y*width + x
			if pos >= len(indices) {
				continue
			}
			idx := indices[pos]
			if idx < 0 {
				idx = 0
			}
			if int(idx) >= len(palette) {
				idx = int32(len(palette) - 1)
			}
			row := palette[idx]
			for c := 0; c < numCh; c++ {
				if int(idx) < numColors {
					out[c][pos] = row[c]
					continue
				}
				n := neighborhoodAt(out[c], width, height, x, y)
				var est int32
				switch predictor {
				case PaletteWeighted:
					est = wp[c].Estimate(n)
				case PaletteAverageAll:
					est = Predict(PredictorAvgAll, n, 0)
				default:
					est = 0
				}
				val := est + row[c]
				out[c][pos] = val
				if predictor == PaletteWeighted {
					wp[c].Update(n, val)
				}
			}
		}
	}
	return out
}

// neighborhoodAt gathers causal neighbors of (x,y) from a
// partially-filled row-major plane, clamping at borders for the first
// row/column.
func neighborhoodAt(plane []int32, width, height, x, y int) Neighborhood {
	at := func(xx, yy int) int32 {
		if xx < 0 {
			xx = 0
		}
		if yy < 0 {
			yy = 0
		}
		if xx >= width {
			xx = width - 1
		}
		pos := yy*width + xx
		if pos < 0 || pos >= len(plane) {
			return 0
		}
		return plane[pos]
	}
	return Neighborhood{
		West:       at(x-1, y),
		North:      at(x, y-1),
		NorthWest:  at(x-1, y-1),
		NorthEast:  at(x+1, y-1),
		WestWest:   at(x-2, y),
		NorthNorth: at(x, y-2),
	}
}
