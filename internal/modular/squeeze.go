package modular

import "github.com/jxl-go/jxl/internal/xlerr"

// maxSqueeze is the per-dimension shift ceiling (spec §4.5: "Squeeze
// shift overflow fails with TooManySqueezes (any dimension shift >
// 30)").
const maxSqueeze = 30

// UnsqueezeScalar inverts one avg/residual pair into two adjacent
// samples along the squeezed axis (spec §4.5 "three-tap predictor").
// nextAvg and prevOut follow the spec's documented edge defaults: the
// caller passes the neighbor-grid sample (or, at an edge, avg/avg[0]
// respectively).
func UnsqueezeScalar(avg, res, nextAvg, prevOut int32) (a, b int32) {
	tendency := smoothTendency(prevOut, avg, nextAvg)
	diff := res + tendency
	a = avg + (diff >> 1)
	b = a - diff
	return a, b
}

// smoothTendency mirrors the lifting scheme's standard "predict the
// residual's own bias from how the averages are trending" correction:
// when the local average sequence is flat, no correction is applied;
// when it's trending, the odd/even split is nudged to avoid a
// sawtooth artifact at the boundary.
func smoothTendency(prevOut, avg, nextAvg int32) int32 {
	if prevOut >= avg && avg >= nextAvg {
		diff := ((prevOut - nextAvg) * 4 + 6) / 12
		maxDiff := prevOut - avg
		if diff > maxDiff {
			diff = maxDiff
		}
		minDiff := avg - nextAvg
		if diff < -minDiff {
			diff = -minDiff
		}
		return diff
	}
	if prevOut <= avg && avg <= nextAvg {
		diff := ((prevOut - nextAvg) * 4 + 6) / 12
		maxDiff := nextAvg - avg
		if diff > maxDiff {
			diff = maxDiff
		}
		minDiff := avg - prevOut
		if diff < -minDiff {
			diff = -minDiff
		}
		return diff
	}
	return 0
}

// UnsqueezeHorizontal expands a width/2-wide avg/res channel pair into
// a width-wide output row, using the triangle-filter fallback (spec §9
// "Modular progressive flush": "(avg_prev+3avg)/4, (3avg+avg_next)/4")
// whenever the residual channel is nil (not yet decoded, e.g. during a
// progressive flush).
func UnsqueezeHorizontal(avg, res []int32, outWidth int) ([]int32, error) {
	if shiftOf(outWidth) > maxSqueeze {
		return nil, xlerr.New(xlerr.TooManySqueezes, "horizontal squeeze width %d exceeds shift budget", outWidth)
	}
	out := make([]int32, outWidth)
	for i := range avg {
		var r int32
		if res != nil && i < len(res) {
			r = res[i]
		}
		var nextAvg, prevOut int32
		if i+1 < len(avg) {
			nextAvg = avg[i+1]
		} else {
			nextAvg = avg[i]
		}
		if i > 0 {
			prevOut = out[2*i-1]
		} else {
			prevOut = avg[0]
		}
		a, b := UnsqueezeScalar(avg[i], r, nextAvg, prevOut)
		out[2*i] = a
		if 2*i+1 < outWidth {
			out[2*i+1] = b
		}
	}
	return out, nil
}

// UnsqueezeVertical is UnsqueezeHorizontal's vertical counterpart:
// the same three-tap predictor applied column by column along the
// other axis, reusing UnsqueezeHorizontal on each column in turn.
func UnsqueezeVertical(avg, res []int32, width, outHeight int) ([]int32, error) {
	if width == 0 {
		return nil, nil
	}
	avgHeight := len(avg) / width
	out := make([]int32, width*outHeight)
	avgCol := make([]int32, avgHeight)
	var resCol []int32
	if res != nil {
		resCol = make([]int32, len(res)/width)
	}
	for x := 0; x < width; x++ {
		for y := 0; y < avgHeight; y++ {
			avgCol[y] = avg[y*width+x]
		}
		if resCol != nil {
			for y := range resCol {
				resCol[y] = res[y*width+x]
			}
		}
		col, err := UnsqueezeHorizontal(avgCol, resCol, outHeight)
		if err != nil {
			return nil, err
		}
		for y := 0; y < outHeight; y++ {
			out[y*width+x] = col[y]
		}
	}
	return out, nil
}

// UnsqueezeHorizontalPlane applies UnsqueezeHorizontal row by row to
// reconstruct a full avgWidth*height (avg) / resWidth*height (res)
// channel pair into an outWidth*height output, the plane-level
// counterpart UnsqueezeVertical already provides for the other axis.
func UnsqueezeHorizontalPlane(avg, res []int32, avgWidth, height, outWidth int) ([]int32, error) {
	if avgWidth == 0 || height == 0 {
		return nil, nil
	}
	out := make([]int32, outWidth*height)
	var resWidth int
	if res != nil {
		resWidth = len(res) / height
	}
	for y := 0; y < height; y++ {
		avgRow := avg[y*avgWidth : (y+1)*avgWidth]
		var resRow []int32
		if res != nil {
			resRow = res[y*resWidth : (y+1)*resWidth]
		}
		row, err := UnsqueezeHorizontal(avgRow, resRow, outWidth)
		if err != nil {
			return nil, err
		}
		copy(out[y*outWidth:(y+1)*outWidth], row)
	}
	return out, nil
}

func shiftOf(n int) int {
	s := 0
	for n > 1 {
		n >>= 1
		s++
	}
	return s
}
