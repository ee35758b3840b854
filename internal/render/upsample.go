package render

// Upsample performs a separable 2^shift nearest/bilinear-blend upscale
// of src into a new plane of size (src.Width<<shift, src.Height<<shift)
// (spec §4.6 step 2, "per-channel chroma upsample"), blending toward
// each of the four surrounding coarse samples, parametrized by shift
// rather than fixed to one doubling.
func Upsample(src *Plane, shift int) *Plane {
	if shift <= 0 {
		out := NewPlane(src.Width, src.Height)
		copy(out.Data, src.Data)
		return out
	}
	factor := 1 << uint(shift)
	out := NewPlane(src.Width*factor, src.Height*factor)
	for y := 0; y < out.Height; y++ {
		sy := y / factor
		fy := float64(y%factor) / float64(factor)
		for x := 0; x < out.Width; x++ {
			sx := x / factor
			fx := float64(x%factor) / float64(factor)

			tl := src.At(sx, sy)
			tr := src.At(sx+1, sy)
			bl := src.At(sx, sy+1)
			br := src.At(sx+1, sy+1)

			top := float64(tl) + (float64(tr)-float64(tl))*fx
			bot := float64(bl) + (float64(br)-float64(bl))*fx
			out.Set(x, y, float32(top+(bot-top)*fy))
		}
	}
	return out
}
