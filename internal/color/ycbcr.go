package color

// YCbCrToRGB and RGBToYCbCr implement BT.601-ish full-range YCbCr, used
// by JPEG XL's jpeg_upsampling/jpeg-recompression path where chroma
// channels carry legacy JPEG-style subsampled YCbCr data rather than
// XYB (spec §3 FrameHeader "jpeg_upsampling").
//
// Kept as a fixed 3x3 matrix rather than XYB's configurable one, since
// legacy YCbCr reinterpretation always uses this fixed transform.
func YCbCrToRGB(y, cb, cr float64) (r, g, b float64) {
	r = y + 1.402*cr
	g = y - 0.344136*cb - 0.714136*cr
	b = y + 1.772*cb
	return r, g, b
}

func RGBToYCbCr(r, g, b float64) (y, cb, cr float64) {
	y = 0.299*r + 0.587*g + 0.114*b
	cb = -0.168736*r - 0.331264*g + 0.5*b
	cr = 0.5*r - 0.418688*g - 0.081312*b
	return y, cb, cr
}
