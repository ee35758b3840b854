package color

import "math"

// XYB is JPEG XL's native coding color space: a scaled, biased variant
// of LMS cone response designed so DCT quantization error distributes
// evenly across human-perceptible error (spec §9 "XYB<->linear").
//
// Shaped as a matrix-multiply followed by a per-channel nonlinearity,
// generalized from a plain linear 3x3 transform to XYB's nonlinear
// cube-root mixing matrix.
const (
	xybBiasR  = 0.00037930734
	xybBiasG  = 0.00037930734
	xybBiasB  = 0.00037930734
	xybBiasCbrt = 0.155954200549248
)

// mix is the LMS-like mixing matrix applied before the cube root.
var xybMixMatrix = [3][3]float64{
	{0.3, 0.622, 0.078},
	{0.23, 0.692, 0.078},
	{0.24342268924547819, 0.20476744424496821, 0.54558012385139612},
}

// LinearToXYB converts a linear-light RGB triple to XYB.
func LinearToXYB(r, g, b float64) (x, y, z float64) {
	l := xybMixMatrix[0][0]*r + xybMixMatrix[0][1]*g + xybMixMatrix[0][2]*b + xybBiasR
	m := xybMixMatrix[1][0]*r + xybMixMatrix[1][1]*g + xybMixMatrix[1][2]*b + xybBiasG
	s := xybMixMatrix[2][0]*r + xybMixMatrix[2][1]*g + xybMixMatrix[2][2]*b + xybBiasB

	lCbrt := math.Cbrt(l) - xybBiasCbrt
	mCbrt := math.Cbrt(m) - xybBiasCbrt
	sCbrt := math.Cbrt(s) - xybBiasCbrt

	x = 0.5 * (lCbrt - mCbrt)
	y = 0.5 * (lCbrt + mCbrt)
	z = sCbrt
	return x, y, z
}

// invXybMixMatrix is the inverse of xybMixMatrix, used to undo the
// premultiplication step of XYBToLinear.
var invXybMixMatrix = invert3x3(xybMixMatrix)

// XYBToLinear converts an XYB triple back to linear-light RGB.
func XYBToLinear(x, y, z float64) (r, g, b float64) {
	lCbrt := x + y + xybBiasCbrt
	mCbrt := y - x + xybBiasCbrt
	sCbrt := z + xybBiasCbrt

	l := lCbrt*lCbrt*lCbrt - xybBiasR
	m := mCbrt*mCbrt*mCbrt - xybBiasG
	s := sCbrt*sCbrt*sCbrt - xybBiasB

	r = invXybMixMatrix[0][0]*l + invXybMixMatrix[0][1]*m + invXybMixMatrix[0][2]*s
	g = invXybMixMatrix[1][0]*l + invXybMixMatrix[1][1]*m + invXybMixMatrix[1][2]*s
	b = invXybMixMatrix[2][0]*l + invXybMixMatrix[2][1]*m + invXybMixMatrix[2][2]*s
	return r, g, b
}

// invert3x3 computes the matrix inverse via Cramer's rule; the XYB
// mixing matrix is well-conditioned and invertible by construction.
func invert3x3(m [3][3]float64) [3][3]float64 {
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])

	var inv [3][3]float64
	invDet := 1.0 / det
	inv[0][0] = (m[1][1]*m[2][2] - m[1][2]*m[2][1]) * invDet
	inv[0][1] = (m[0][2]*m[2][1] - m[0][1]*m[2][2]) * invDet
	inv[0][2] = (m[0][1]*m[1][2] - m[0][2]*m[1][1]) * invDet
	inv[1][0] = (m[1][2]*m[2][0] - m[1][0]*m[2][2]) * invDet
	inv[1][1] = (m[0][0]*m[2][2] - m[0][2]*m[2][0]) * invDet
	inv[1][2] = (m[0][2]*m[1][0] - m[0][0]*m[1][2]) * invDet
	inv[2][0] = (m[1][0]*m[2][1] - m[1][1]*m[2][0]) * invDet
	inv[2][1] = (m[0][1]*m[2][0] - m[0][0]*m[2][1]) * invDet
	inv[2][2] = (m[0][0]*m[1][1] - m[0][1]*m[1][0]) * invDet
	return inv
}
