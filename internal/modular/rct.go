package modular

import "github.com/jxl-go/jxl/internal/xlerr"

// RCTOp is one of the seven reversible-color-transform pixel
// operations (spec §4.5 "RCT(op 0..6, perm 0..5)").
type RCTOp int

const (
	RCTNoop RCTOp = iota
	RCTSubtractFromSecond
	RCTSubtractFromThird
	RCTSubtractFromSecondAndThird
	RCTAddAverageToSecond
	RCTAddFirstThenAverageToThird
	RCTYCoCg
)

// rctPerms is the fixed set of 6 output-channel permutations a
// transform record may select (spec §4.5 "perm reorders the three
// outputs").
var rctPerms = [6][3]int{
	{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
}

// InverseRCT undoes a reversible color transform in place across three
// equal-length channel buffers (same shape required, spec §4.5
// invariant: "on 3 consecutive equal-shape channels", else
// MixingDifferentChannels), selecting among a 7-operation family rather
// than one fixed scheme.
func InverseRCT(op RCTOp, perm int, a, b, c []int32) error {
	if len(a) != len(b) || len(b) != len(c) {
		return xlerr.New(xlerr.MixingDifferentChannels, "RCT channels have mismatched lengths %d/%d/%d", len(a), len(b), len(c))
	}
	if perm < 0 || perm >= len(rctPerms) {
		return xlerr.New(xlerr.InvalidChannelRange, "RCT perm %d out of range", perm)
	}

	for i := range a {
		v0, v1, v2 := a[i], b[i], c[i]
		switch op {
		case RCTNoop:
		case RCTSubtractFromSecond:
			v1 = v1 + v0
		case RCTSubtractFromThird:
			v2 = v2 + v0
		case RCTSubtractFromSecondAndThird:
			v1 = v1 + v0
			v2 = v2 + v0
		case RCTAddAverageToSecond:
			v1 = v1 + ((v0 + v2) >> 1)
		case RCTAddFirstThenAverageToThird:
			v2 = v2 + v0
			v1 = v1 + ((v0 + v2) >> 1)
		case RCTYCoCg:
			co, cg, y := v0, v1, v2
			tmp := y - (cg >> 1)
			g := cg + tmp
			b2 := tmp - (co >> 1)
			r := b2 + co
			v0, v1, v2 = r, g, b2
		default:
			return xlerr.New(xlerr.InvalidChannelRange, "unknown RCT op %d", op)
		}

		out := [3]int32{v0, v1, v2}
		p := rctPerms[perm]
		a[i], b[i], c[i] = out[invertPerm(p, 0)], out[invertPerm(p, 1)], out[invertPerm(p, 2)]
	}
	return nil
}

// invertPerm finds which source slot maps to output position pos under
// permutation p (p[storageSlot] = outputPosition).
func invertPerm(p [3]int, pos int) int {
	for slot, outPos := range p {
		if outPos == pos {
			return slot
		}
	}
	return pos
}
