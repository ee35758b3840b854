package modular

import (
	"github.com/jxl-go/jxl/internal/bitio"
	"github.com/jxl-go/jxl/internal/header"
)

// TransformKind selects which of the three modular transform shapes a
// transmitted Transform record applies (spec §4.5 "transform list").
type TransformKind int

const (
	TransformRCT TransformKind = iota
	TransformPalette
	TransformSqueeze
)

// SqueezeEntry is one step of a Squeeze transform's cascade: split
// NumC consecutive channels starting at BeginC into a half-size
// average channel (replacing the original in place) and an appended
// residual channel, along either axis (spec §4.5 "Squeeze").
type SqueezeEntry struct {
	Horizontal bool
	InPlace    bool
	BeginC     int
	NumC       int
}

// Transform is one decoded entry of a modular sub-image's transform
// list (spec §4.5): an RCT, a Palette, or a Squeeze cascade.
type Transform struct {
	Kind TransformKind

	BeginC int // RCT, Palette: first channel the transform applies to

	RCTType int // RCT: encodes (op, perm) together, see frame decoder

	NumC      int // Palette: number of consecutive color channels grouped
	NumColors int
	NumDeltas int
	Predictor PalettePredictor

	Squeezes []SqueezeEntry
}

// transformSmallCount mirrors header's small non-negative integer
// field shape (2-bit selector, then a literal, a 4-bit, or an 8-bit
// offset read) for the handful of small counts a transform record
// carries, without this package needing header's own unexported
// distribution tables.
var transformSmallCount = header.NewU2S(header.Const(0), header.Const(1), header.BitsOffset(4, 2), header.BitsOffset(8, 18))

// DecodeTransforms reads the modular sub-image's transform list: a
// small count of transforms, each an RCT, Palette, or Squeeze record
// (spec §4.5). Returns an empty, non-nil list when zero transforms are
// present, the common case for a plain (untransformed) modular image.
func DecodeTransforms(br *bitio.Reader) ([]Transform, error) {
	n, err := transformSmallCount.Decode(br)
	if err != nil {
		return nil, err
	}
	transforms := make([]Transform, 0, n)
	for i := uint32(0); i < n; i++ {
		kindBits, err := br.Read(2)
		if err != nil {
			return nil, err
		}
		t := Transform{Kind: TransformKind(kindBits)}

		beginC, err := transformSmallCount.Decode(br)
		if err != nil {
			return nil, err
		}
		t.BeginC = int(beginC)

		switch t.Kind {
		case TransformRCT:
			rctType, err := transformSmallCount.Decode(br)
			if err != nil {
				return nil, err
			}
			t.RCTType = int(rctType)

		case TransformPalette:
			numC, err := transformSmallCount.Decode(br)
			if err != nil {
				return nil, err
			}
			t.NumC = int(numC) + 1
			numColors, err := transformSmallCount.Decode(br)
			if err != nil {
				return nil, err
			}
			t.NumColors = int(numColors)
			numDeltas, err := transformSmallCount.Decode(br)
			if err != nil {
				return nil, err
			}
			t.NumDeltas = int(numDeltas)
			pred, err := br.Read(2)
			if err != nil {
				return nil, err
			}
			t.Predictor = PalettePredictor(pred)

		case TransformSqueeze:
			numSqueezes, err := transformSmallCount.Decode(br)
			if err != nil {
				return nil, err
			}
			t.Squeezes = make([]SqueezeEntry, numSqueezes)
			for s := range t.Squeezes {
				horiz, err := br.Read(1)
				if err != nil {
					return nil, err
				}
				inPlace, err := br.Read(1)
				if err != nil {
					return nil, err
				}
				beginC2, err := transformSmallCount.Decode(br)
				if err != nil {
					return nil, err
				}
				numC2, err := transformSmallCount.Decode(br)
				if err != nil {
					return nil, err
				}
				t.Squeezes[s] = SqueezeEntry{
					Horizontal: horiz == 1,
					InPlace:    inPlace == 1,
					BeginC:     int(beginC2),
					NumC:       int(numC2) + 1,
				}
			}
		}

		transforms = append(transforms, t)
	}
	return transforms, nil
}
