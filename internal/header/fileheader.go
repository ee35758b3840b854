package header

import (
	"github.com/jxl-go/jxl/internal/bitio"
	"github.com/jxl-go/jxl/internal/xlerr"
)

// ColorSpace enumerates the image's base color space.
type ColorSpace int

const (
	ColorSpaceRGB ColorSpace = iota
	ColorSpaceGray
	ColorSpaceXYB
	ColorSpaceUnknown
)

// TransferFunction enumerates the supported output transfer curves
// (spec §9 "Color" component; the decode-side of internal/color).
type TransferFunction int

const (
	TransferSRGB TransferFunction = iota
	TransferLinear
	TransferPQ
	TransferBT709
	TransferDCI
	TransferHLG
)

// ColorEncoding describes the color space, primaries, white point,
// transfer function, and rendering intent of either the image's native
// encoding or an explicitly embedded profile.
type ColorEncoding struct {
	ColorSpace       ColorSpace
	WhitePoint       uint32
	Primaries        uint32
	TransferFunction TransferFunction
	RenderingIntent  uint32
}

// BitDepth describes sample precision: either integer (BitsPerSample,
// ExpBits==0) or floating point.
type BitDepth struct {
	BitsPerSample uint32
	ExpBits       uint32
	Floating      bool
}

// ExtraChannelType enumerates the kinds of non-color channel a file may
// carry alongside its color channels.
type ExtraChannelType int

const (
	ExtraAlpha ExtraChannelType = iota
	ExtraDepth
	ExtraSpotColor
	ExtraSelectionMask
	ExtraBlack
	ExtraCFA
	ExtraThermal
	ExtraUnknown
)

// ExtraChannelInfo describes one extra (non-color) channel.
type ExtraChannelInfo struct {
	Type            ExtraChannelType
	BitDepth        BitDepth
	DimShift        uint32
	Name            string
	AlphaAssociated bool
	SpotColor       [4]float32
	CFAChannel      uint32
}

// AnimationHeader describes animation timing, present only when the
// file declares itself animated.
type AnimationHeader struct {
	TPSNumerator   uint32
	TPSDenominator uint32
	NumLoops       uint32
	HaveTimecodes  bool
}

// PreviewHeader describes the optional low-resolution preview image's
// dimensions.
type PreviewHeader struct {
	Width  uint32
	Height uint32
}

// FileHeader is the decoded JPEG XL file header (spec §3 "FileHeader").
type FileHeader struct {
	Width, Height uint32
	BitDepth      BitDepth
	Orientation   uint32

	Animation *AnimationHeader
	Preview   *PreviewHeader

	ExtraChannels []ExtraChannelInfo

	XYBEncoded bool
	Color      ColorEncoding

	// HasICCProfile marks that the embedded color profile is a raw ICC
	// blob (decoded/stored by the caller) rather than the structured
	// ColorEncoding above.
	HasICCProfile bool
}

// DecodeFileHeader reads a FileHeader from br. The nonserialized
// context the spec's field grammar threads explicitly (spec §9) is
// just br's position here: every conditional below only depends on
// fields already read, never on hidden state.
func DecodeFileHeader(br *bitio.Reader) (*FileHeader, error) {
	fh := &FileHeader{}

	allDefault, err := br.Read(1)
	if err != nil {
		return nil, err
	}

	w, err := distDimension.Decode(br)
	if err != nil {
		return nil, err
	}
	h, err := distDimension.Decode(br)
	if err != nil {
		return nil, err
	}
	fh.Width, fh.Height = w, h

	if allDefault == 1 {
		fh.BitDepth = BitDepth{BitsPerSample: 8}
		fh.Color = ColorEncoding{ColorSpace: ColorSpaceRGB, TransferFunction: TransferSRGB}
		return fh, nil
	}

	haveIntrinsicSize, err := br.Read(1)
	if err != nil {
		return nil, err
	}
	if haveIntrinsicSize == 1 {
		if _, err := distDimension.Decode(br); err != nil {
			return nil, err
		}
		if _, err := distDimension.Decode(br); err != nil {
			return nil, err
		}
	}

	havePreview, err := br.Read(1)
	if err != nil {
		return nil, err
	}
	if havePreview == 1 {
		pw, err := distDimension.Decode(br)
		if err != nil {
			return nil, err
		}
		ph, err := distDimension.Decode(br)
		if err != nil {
			return nil, err
		}
		fh.Preview = &PreviewHeader{Width: pw, Height: ph}
	}

	haveAnimation, err := br.Read(1)
	if err != nil {
		return nil, err
	}
	if haveAnimation == 1 {
		num, err := distSmallCount.Decode(br)
		if err != nil {
			return nil, err
		}
		den, err := distSmallCount.Decode(br)
		if err != nil {
			return nil, err
		}
		loops, err := distSmallCount.Decode(br)
		if err != nil {
			return nil, err
		}
		haveTC, err := br.Read(1)
		if err != nil {
			return nil, err
		}
		if num == 0 {
			num = 1
		}
		if den == 0 {
			den = 1
		}
		fh.Animation = &AnimationHeader{
			TPSNumerator:   num,
			TPSDenominator: den,
			NumLoops:       loops,
			HaveTimecodes:  haveTC == 1,
		}
	}

	bitsPerSample, err := distBitDepth.Decode(br)
	if err != nil {
		return nil, err
	}
	floating, err := br.Read(1)
	if err != nil {
		return nil, err
	}
	fh.BitDepth = BitDepth{BitsPerSample: bitsPerSample, Floating: floating == 1}
	if floating == 1 {
		expBits, err := br.Read(4)
		if err != nil {
			return nil, err
		}
		fh.BitDepth.ExpBits = uint32(expBits) + 1
	}

	orientation, err := br.Read(3)
	if err != nil {
		return nil, err
	}
	fh.Orientation = uint32(orientation) + 1

	numExtra, err := distSmallCount.Decode(br)
	if err != nil {
		return nil, err
	}
	fh.ExtraChannels = make([]ExtraChannelInfo, numExtra)
	for i := range fh.ExtraChannels {
		ec, err := decodeExtraChannelInfo(br)
		if err != nil {
			return nil, err
		}
		fh.ExtraChannels[i] = ec
	}

	xyb, err := br.Read(1)
	if err != nil {
		return nil, err
	}
	fh.XYBEncoded = xyb == 1

	hasICC, err := br.Read(1)
	if err != nil {
		return nil, err
	}
	fh.HasICCProfile = hasICC == 1
	if !fh.HasICCProfile {
		ce, err := decodeColorEncoding(br)
		if err != nil {
			return nil, err
		}
		fh.Color = ce
	} else {
		fh.Color = ColorEncoding{ColorSpace: ColorSpaceUnknown}
	}

	return fh, nil
}

func decodeExtraChannelInfo(br *bitio.Reader) (ExtraChannelInfo, error) {
	typ, err := br.Read(3)
	if err != nil {
		return ExtraChannelInfo{}, err
	}
	bps, err := distBitDepth.Decode(br)
	if err != nil {
		return ExtraChannelInfo{}, err
	}
	shift, err := distSmallCount.Decode(br)
	if err != nil {
		return ExtraChannelInfo{}, err
	}
	ec := ExtraChannelInfo{
		Type:     ExtraChannelType(typ),
		BitDepth: BitDepth{BitsPerSample: bps},
		DimShift: shift,
	}
	if ec.Type == ExtraAlpha {
		alphaAssoc, err := br.Read(1)
		if err != nil {
			return ExtraChannelInfo{}, err
		}
		ec.AlphaAssociated = alphaAssoc == 1
	}
	if ec.Type == ExtraSpotColor {
		for i := range ec.SpotColor {
			v, err := br.Read(16)
			if err != nil {
				return ExtraChannelInfo{}, err
			}
			ec.SpotColor[i] = float32(v) / float32(1<<15)
		}
	}
	if ec.Type == ExtraCFA {
		ch, err := distSmallCount.Decode(br)
		if err != nil {
			return ExtraChannelInfo{}, err
		}
		ec.CFAChannel = ch
	}
	return ec, nil
}

func decodeColorEncoding(br *bitio.Reader) (ColorEncoding, error) {
	cs, err := br.Read(2)
	if err != nil {
		return ColorEncoding{}, err
	}
	space := ColorSpace(cs)
	ce := ColorEncoding{ColorSpace: space}
	if space == ColorSpaceGray {
		wp, err := br.Read(2)
		if err != nil {
			return ColorEncoding{}, err
		}
		ce.WhitePoint = uint32(wp)
	} else if space == ColorSpaceRGB {
		wp, err := br.Read(2)
		if err != nil {
			return ColorEncoding{}, err
		}
		prim, err := br.Read(2)
		if err != nil {
			return ColorEncoding{}, err
		}
		ce.WhitePoint = uint32(wp)
		ce.Primaries = uint32(prim)
	}
	tf, err := br.Read(4)
	if err != nil {
		return ColorEncoding{}, err
	}
	if tf > uint64(TransferHLG) {
		return ColorEncoding{}, xlerr.New(xlerr.InvalidSignature, "unknown transfer function %d", tf)
	}
	ce.TransferFunction = TransferFunction(tf)
	intent, err := br.Read(2)
	if err != nil {
		return ColorEncoding{}, err
	}
	ce.RenderingIntent = uint32(intent)
	return ce, nil
}
