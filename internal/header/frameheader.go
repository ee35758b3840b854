package header

import (
	"github.com/jxl-go/jxl/internal/bitio"
	"github.com/jxl-go/jxl/internal/xlerr"
)

// FrameType enumerates the four frame roles a TOC entry can play.
type FrameType int

const (
	FrameRegular FrameType = iota
	FrameLF
	FrameReferenceOnly
	FrameSkipProgressive
)

// FrameEncoding selects which pixel pipeline a frame's groups decode
// through.
type FrameEncoding int

const (
	EncodingVarDCT FrameEncoding = iota
	EncodingModular
)

// BlendMode enumerates how a frame composites onto its blend target.
type BlendMode int

const (
	BlendReplace BlendMode = iota
	BlendAdd
	BlendBlend
	BlendAlphaWeightedAdd
	BlendMul
)

// ChannelBlendInfo is the per-channel blend configuration (one entry
// for color, one per extra channel).
type ChannelBlendInfo struct {
	Mode        BlendMode
	AlphaSlot   uint32
	Clamp       bool
	SourceSlot  uint32
}

// PassesDescriptor describes progressive-pass structure.
type PassesDescriptor struct {
	NumPasses          uint32
	DownsampleShifts   []uint32
	LastPassForDS      []uint32
}

// RestorationFilterParams bundles Gaborish and the three EPF iterations.
type RestorationFilterParams struct {
	Gaborish bool
	EPFIters uint32
}

// Crop describes a frame's placement within the full image canvas.
type Crop struct {
	X0, Y0 int32
	Width, Height uint32
}

// FrameHeader is the decoded per-frame header (spec §3 "FrameHeader").
type FrameHeader struct {
	Type     FrameType
	Encoding FrameEncoding

	Upsampling   uint32
	ECUpsampling []uint32

	Passes PassesDescriptor

	HasCrop bool
	Crop    Crop

	ChannelBlend []ChannelBlendInfo

	DurationTicks uint32
	Timecode      uint32

	SaveAsReference int32 // -1 == none, else 0..3
	SaveBeforeCT    bool
	LFLevel         uint32

	Restoration RestorationFilterParams

	JPEGUpsamplingShifts [3]uint32
}

// DecodeFrameHeader reads a FrameHeader from br. numExtraChannels and
// animated are threaded in explicitly from the file header (the
// "nonserialized context" the grammar refers to, spec §9) rather than
// captured implicitly.
func DecodeFrameHeader(br *bitio.Reader, numExtraChannels int, animated bool) (*FrameHeader, error) {
	fh := &FrameHeader{SaveAsReference: -1}

	ftype, err := br.Read(2)
	if err != nil {
		return nil, err
	}
	fh.Type = FrameType(ftype)

	encoding, err := br.Read(1)
	if err != nil {
		return nil, err
	}
	fh.Encoding = FrameEncoding(encoding)

	upsampling, err := distUpsampling.Decode(br)
	if err != nil {
		return nil, err
	}
	fh.Upsampling = upsampling

	fh.ECUpsampling = make([]uint32, numExtraChannels)
	for i := range fh.ECUpsampling {
		u, err := distUpsampling.Decode(br)
		if err != nil {
			return nil, err
		}
		fh.ECUpsampling[i] = u
	}

	numPasses, err := distSmallCount.Decode(br)
	if err != nil {
		return nil, err
	}
	if numPasses == 0 {
		numPasses = 1
	}
	fh.Passes.NumPasses = numPasses
	if numPasses > 1 {
		numDS, err := distSmallCount.Decode(br)
		if err != nil {
			return nil, err
		}
		if numDS >= numPasses {
			return nil, xlerr.New(xlerr.NumPassesTooLarge, "num_downsample %d >= num_passes %d", numDS, numPasses)
		}
		fh.Passes.DownsampleShifts = make([]uint32, numDS)
		fh.Passes.LastPassForDS = make([]uint32, numDS)
		for i := uint32(0); i < numDS; i++ {
			shift, err := br.Read(2)
			if err != nil {
				return nil, err
			}
			last, err := distSmallCount.Decode(br)
			if err != nil {
				return nil, err
			}
			fh.Passes.DownsampleShifts[i] = uint32(shift)
			fh.Passes.LastPassForDS[i] = last
		}
	}

	hasCrop, err := br.Read(1)
	if err != nil {
		return nil, err
	}
	fh.HasCrop = hasCrop == 1
	if fh.HasCrop {
		x0, err := distSmallCount.Decode(br)
		if err != nil {
			return nil, err
		}
		y0, err := distSmallCount.Decode(br)
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
		fh.Crop = Crop{X0: int32(x0), Y0: int32(y0), Width: w, Height: h}
	}

	if fh.Type == FrameRegular || fh.Type == FrameSkipProgressive {
		fh.ChannelBlend = make([]ChannelBlendInfo, 1+numExtraChannels)
		for i := range fh.ChannelBlend {
			mode, err := br.Read(3)
			if err != nil {
				return nil, err
			}
			info := ChannelBlendInfo{Mode: BlendMode(mode)}
			if info.Mode == BlendBlend || info.Mode == BlendAlphaWeightedAdd {
				alpha, err := distSmallCount.Decode(br)
				if err != nil {
					return nil, err
				}
				clamp, err := br.Read(1)
				if err != nil {
					return nil, err
				}
				info.AlphaSlot = alpha
				info.Clamp = clamp == 1
			}
			if fh.Type != FrameRegular {
				slot, err := br.Read(2)
				if err != nil {
					return nil, err
				}
				info.SourceSlot = uint32(slot)
			}
			fh.ChannelBlend[i] = info
		}
	}

	if animated {
		dur, err := distSmallCount.Decode(br)
		if err != nil {
			return nil, err
		}
		fh.DurationTicks = dur
		tc, err := br.Read(32)
		if err != nil {
			return nil, err
		}
		fh.Timecode = uint32(tc)
	}

	saveAsRef, err := br.Read(1)
	if err != nil {
		return nil, err
	}
	if saveAsRef == 1 {
		slot, err := br.Read(2)
		if err != nil {
			return nil, err
		}
		fh.SaveAsReference = int32(slot)
	}

	saveBeforeCT, err := br.Read(1)
	if err != nil {
		return nil, err
	}
	fh.SaveBeforeCT = saveBeforeCT == 1

	if fh.Type == FrameLF {
		level, err := br.Read(2)
		if err != nil {
			return nil, err
		}
		fh.LFLevel = uint32(level)
	}

	gaborish, err := br.Read(1)
	if err != nil {
		return nil, err
	}
	fh.Restoration.Gaborish = gaborish == 1
	epfIters, err := br.Read(2)
	if err != nil {
		return nil, err
	}
	fh.Restoration.EPFIters = uint32(epfIters)

	for i := range fh.JPEGUpsamplingShifts {
		v, err := br.Read(2)
		if err != nil {
			return nil, err
		}
		fh.JPEGUpsamplingShifts[i] = uint32(v)
	}

	if err := validateFrameHeader(fh); err != nil {
		return nil, err
	}
	return fh, nil
}

// validateFrameHeader checks the invariants spec §3 calls out by name.
func validateFrameHeader(fh *FrameHeader) error {
	for i, s := range fh.Passes.DownsampleShifts {
		_ = s
		if fh.Passes.LastPassForDS[i] >= fh.Passes.NumPasses {
			return xlerr.New(xlerr.NumPassesTooLarge, "downsample %d last-pass %d >= num_passes %d", i, fh.Passes.LastPassForDS[i], fh.Passes.NumPasses)
		}
	}
	for i, u := range fh.ECUpsampling {
		shift := uint32(0)
		if i < len(fh.JPEGUpsamplingShifts) {
			shift = fh.JPEGUpsamplingShifts[i%len(fh.JPEGUpsamplingShifts)]
		}
		if u > 8 {
			return xlerr.New(xlerr.InvalidEcUpsampling, "extra-channel %d upsampling %d exceeds 8", i, u)
		}
		if (u << shift) < fh.Upsampling {
			return xlerr.New(xlerr.InvalidEcUpsampling, "extra-channel %d upsampling %d<<%d below frame upsampling %d", i, u, shift, fh.Upsampling)
		}
	}
	return nil
}
