// Package jxl implements a decoder for the JPEG XL still/animated image
// format and registers itself with the standard library's image
// package so that image.Decode can transparently read JPEG XL files.
package jxl

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/jxl-go/jxl/internal/bitio"
	jxlcolor "github.com/jxl-go/jxl/internal/color"
	"github.com/jxl-go/jxl/internal/container"
	"github.com/jxl-go/jxl/internal/frame"
	"github.com/jxl-go/jxl/internal/header"
	"github.com/jxl-go/jxl/internal/render"
	"github.com/jxl-go/jxl/internal/xlerr"
	"go.uber.org/zap"
)

func init() {
	image.RegisterFormat("jxl", "\xff\x0a", Decode, DecodeConfig)
	image.RegisterFormat("jxl", "\x00\x00\x00\x0cJXL \x0d\x0a\x87\x0a", Decode, DecodeConfig)
}

// readAll reads all data from r, using a single exact-sized allocation
// when r reports its own length.
func readAll(r io.Reader) ([]byte, error) {
	if lr, ok := r.(interface{ Len() int }); ok {
		n := lr.Len()
		if n > 0 {
			data := make([]byte, n)
			_, err := io.ReadFull(r, data)
			return data, err
		}
	}
	return io.ReadAll(r)
}

// State is the typestate decoder's current phase (spec §4.7:
// "Initialized -> WithImageInfo -> WithFrameInfo -> WithImageInfo ->
// ... -> done").
type State int

const (
	StateInitialized State = iota
	StateWithImageInfo
	StateWithFrameInfo
	StateDone
)

// ProcessResult is the outcome of one Decoder.Process call: either the
// decoder completed work and moved to Next, or it ran out of input and
// needs SizeHint more bytes before the caller retries (spec §4.7
// "Complete(next_state) | NeedsMoreInput(fallback=self, size_hint)").
type ProcessResult struct {
	Complete       bool
	NeedsMoreInput bool
	SizeHint       uint64
	Next           State
}

// Decoder is the pull-based typestate decoder (spec §4.7). Unlike a
// byte-stream io.Reader-driven decoder, Process is re-entrant: callers
// append more bytes to the buffer and call Process again on
// NeedsMoreInput, never losing prior progress.
//
// Buffers everything seen so far and reparses from scratch on each
// call rather than resuming mid-bitstream; a production streaming
// parser would instead thread partial-parse continuations through
// internal/header and internal/frame, but this decoder accepts the
// (bounded) re-parse cost for every retry.
type Decoder struct {
	Log *zap.Logger

	state State
	buf   []byte

	codestream  []byte
	fileHeader  *header.FileHeader
	frameHeader *header.FrameHeader

	store        *frame.Store
	frameDecoder *frame.Decoder
	lastBuffer   *render.FrameBuffer

	completedFrames int
	skipNext        bool

	pixelFormat    PixelFormat
	outputTransfer jxlcolor.TransferFunction
}

// NewDecoder builds a Decoder in StateInitialized.
func NewDecoder() *Decoder {
	return &Decoder{
		Log:            zap.NewNop(),
		state:          StateInitialized,
		store:          frame.NewStore(),
		pixelFormat:    PixelFormat{ColorType: ColorRGBA, DataType: DataU8},
		outputTransfer: jxlcolor.TransferSRGB,
	}
}

// State returns the decoder's current typestate.
func (d *Decoder) State() State { return d.state }

// Rewind returns the decoder to StateInitialized; previously decoded
// frames can then be re-decoded from the buffered input (spec §4.7).
func (d *Decoder) Rewind() {
	d.state = StateInitialized
	d.fileHeader = nil
	d.frameHeader = nil
	d.frameDecoder = nil
	d.completedFrames = 0
	d.store = frame.NewStore()
}

// BasicInfo returns the decoded FileHeader; valid once the decoder has
// reached StateWithImageInfo or later.
func (d *Decoder) BasicInfo() *header.FileHeader { return d.fileHeader }

// CurrentFrameHeader returns the most recently decoded FrameHeader;
// valid in StateWithFrameInfo.
func (d *Decoder) CurrentFrameHeader() *header.FrameHeader { return d.frameHeader }

// HasMoreFrames reports whether the file header declares an animation.
// It does not track how many frames remain: it stays true for an
// animated file after its last frame.
func (d *Decoder) HasMoreFrames() bool {
	return d.fileHeader != nil && d.fileHeader.Animation != nil
}

// ColorType selects the channel layout FlushPixelsTo packs samples
// into (spec §6 "JxlOutputBuffer": color type x data format).
type ColorType int

const (
	ColorGrayscale ColorType = iota
	ColorGrayscaleAlpha
	ColorRGB
	ColorRGBA
)

// DataType selects the per-sample storage width FlushPixelsTo packs
// into, little-endian for the multi-byte formats.
type DataType int

const (
	DataU8 DataType = iota
	DataU16
	DataF32
)

// PixelFormat is the caller-requested output layout (spec §6).
type PixelFormat struct {
	ColorType ColorType
	DataType  DataType
}

// SetPixelFormat selects the layout FlushPixelsTo packs samples into;
// FlushPixels is unaffected, always packing 8-bit RGBA for
// image.RGBA's stdlib contract.
func (d *Decoder) SetPixelFormat(pf PixelFormat) { d.pixelFormat = pf }

// PixelFormat returns the layout last set by SetPixelFormat (RGBA/U8
// by default).
func (d *Decoder) PixelFormat() PixelFormat { return d.pixelFormat }

// EmbeddedColorProfile returns the file's declared color encoding and
// whether it is carried as a raw ICC profile rather than this
// decoder's structured ColorEncoding (spec §4.7 "embedded_color_
// profile"). Raw ICC profile bytes are not retained by this decoder
// (internal/header only records the HasICCProfile flag), so callers
// that need the actual ICC bytes for a color-managed render pipeline
// must source them independently; this only exposes structured,
// already-decoded encodings.
func (d *Decoder) EmbeddedColorProfile() (header.ColorEncoding, bool) {
	if d.fileHeader == nil {
		return header.ColorEncoding{}, false
	}
	return d.fileHeader.Color, d.fileHeader.HasICCProfile
}

// SetOutputColorProfile selects the transfer curve FlushPixels/
// FlushPixelsTo encode final samples with (spec §4.7 "set_output_
// color_profile"), in place of always re-encoding to sRGB. A full
// ICC-profile-to-ICC-profile transform is out of scope (this decoder
// never parses ICC byte profiles, see EmbeddedColorProfile); selecting
// among the transfer curves internal/color already implements covers
// the common output targets (sRGB, linear, PQ, HLG, ...).
func (d *Decoder) SetOutputColorProfile(tf jxlcolor.TransferFunction) { d.outputTransfer = tf }

// OutputColorProfile returns the transfer curve set by
// SetOutputColorProfile (sRGB by default).
func (d *Decoder) OutputColorProfile() jxlcolor.TransferFunction { return d.outputTransfer }

// SkipFrame marks the next frame Process decodes as one whose pixels
// the caller doesn't need (spec §4.7 "skip_frame"): the frame header
// and section bytes are still parsed (so the decoder's position in
// the bitstream stays correct for the frame after it), but its
// reconstructed buffer never replaces lastBuffer, so FlushPixels
// continues to return the previous frame until a non-skipped frame
// decodes.
func (d *Decoder) SkipFrame() { d.skipNext = true }

// NumCompletedPasses returns the number of progressive passes the
// current frame declared (spec §4.7 "num_completed_passes"). This
// decoder reconstructs every declared pass in one DecodeFrame call
// rather than flushing partial passes, so the value is either 0 (no
// frame decoded yet) or the frame's full declared pass count, never a
// value in between.
func (d *Decoder) NumCompletedPasses() int {
	if d.frameHeader == nil {
		return 0
	}
	return int(d.frameHeader.Passes.NumPasses)
}

// Process appends input to the decoder's accumulated buffer and
// advances the state machine as far as it can. On success it reports
// Complete with the new state; on a truncated buffer it reports
// NeedsMoreInput with a hint for how many more bytes to supply (spec
// §4.7 contract: "size_hint is a hint only; callers must retry process
// with strictly more bytes").
func (d *Decoder) Process(input []byte) (ProcessResult, error) {
	d.buf = append(d.buf, input...)

	switch d.state {
	case StateInitialized:
		res, err := container.Parse(d.buf, container.DefaultMetadataCaptureOptions())
		if err != nil {
			if e, ok := xlerr.As(err); ok && e.Kind == xlerr.OutOfBounds {
				return ProcessResult{NeedsMoreInput: true, SizeHint: e.Need, Next: d.state}, nil
			}
			return ProcessResult{}, err
		}
		d.codestream = stripCodestreamSignature(res)

		br := bitio.NewReader(d.codestream)
		fh, err := header.DecodeFileHeader(br)
		if err != nil {
			if e, ok := xlerr.As(err); ok && e.Kind == xlerr.OutOfBounds {
				return ProcessResult{NeedsMoreInput: true, SizeHint: e.Need, Next: d.state}, nil
			}
			return ProcessResult{}, err
		}
		d.fileHeader = fh
		d.frameDecoder = frame.NewDecoder(d.store, int(fh.Width), int(fh.Height), len(fh.ExtraChannels), fh.XYBEncoded, mapTransferFunction(fh.Color.TransferFunction))
		d.state = StateWithImageInfo
		return ProcessResult{Complete: true, Next: d.state}, nil

	case StateWithImageInfo, StateWithFrameInfo:
		br := bitio.NewReader(d.codestream)
		fh, frameBuf, err := d.frameDecoder.DecodeFrame(br, d.fileHeader.Animation != nil)
		if err != nil {
			if e, ok := xlerr.As(err); ok && e.Kind == xlerr.OutOfBounds {
				return ProcessResult{NeedsMoreInput: true, SizeHint: e.Need, Next: d.state}, nil
			}
			return ProcessResult{}, err
		}
		d.frameHeader = fh
		if !d.skipNext {
			d.lastBuffer = frameBuf
		}
		d.skipNext = false
		d.completedFrames++
		d.state = StateWithFrameInfo
		return ProcessResult{Complete: true, Next: d.state}, nil

	default:
		return ProcessResult{}, xlerr.New(xlerr.InvalidBox, "process called in terminal state")
	}
}

// FlushPixels renders whatever frame buffer is available into dst,
// idempotently; before any section has decoded it is a no-op (spec
// §4.7: "safe before any section data has arrived"). Always packs
// 8-bit RGBA, matching image.RGBA's stdlib contract; FlushPixelsTo
// serves the general color-type x data-format contract.
func (d *Decoder) FlushPixels(dst *image.RGBA) error {
	if d.lastBuffer == nil || d.fileHeader == nil {
		return nil
	}
	work := cloneFrameBuffer(d.lastBuffer)
	pipeline, err := d.buildPipeline(work)
	if err != nil {
		return err
	}
	backend := render.SimpleBackend{}
	img, err := backend.Render(pipeline, work, int(d.fileHeader.Width), int(d.fileHeader.Height))
	if err != nil {
		return err
	}
	rgba, ok := img.(*image.RGBA)
	if !ok {
		return xlerr.New(xlerr.InvalidBox, "render backend returned unexpected image type")
	}
	copy(dst.Pix, rgba.Pix)
	return nil
}

// PixelBuffer is FlushPixelsTo's output: a tightly packed buffer in
// the layout Format describes (spec §6 "JxlOutputBuffer"), generalized
// beyond FlushPixels's image.RGBA-only contract to cover grayscale and
// wider-than-8-bit output.
type PixelBuffer struct {
	Format        PixelFormat
	Width, Height int
	Pix           []byte
}

// FlushPixelsTo renders whatever frame buffer is available into a
// PixelBuffer in the layout set by SetPixelFormat, idempotently; nil,
// nil before any section has decoded.
func (d *Decoder) FlushPixelsTo() (*PixelBuffer, error) {
	if d.lastBuffer == nil || d.fileHeader == nil {
		return nil, nil
	}
	work := cloneFrameBuffer(d.lastBuffer)
	pipeline, err := d.buildPipeline(work)
	if err != nil {
		return nil, err
	}
	if err := pipeline.Run(work); err != nil {
		return nil, err
	}

	width, height := int(d.fileHeader.Width), int(d.fileHeader.Height)
	if y := work.Planes["Y"]; y != nil {
		width, height = y.Width, y.Height
	}

	pf := d.pixelFormat
	numCh := numChannels(pf.ColorType)
	bps := bytesPerSample(pf.DataType)
	buf := &PixelBuffer{Format: pf, Width: width, Height: height, Pix: make([]byte, width*height*numCh*bps)}

	x, y, bl := work.Planes["X"], work.Planes["Y"], work.Planes["B"]
	planeAt := func(p *render.Plane, px, py int) float32 {
		if p == nil {
			return 0
		}
		return p.At(px, py)
	}
	alphaPlane := work.Planes["A"]

	for py := 0; py < height; py++ {
		for px := 0; px < width; px++ {
			r, g, bv := planeAt(x, px, py), planeAt(y, px, py), planeAt(bl, px, py)
			alpha := float32(1)
			if alphaPlane != nil {
				alpha = alphaPlane.At(px, py)
			}

			var samples []float32
			switch pf.ColorType {
			case ColorGrayscale:
				samples = []float32{luma(r, g, bv)}
			case ColorGrayscaleAlpha:
				samples = []float32{luma(r, g, bv), alpha}
			case ColorRGB:
				samples = []float32{r, g, bv}
			default: // ColorRGBA
				samples = []float32{r, g, bv, alpha}
			}

			base := (py*width + px) * numCh * bps
			for i, s := range samples {
				writeSample(buf.Pix[base+i*bps:base+(i+1)*bps], pf.DataType, s)
			}
		}
	}
	return buf, nil
}

func numChannels(ct ColorType) int {
	switch ct {
	case ColorGrayscale:
		return 1
	case ColorGrayscaleAlpha:
		return 2
	case ColorRGB:
		return 3
	default:
		return 4
	}
}

func bytesPerSample(dt DataType) int {
	switch dt {
	case DataU16:
		return 2
	case DataF32:
		return 4
	default:
		return 1
	}
}

// luma approximates a single-channel intensity from already
// target-color-space converted samples; a plain average rather than a
// luminance-weighted mix, since by this point the three planes may
// already be in an arbitrary output transfer domain, not necessarily
// linear RGB.
func luma(r, g, b float32) float32 {
	return (r + g + b) / 3
}

func writeSample(dst []byte, dt DataType, v float32) {
	switch dt {
	case DataU16:
		binary.LittleEndian.PutUint16(dst, uint16(clampUnit(v)*65535+0.5))
	case DataF32:
		binary.LittleEndian.PutUint32(dst, math.Float32bits(v))
	default:
		dst[0] = byte(clampUnit(v)*255 + 0.5)
	}
}

func clampUnit(v float32) float32 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 1
	}
	return v
}

// cloneFrameBuffer deep-copies fb's planes so a render pipeline can
// mutate them in place without corrupting the decoder's retained
// lastBuffer, keeping repeated FlushPixels/FlushPixelsTo calls
// idempotent.
func cloneFrameBuffer(fb *render.FrameBuffer) *render.FrameBuffer {
	out := render.NewFrameBuffer()
	for _, name := range fb.Order {
		p := fb.Planes[name]
		cp := render.NewPlane(p.Width, p.Height)
		copy(cp.Data, p.Data)
		out.Add(name, cp)
	}
	return out
}

// buildPipeline assembles the render pipeline for the most recently
// decoded frame (spec §4.6): color-space conversion into the
// configured output transfer curve, then Gaborish/EPF restoration
// filtering, then upsampling to full resolution, each only appended
// when the frame header calls for it. Patches, splines, noise
// synthesis, and multi-frame blending are not modeled (see DESIGN.md).
func (d *Decoder) buildPipeline(fb *render.FrameBuffer) (*render.Pipeline, error) {
	initial := make(map[string]render.ChannelType)
	for _, name := range fb.Order {
		initial[name] = render.TypeF32
	}
	b := render.NewBuilder(initial)
	touched := map[string]bool{}

	xyb := d.frameDecoder != nil && d.frameDecoder.XYBEncoded
	outTF := d.outputTransfer
	colorChannels := []string{"X", "Y", "B"}
	if err := b.Append(render.Stage{
		Kind:       render.StageInPlace,
		Name:       "colorConvert",
		Channels:   colorChannels,
		InputType:  render.TypeF32,
		OutputType: render.TypeF32,
		Apply: func(fb *render.FrameBuffer) error {
			x, y, bl := fb.Planes["X"], fb.Planes["Y"], fb.Planes["B"]
			if x == nil || y == nil || bl == nil {
				return nil
			}
			for i := range x.Data {
				var r, g, bv float64
				if xyb {
					r, g, bv = jxlcolor.XYBToLinear(float64(x.Data[i]), float64(y.Data[i]), float64(bl.Data[i]))
				} else {
					r, g, bv = float64(x.Data[i]), float64(y.Data[i]), float64(bl.Data[i])
				}
				x.Data[i] = float32(jxlcolor.FromLinear(outTF, r))
				y.Data[i] = float32(jxlcolor.FromLinear(outTF, g))
				bl.Data[i] = float32(jxlcolor.FromLinear(outTF, bv))
			}
			return nil
		},
	}); err != nil {
		return nil, err
	}
	for _, ch := range colorChannels {
		touched[ch] = true
	}

	if d.frameHeader != nil && d.frameHeader.Restoration.Gaborish {
		if err := b.Append(render.Stage{
			Kind:       render.StageInPlace,
			Name:       "gaborish",
			Channels:   colorChannels,
			InputType:  render.TypeF32,
			OutputType: render.TypeF32,
			Apply: func(fb *render.FrameBuffer) error {
				for _, name := range colorChannels {
					if p := fb.Planes[name]; p != nil {
						fb.Planes[name] = render.Gaborish(p, 0.092, 0.01)
					}
				}
				return nil
			},
		}); err != nil {
			return nil, err
		}
	}

	if d.frameHeader != nil {
		for i := uint32(0); i < d.frameHeader.Restoration.EPFIters; i++ {
			sigma := float32(1.0) / float32(i+1)
			if err := b.Append(render.Stage{
				Kind:       render.StageInPlace,
				Name:       "epf",
				Channels:   colorChannels,
				InputType:  render.TypeF32,
				OutputType: render.TypeF32,
				Apply: func(fb *render.FrameBuffer) error {
					for _, name := range colorChannels {
						if p := fb.Planes[name]; p != nil {
							fb.Planes[name] = render.EPFIteration(p, sigma)
						}
					}
					return nil
				},
			}); err != nil {
				return nil, err
			}
		}
	}

	if d.frameHeader != nil {
		shift := log2Shift(d.frameHeader.Upsampling)
		if shift > 0 {
			upsampleChannels := append(append([]string{}, colorChannels...), "A")
			for _, ch := range upsampleChannels {
				if fb.Planes[ch] == nil {
					continue
				}
				ch := ch
				if err := b.Append(render.Stage{
					Kind:       render.StageInOut,
					Name:       "upsample:" + ch,
					Channels:   []string{ch},
					InputType:  render.TypeF32,
					OutputType: render.TypeF32,
					ShiftX:     shift,
					ShiftY:     shift,
					Apply: func(fb *render.FrameBuffer) error {
						if p := fb.Planes[ch]; p != nil {
							fb.Planes[ch] = render.Upsample(p, shift)
						}
						return nil
					},
				}); err != nil {
					return nil, err
				}
				touched[ch] = true
			}
		}
	}

	for _, name := range fb.Order {
		if touched[name] {
			continue
		}
		name := name
		if err := b.Append(render.Stage{
			Kind:       render.StageInspect,
			Name:       "passthrough:" + name,
			Channels:   []string{name},
			InputType:  render.TypeF32,
			OutputType: render.TypeF32,
			Apply:      func(fb *render.FrameBuffer) error { return nil },
		}); err != nil {
			return nil, err
		}
	}

	return b.Build(fb.Order)
}

func log2Shift(n uint32) int {
	shift := 0
	for n > 1 {
		n >>= 1
		shift++
	}
	return shift
}

// stripCodestreamSignature returns the bitstream DecodeFileHeader
// should read from: for a bare codestream, Result.Codestream still
// carries the leading 2-byte 0xFF 0x0A marker (container.Parse's bare
// branch returns data unsliced), while a container's jxlc/jxlp payload
// never does. DecodeFileHeader's own grammar has no signature field,
// so the marker must be dropped here rather than inside the header
// package.
func stripCodestreamSignature(res *container.Result) []byte {
	if res.Signature == container.SignatureCodestream && len(res.Codestream) >= len(container.CodestreamSignature) {
		return res.Codestream[len(container.CodestreamSignature):]
	}
	return res.Codestream
}

func mapTransferFunction(tf header.TransferFunction) jxlcolor.TransferFunction {
	switch tf {
	case header.TransferSRGB:
		return jxlcolor.TransferSRGB
	case header.TransferLinear:
		return jxlcolor.TransferLinear
	case header.TransferPQ:
		return jxlcolor.TransferPQ
	case header.TransferBT709:
		return jxlcolor.TransferBT709
	case header.TransferDCI:
		return jxlcolor.TransferDCI
	case header.TransferHLG:
		return jxlcolor.TransferHLG
	default:
		return jxlcolor.TransferSRGB
	}
}

// Decode reads a JPEG XL image from r and returns it as an image.Image.
// It decodes the first frame only; callers that need every frame of an
// animated image should drive a Decoder directly via Process/
// FlushPixels instead of this convenience wrapper.
func Decode(r io.Reader) (image.Image, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("jxl: reading data: %w", err)
	}
	d := NewDecoder()
	if _, err := d.Process(data); err != nil {
		return nil, fmt.Errorf("jxl: decoding header: %w", err)
	}
	if _, err := d.Process(nil); err != nil {
		return nil, fmt.Errorf("jxl: decoding frame: %w", err)
	}
	out := image.NewRGBA(image.Rect(0, 0, int(d.fileHeader.Width), int(d.fileHeader.Height)))
	if err := d.FlushPixels(out); err != nil {
		return nil, fmt.Errorf("jxl: rendering: %w", err)
	}
	return out, nil
}

// DecodeConfig returns the color model and dimensions of a JPEG XL
// image without decoding pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := readAll(r)
	if err != nil {
		return image.Config{}, fmt.Errorf("jxl: reading data: %w", err)
	}
	res, err := container.Parse(data, container.DefaultMetadataCaptureOptions())
	if err != nil {
		return image.Config{}, fmt.Errorf("jxl: parsing container: %w", err)
	}
	br := bitio.NewReader(stripCodestreamSignature(res))
	fh, err := header.DecodeFileHeader(br)
	if err != nil {
		return image.Config{}, fmt.Errorf("jxl: decoding header: %w", err)
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(fh.Width),
		Height:     int(fh.Height),
	}, nil
}
