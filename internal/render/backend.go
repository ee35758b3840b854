package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Backend runs a Pipeline against a FrameBuffer and produces a final
// image.Image (spec §4.6: "two backends" — simple whole-image vs.
// low-memory streaming — must agree on output).
type Backend interface {
	Render(pipeline *Pipeline, fb *FrameBuffer, width, height int) (image.Image, error)
}

// SimpleBackend runs every stage over the whole image at once, then
// copies the final planes into an output image.RGBA, resampling with
// golang.org/x/image/draw's Catmull-Rom scaler only when the planes'
// size differs from the requested size. This is the reference backend
// everything else is checked against.
type SimpleBackend struct{}

func (SimpleBackend) Render(pipeline *Pipeline, fb *FrameBuffer, width, height int) (image.Image, error) {
	if err := pipeline.Run(fb); err != nil {
		return nil, err
	}
	return planesToRGBA(fb, width, height), nil
}

// StreamingBackend runs the whole pipeline once over the full planes,
// then copies the result into the output image in horizontal bands of
// BandHeight rows (64 when unset). Only that final copy is banded:
// every stage still works on whole Plane buffers, so memory use is not
// bounded by the band height. It does no resampling, so its output
// equals SimpleBackend's whenever the planes' size equals the
// requested size.
type StreamingBackend struct {
	BandHeight int
}

func (s StreamingBackend) Render(pipeline *Pipeline, fb *FrameBuffer, width, height int) (image.Image, error) {
	band := s.BandHeight
	if band <= 0 {
		band = 64
	}
	if err := pipeline.Run(fb); err != nil {
		return nil, err
	}
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	for y0 := 0; y0 < height; y0 += band {
		y1 := y0 + band
		if y1 > height {
			y1 = height
		}
		copyBandToRGBA(fb, out, width, y0, y1)
	}
	return out, nil
}

// planesToRGBA renders fb's planes at their own native resolution,
// then resamples to the requested (width,height) with
// golang.org/x/image/draw's Catmull-Rom scaler. The native and
// requested sizes usually already match (upsample stages bring every
// plane to the frame's full resolution before Save runs); the scale
// step exists for the crop/native-size mismatch case (e.g. a Save
// stage targeting a caller-requested output size different from the
// coded frame, such as a thumbnail request).
func planesToRGBA(fb *FrameBuffer, width, height int) image.Image {
	nativeW, nativeH := width, height
	if y := fb.Planes["Y"]; y != nil {
		nativeW, nativeH = y.Width, y.Height
	}
	src := image.NewRGBA(image.Rect(0, 0, nativeW, nativeH))
	copyBandToRGBA(fb, src, nativeW, 0, nativeH)
	if nativeW == width && nativeH == height {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

func copyBandToRGBA(fb *FrameBuffer, out *image.RGBA, width, y0, y1 int) {
	x := fb.Planes["X"]
	y := fb.Planes["Y"]
	b := fb.Planes["B"]
	a := fb.Planes["A"]
	for py := y0; py < y1; py++ {
		for px := 0; px < width; px++ {
			var r, g, bl, al float32 = 0, 0, 0, 1
			if x != nil && y != nil && b != nil {
				r, g, bl = planeRGB(x, y, b, px, py)
			}
			if a != nil {
				al = a.At(px, py)
			}
			out.SetRGBA(px, py, color.RGBA{
				R: clamp8(r),
				G: clamp8(g),
				B: clamp8(bl),
				A: clamp8(al),
			})
		}
	}
}

// planeRGB is a passthrough: by the time Render calls pipeline.Run,
// the pipeline's own "colorConvert" stage has already turned the X/Y/B
// planes into gamma-encoded RGB samples (XYB->linear->transfer curve),
// so no further conversion happens here.
func planeRGB(x, y, b *Plane, px, py int) (float32, float32, float32) {
	return x.At(px, py), y.At(px, py), b.At(px, py)
}

func clamp8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
