package entropy

import (
	"github.com/jxl-go/jxl/internal/bitio"
	"github.com/jxl-go/jxl/internal/xlerr"
)

// SymbolReader is the stateful per-stream decoder that ties a
// Histograms bundle to a bit reader: it dispatches each context to its
// cluster's Huffman-or-ANS code, expands the raw token through that
// cluster's hybrid-uint config, and -- when the bundle enables LZ77 --
// interleaves copy-from-history runs transparently (spec §4.3).
type SymbolReader struct {
	br             *bitio.Reader
	h              *Histograms
	ans            *ANSReader
	distMultiplier int
	history        []uint32

	copyRemaining int
	copyDistance  int
}

// NewSymbolReader builds a SymbolReader over br using h. ANS-coded
// bundles share a single renormalizing state across all clusters (spec
// §4.3), so the ANSReader's 32-bit initial state is read here, once,
// regardless of how many clusters the bundle has.
func NewSymbolReader(br *bitio.Reader, h *Histograms) (*SymbolReader, error) {
	sr := &SymbolReader{br: br, h: h, distMultiplier: 1}
	if h.UseANS {
		r, err := NewANSReader(br)
		if err != nil {
			return nil, err
		}
		sr.ans = r
	}
	return sr, nil
}

// SetDistanceMultiplier sets the row stride used to interpret small
// LZ77 special-distance codes (typically the image/channel width in
// samples). Callers decoding raster channel data should set this before
// reading; callers with no spatial locality (e.g. the context map's own
// recursive decode) leave it at the default of 1.
func (sr *SymbolReader) SetDistanceMultiplier(n int) {
	if n <= 0 {
		n = 1
	}
	sr.distMultiplier = n
}

func (sr *SymbolReader) readRaw(cluster int) (uint32, error) {
	code := sr.h.Codes[cluster]
	if sr.h.UseANS {
		return sr.ans.ReadSymbol(code.ans)
	}
	return ReadSymbol(sr.br, code.huffman)
}

// ReadSymbol decodes the next value for the given context, transparently
// resolving any in-flight LZ77 copy before consuming new bits.
func (sr *SymbolReader) ReadSymbol(context int) (uint32, error) {
	if sr.copyRemaining > 0 {
		idx := len(sr.history) - sr.copyDistance
		if idx < 0 || idx >= len(sr.history) {
			return 0, xlerr.New(xlerr.ArithmeticOverflow, "LZ77 copy distance %d out of range (history len %d)", sr.copyDistance, len(sr.history))
		}
		v := sr.history[idx]
		sr.history = append(sr.history, v)
		sr.copyRemaining--
		return v, nil
	}

	cluster := sr.h.ClusterFor(context)
	token, err := sr.readRaw(cluster)
	if err != nil {
		return 0, err
	}

	if sr.h.LZ77.Enabled && token >= sr.h.LZ77.MinSymbol {
		length, err := sr.h.LZ77LenCfg.Decode(sr.br, token-sr.h.LZ77.MinSymbol)
		if err != nil {
			return 0, err
		}
		length += sr.h.LZ77.MinLength

		distCluster := sr.h.NumClusters - 1
		distToken, err := sr.readRaw(distCluster)
		if err != nil {
			return 0, err
		}
		distCode, err := sr.h.UintConfigs[distCluster].Decode(sr.br, distToken)
		if err != nil {
			return 0, err
		}
		distance := distanceFromCode(distCode, sr.distMultiplier)
		if distance < 1 || distance > len(sr.history) {
			return 0, xlerr.New(xlerr.ArithmeticOverflow, "LZ77 distance %d invalid (history len %d)", distance, len(sr.history))
		}
		if length == 0 {
			return 0, xlerr.New(xlerr.UnexpectedLz77Repeat, "LZ77 run of length 0")
		}

		sr.copyRemaining = int(length)
		sr.copyDistance = distance
		return sr.ReadSymbol(context)
	}

	v, err := sr.h.UintConfigs[cluster].Decode(sr.br, token)
	if err != nil {
		return 0, err
	}
	sr.history = append(sr.history, v)
	return v, nil
}

// RleSymbolReader specializes the common case of a single repeated
// symbol value run-length coded with no genuine LZ77 back-references:
// every copy distance is implicitly 1 (repeat the immediately preceding
// value). It decodes through the wrapped SymbolReader unchanged, so
// distances are still decoded in full; it only adds a check that every
// back-reference it sees has distance 1.
type RleSymbolReader struct {
	inner *SymbolReader
}

// NewRleSymbolReader wraps an existing SymbolReader for the RLE-only
// fast path.
func NewRleSymbolReader(sr *SymbolReader) *RleSymbolReader {
	return &RleSymbolReader{inner: sr}
}

// ReadSymbol behaves like SymbolReader.ReadSymbol, but rejects any
// decoded back-reference whose distance is not 1, since the RLE fast
// path assumes a pure run-length scheme.
func (r *RleSymbolReader) ReadSymbol(context int) (uint32, error) {
	if r.inner.copyRemaining == 0 {
		r.inner.copyDistance = 0
		v, err := r.inner.ReadSymbol(context)
		if err != nil {
			return 0, err
		}
		if r.inner.copyDistance > 1 {
			return 0, xlerr.New(xlerr.Lz77Disallowed, "RLE symbol reader saw non-unit LZ77 distance %d", r.inner.copyDistance)
		}
		return v, nil
	}
	return r.inner.ReadSymbol(context)
}
