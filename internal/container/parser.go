package container

import (
	"github.com/jxl-go/jxl/internal/xlerr"
)

// Signature identifies which of the two top-level forms the input
// takes (spec §3).
type Signature int

const (
	SignatureUnknown Signature = iota
	SignatureCodestream
	SignatureContainer
)

// MetadataCaptureOptions toggles which metadata-box kinds get buffered
// by the parser (spec §4.2, §5 "aggregate metadata sizes").
type MetadataCaptureOptions struct {
	CaptureExif bool
	CaptureXML  bool
	CaptureJumb bool
	CaptureBrob bool
	// MaxAggregateBytes bounds the total bytes buffered across all
	// captured metadata boxes (spec §5 memory bounds).
	MaxAggregateBytes uint64
}

// DefaultMetadataCaptureOptions captures everything, matching a decoder
// whose caller hasn't opted out of any metadata.
func DefaultMetadataCaptureOptions() MetadataCaptureOptions {
	return MetadataCaptureOptions{
		CaptureExif:       true,
		CaptureXML:        true,
		CaptureJumb:       true,
		CaptureBrob:       true,
		MaxAggregateBytes: 64 << 20,
	}
}

// MetadataChunk is a captured non-codestream box.
type MetadataChunk struct {
	Kind    uint32
	Payload []byte
	// InnerKind and IsBrotliCompressed are populated only for brob
	// boxes (spec §3: "compressed metadata with 4-byte inner-kind
	// prefix").
	InnerKind          uint32
	IsBrotliCompressed bool
}

// CodestreamPart is one contiguous run of codestream bytes recovered
// from a jxlc box or an ordered jxlp sequence.
type CodestreamPart struct {
	Data  []byte
	Index int // jxlp part index; 0 for a lone jxlc
	Last  bool
}

// Result is the outcome of fully parsing a buffered container (or bare
// codestream).
type Result struct {
	Signature  Signature
	Codestream []byte // reassembled, in canonical order
	Metadata   []MetadataChunk
}

// Parse walks data and reassembles the codestream plus captured
// metadata. Returns an OutOfBounds *xlerr.Error when data is a valid
// but truncated prefix of a larger container -- the caller (the
// typestate Decoder, per spec §5) retries with more bytes appended.
//
// A single pass over the byte slice dispatches on each box's
// four-character kind: big-endian lengths, the 64-bit "XL box"
// extension, the "rest of file" (length==0) convention, and jxlp's
// numbered-part reassembly.
func Parse(data []byte, opts MetadataCaptureOptions) (*Result, error) {
	if len(data) >= len(CodestreamSignature) && data[0] == CodestreamSignature[0] && data[1] == CodestreamSignature[1] {
		return &Result{Signature: SignatureCodestream, Codestream: data}, nil
	}
	if len(data) < len(ContainerSignature) {
		return nil, xlerr.NeedMore(uint64(len(ContainerSignature) - len(data)))
	}
	for i, b := range ContainerSignature {
		if data[i] != b {
			return nil, xlerr.New(xlerr.InvalidSignature, "unrecognized JXL signature")
		}
	}

	res := &Result{Signature: SignatureContainer}
	pos := len(ContainerSignature)

	var jxlpParts []CodestreamPart
	sawJxlc := false
	sawJxlp := false
	var aggregateMetadata uint64

	for pos < len(data) {
		if len(data)-pos < BoxHeaderSize {
			return nil, xlerr.NeedMore(uint64(BoxHeaderSize - (len(data) - pos)))
		}
		length := uint64(be32(data[pos:]))
		kind := be32(data[pos+4:])
		headerSize := BoxHeaderSize
		if length == 1 {
			if len(data)-pos < BoxHeaderSize+8 {
				return nil, xlerr.NeedMore(uint64(BoxHeaderSize + 8 - (len(data) - pos)))
			}
			length = be64(data[pos+8:])
			headerSize = BoxHeaderSize + 8
		}

		var boxEnd int
		toEOF := length == 0
		if toEOF {
			boxEnd = len(data)
		} else {
			if length < uint64(headerSize) {
				return nil, xlerr.New(xlerr.InvalidBox, "box length %d shorter than header", length)
			}
			end := pos + int(length)
			if end > len(data) {
				return nil, xlerr.NeedMore(uint64(end - len(data)))
			}
			boxEnd = end
		}
		content := data[pos+headerSize : boxEnd]

		switch kind {
		case KindJxlc:
			if sawJxlp {
				return nil, xlerr.New(xlerr.InvalidBox, "jxlc mixed with jxlp")
			}
			if sawJxlc {
				return nil, xlerr.New(xlerr.InvalidBox, "multiple jxlc boxes")
			}
			sawJxlc = true
			res.Codestream = append(res.Codestream, content...)

		case KindJxlp:
			if sawJxlc {
				return nil, xlerr.New(xlerr.InvalidBox, "jxlp mixed with jxlc")
			}
			if len(content) < 4 {
				return nil, xlerr.New(xlerr.InvalidBox, "jxlp box too short for index")
			}
			raw := be32(content)
			idx := int(raw &^ 0x80000000)
			last := raw&0x80000000 != 0
			expect := len(jxlpParts)
			if idx != expect {
				return nil, xlerr.New(xlerr.InvalidBox, "jxlp index %d out of order, expected %d", idx, expect)
			}
			sawJxlp = true
			jxlpParts = append(jxlpParts, CodestreamPart{Data: content[4:], Index: idx, Last: last})

		case KindExif:
			if opts.CaptureExif {
				aggregateMetadata += uint64(len(content))
				if opts.MaxAggregateBytes != 0 && aggregateMetadata > opts.MaxAggregateBytes {
					return nil, xlerr.New(xlerr.InvalidBox, "aggregate metadata exceeds cap")
				}
				res.Metadata = append(res.Metadata, MetadataChunk{Kind: kind, Payload: cloneBytes(content)})
			}

		case KindXML:
			if opts.CaptureXML {
				aggregateMetadata += uint64(len(content))
				if opts.MaxAggregateBytes != 0 && aggregateMetadata > opts.MaxAggregateBytes {
					return nil, xlerr.New(xlerr.InvalidBox, "aggregate metadata exceeds cap")
				}
				res.Metadata = append(res.Metadata, MetadataChunk{Kind: kind, Payload: cloneBytes(content)})
			}

		case KindJumb:
			if opts.CaptureJumb {
				aggregateMetadata += uint64(len(content))
				if opts.MaxAggregateBytes != 0 && aggregateMetadata > opts.MaxAggregateBytes {
					return nil, xlerr.New(xlerr.InvalidBox, "aggregate metadata exceeds cap")
				}
				res.Metadata = append(res.Metadata, MetadataChunk{Kind: kind, Payload: cloneBytes(content)})
			}

		case KindBrob:
			if opts.CaptureBrob {
				if len(content) < 4 {
					return nil, xlerr.New(xlerr.InvalidBox, "brob box too short for inner kind")
				}
				aggregateMetadata += uint64(len(content))
				if opts.MaxAggregateBytes != 0 && aggregateMetadata > opts.MaxAggregateBytes {
					return nil, xlerr.New(xlerr.InvalidBox, "aggregate metadata exceeds cap")
				}
				res.Metadata = append(res.Metadata, MetadataChunk{
					Kind:               kind,
					InnerKind:          be32(content),
					Payload:            cloneBytes(content[4:]),
					IsBrotliCompressed: true,
				})
			}

		default:
			// jxli, ftyp, and unrecognized boxes are skipped (jxli has
			// its own scan-mode reader, see internal/frame.ScanIndex).
		}

		if toEOF {
			break
		}
		pos = boxEnd
	}

	if len(jxlpParts) > 0 {
		if !jxlpParts[len(jxlpParts)-1].Last {
			return nil, xlerr.NeedMore(1)
		}
		for _, part := range jxlpParts {
			res.Codestream = append(res.Codestream, part.Data...)
		}
	}
	if !sawJxlc && !sawJxlp {
		return nil, xlerr.New(xlerr.InvalidBox, "no jxlc or jxlp box found")
	}

	return res, nil
}

func cloneBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
