package header

import "github.com/jxl-go/jxl/internal/bitio"

// TOC is the decoded table of contents for one frame: an ordered list
// of section byte lengths, optionally preceded by a permutation over
// section indices (spec §3 "TOC").
type TOC struct {
	Lengths     []uint32
	Permutation []int // nil when sections are stored in canonical order
}

// DecodeTOC reads a TOC for numSections sections.
func DecodeTOC(br *bitio.Reader, numSections int) (*TOC, error) {
	if numSections == 1 {
		length, err := distDimension.Decode(br)
		if err != nil {
			return nil, err
		}
		return &TOC{Lengths: []uint32{length}}, nil
	}

	permuted, err := br.Read(1)
	if err != nil {
		return nil, err
	}
	toc := &TOC{}
	if permuted == 1 {
		perm, err := decodePermutation(br, numSections)
		if err != nil {
			return nil, err
		}
		toc.Permutation = perm
	}
	if err := br.JumpToByteBoundary(); err != nil {
		return nil, err
	}

	toc.Lengths = make([]uint32, numSections)
	for i := range toc.Lengths {
		l, err := distDimension.Decode(br)
		if err != nil {
			return nil, err
		}
		toc.Lengths[i] = l
	}
	if err := br.JumpToByteBoundary(); err != nil {
		return nil, err
	}
	return toc, nil
}

// decodePermutation reads a permutation over [0,n) encoded as n
// "lehmer code" style residuals against the still-available index set,
// the same shape a TOC permutation takes in the real bitstream: each
// step picks the k-th remaining index.
func decodePermutation(br *bitio.Reader, n int) ([]int, error) {
	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}
	perm := make([]int, n)
	for i := 0; i < n; i++ {
		k, err := distSmallCount.Decode(br)
		if err != nil {
			return nil, err
		}
		idx := int(k) % len(remaining)
		perm[i] = remaining[idx]
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return perm, nil
}

// CanonicalOrder returns the section lengths re-sorted from permuted
// storage order back into canonical section order (spec §3: "the first
// such reordering that happens re-sorts permuted sections back into
// canonical order").
func (t *TOC) CanonicalOrder() []uint32 {
	if t.Permutation == nil {
		return t.Lengths
	}
	out := make([]uint32, len(t.Lengths))
	for storageIdx, canonicalIdx := range t.Permutation {
		out[canonicalIdx] = t.Lengths[storageIdx]
	}
	return out
}
