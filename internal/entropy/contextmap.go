package entropy

import "github.com/jxl-go/jxl/internal/bitio"

// DecodeContextMap reads the context->cluster map (spec §3 "Context
// map"). With a single context the map is trivially [0]; otherwise a
// small recursive decoder reads it as its own RLE'd, optionally
// MTF-coded symbol stream using a scratch one-context Histograms (see
// histograms.go), exactly the "small histogram decodes the next small
// histogram's shape" recursion the spec calls out.
func DecodeContextMap(br *bitio.Reader, numContexts int) ([]int, int, error) {
	if numContexts <= 1 {
		return []int{0}, 1, nil
	}
	useMTF, err := br.Read(1)
	if err != nil {
		return nil, 0, err
	}

	// The context map is itself entropy-coded by a single-cluster
	// Histograms (LZ77/RLE enabled) built from a prefix=1 context.
	h, err := DecodeHistograms(br, 1, nil)
	if err != nil {
		return nil, 0, err
	}
	sr, err := NewSymbolReader(br, h)
	if err != nil {
		return nil, 0, err
	}

	raw := make([]int, numContexts)
	for i := range raw {
		v, err := sr.ReadSymbol(0)
		if err != nil {
			return nil, 0, err
		}
		raw[i] = int(v)
	}
	if useMTF == 1 {
		inverseMTF(raw)
	}
	maxCluster := 0
	for _, c := range raw {
		if c > maxCluster {
			maxCluster = c
		}
	}
	return raw, maxCluster + 1, nil
}

// inverseMTF undoes a move-to-front transform in place.
func inverseMTF(v []int) {
	var table [256]int
	for i := range table {
		table[i] = i
	}
	for i, idx := range v {
		if idx < 0 || idx >= len(table) {
			continue
		}
		sym := table[idx]
		copy(table[1:idx+1], table[0:idx])
		table[0] = sym
		v[i] = sym
	}
}
