package entropy

import (
	"github.com/jxl-go/jxl/internal/bitio"
)

// LZ77Params controls whether the symbol stream interleaves literal and
// match-copy tokens (spec §3 "Histograms bundle").
type LZ77Params struct {
	Enabled   bool
	MinSymbol uint32
	MinLength uint32
}

// clusterCode is one cluster's entropy coder: either a Huffman table or
// an ANS table, never both (spec §3: "codes: either Huffman{...} or
// Ans{...}").
type clusterCode struct {
	huffman *HuffmanTable
	ans     *ANSTable
}

// Histograms is the decoded bundle a SymbolReader reads against: the
// context map, per-cluster hybrid-int configs, per-cluster entropy
// tables, and optional LZ77 parameters (spec §3).
type Histograms struct {
	LZ77         LZ77Params
	LZ77LenCfg   *HybridUintConfig
	ContextMap   []int
	NumClusters  int
	UintConfigs  []HybridUintConfig
	Codes        []clusterCode
	LogAlphaSize int
	UseANS       bool
}

// numExtraLZ77Contexts accounts for spec §3's "enabling [LZ77] extends
// contexts by one (the 'LZ distance' cluster uses the last context
// slot)".
func numExtraLZ77Contexts(enabled bool) int {
	if enabled {
		return 1
	}
	return 0
}

// DecodeHistograms reads a complete Histograms bundle: optional LZ77
// params, the context map, per-cluster hybrid-int configs, and
// per-cluster Huffman/ANS tables, per spec §3/§4.3.
//
// numContexts is the number of contexts before any LZ77 extension;
// alphabetSizes, when non-nil, overrides the per-cluster alphabet size
// (used by callers -- e.g. VarDCT coefficient histograms -- that need a
// context-dependent alphabet instead of the uniform default).
func DecodeHistograms(br *bitio.Reader, numContexts int, alphabetSizes []int) (*Histograms, error) {
	h := &Histograms{}

	lz77Enabled, err := br.Read(1)
	if err != nil {
		return nil, err
	}
	if lz77Enabled == 1 {
		h.LZ77.Enabled = true
		minSym, err := br.Read(32)
		if err != nil {
			return nil, err
		}
		minLen, err := br.Read(32)
		if err != nil {
			return nil, err
		}
		h.LZ77.MinSymbol = uint32(minSym)
		h.LZ77.MinLength = uint32(minLen)
		lenCfg, err := DecodeHybridUintConfig(br, 4)
		if err != nil {
			return nil, err
		}
		h.LZ77LenCfg = &lenCfg
	}

	totalContexts := numContexts + numExtraLZ77Contexts(h.LZ77.Enabled)
	contextMap, numClusters, err := DecodeContextMap(br, totalContexts)
	if err != nil {
		return nil, err
	}
	h.ContextMap = contextMap
	h.NumClusters = numClusters

	useANS, err := br.Read(1)
	if err != nil {
		return nil, err
	}
	h.UseANS = useANS == 1
	if h.UseANS {
		h.LogAlphaSize = 5
	} else {
		h.LogAlphaSize = 15
	}
	if h.UseANS {
		extra, err := br.Read(2)
		if err != nil {
			return nil, err
		}
		h.LogAlphaSize += int(extra)
	}

	h.UintConfigs = make([]HybridUintConfig, numClusters)
	for c := 0; c < numClusters; c++ {
		cfg, err := DecodeHybridUintConfig(br, h.LogAlphaSize)
		if err != nil {
			return nil, err
		}
		h.UintConfigs[c] = cfg
	}

	h.Codes = make([]clusterCode, numClusters)
	for c := 0; c < numClusters; c++ {
		alphabetSize := 1 << uint(h.LogAlphaSize)
		if alphabetSizes != nil && c < len(alphabetSizes) && alphabetSizes[c] > 0 {
			alphabetSize = alphabetSizes[c]
		}
		if h.UseANS {
			freqs, err := ReadANSDistribution(br, alphabetSize)
			if err != nil {
				return nil, err
			}
			table, err := BuildANSTable(freqs)
			if err != nil {
				return nil, err
			}
			h.Codes[c] = clusterCode{ans: table}
		} else {
			table, err := ReadSimpleOrCanonicalTable(br, alphabetSize)
			if err != nil {
				return nil, err
			}
			h.Codes[c] = clusterCode{huffman: table}
		}
	}

	return h, nil
}

// ClusterFor returns the cluster id for a given context.
func (h *Histograms) ClusterFor(context int) int {
	if context < 0 || context >= len(h.ContextMap) {
		return 0
	}
	return h.ContextMap[context]
}
