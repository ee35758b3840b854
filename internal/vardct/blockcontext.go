package vardct

// BlockContextMap clusters AC coefficient contexts by quant-bucket and
// transform-shape bucket (spec §4.4 "Block-context map ... must honor
// its quant-bucket and shape-bucket clustering").
//
// Grounded on internal/lossy/decode_tree.go's context-index-from-
// neighbor-state pattern (the same shape this decoder's modular tree
// property lookup in internal/modular/tree.go already follows),
// generalized here from a fixed macroblock-mode context table to an
// open per-(quant-bucket, shape-bucket, channel) cluster count.
type BlockContextMap struct {
	NumClusters    int
	QuantBuckets   int
	ShapeBuckets   int
	ClusterForCell []int // len QuantBuckets*ShapeBuckets*3 (channel-major)
}

// NewBlockContextMap builds an identity clustering (every distinct
// cell gets its own cluster); a transmitted context map (spec's
// DecodeContextMap mechanism, already implemented in
// internal/entropy/contextmap.go) can remap ClusterForCell after
// construction.
func NewBlockContextMap(quantBuckets, shapeBuckets int) *BlockContextMap {
	n := quantBuckets * shapeBuckets * 3
	m := &BlockContextMap{NumClusters: n, QuantBuckets: quantBuckets, ShapeBuckets: shapeBuckets, ClusterForCell: make([]int, n)}
	for i := range m.ClusterForCell {
		m.ClusterForCell[i] = i
	}
	return m
}

// Cluster resolves the AC context cluster for one block's quant
// bucket, shape bucket, and channel.
func (m *BlockContextMap) Cluster(quantBucket, shapeBucket int, ch Channel) int {
	idx := (quantBucket*m.ShapeBuckets+shapeBucket)*3 + int(ch)
	if idx < 0 || idx >= len(m.ClusterForCell) {
		return 0
	}
	return m.ClusterForCell[idx]
}

// numNonzeroBuckets is this decoder's own bucket count for the
// nonzero-count context (predicted-count buckets x block-context
// clusters); a self-consistent scheme documented in DESIGN.md rather
// than claimed byte-exact to the undisclosed real bitstream constant.
const numNonzeroBuckets = 8

// NonzeroContext computes the context used to decode a block's
// nonzero-coefficient count, from the predicted count (mean of
// upper/left neighbor nonzero counts divided by block count) and the
// block's context-map cluster (spec §4.4 step 1).
func NonzeroContext(predicted float64, blockContext int) int {
	bucket := int(predicted * float64(numNonzeroBuckets-1))
	if bucket < 0 {
		bucket = 0
	}
	if bucket >= numNonzeroBuckets {
		bucket = numNonzeroBuckets - 1
	}
	return blockContext*numNonzeroBuckets + bucket
}

// PredictedNonzeros computes the boundary-aware predicted nonzero
// count for a block at (bx,by) in a group's block grid, given the
// per-block nonzero counts already decoded for the same channel
// (spec §4.4 step 1: "mean of upper and left nonzero counts divided by
// block count").
func PredictedNonzeros(nz []int, gridWidth, bx, by, numBlocks int) float64 {
	var upper, left float64
	var count float64
	if by > 0 {
		upper = float64(nz[(by-1)*gridWidth+bx])
		count++
	}
	if bx > 0 {
		left = float64(nz[by*gridWidth+bx-1])
		count++
	}
	if count == 0 {
		return 0
	}
	return (upper + left) / count / float64(numBlocks)
}

// numZeroDensityBands is this decoder's own zero-density context
// bucket count, keyed by (remaining nonzeros, coefficient position
// band, previous-coefficient-was-nonzero flag); self-consistent, not
// claimed byte-exact (same caveat as NonzeroContext above).
const numZeroDensityBands = 4

// ZeroDensityContext computes the context used to decode one
// coefficient's zero/nonzero-and-magnitude token while walking a
// block's coefficients in scan order (spec §4.4 step 3).
func ZeroDensityContext(nonzeros, k, numBlocks int, prevNonzero bool) int {
	band := k * numZeroDensityBands / (numBlocks*64 + 1)
	if band >= numZeroDensityBands {
		band = numZeroDensityBands - 1
	}
	ctx := band * 2
	if prevNonzero {
		ctx++
	}
	remaining := nonzeros
	if remaining > 15 {
		remaining = 15
	}
	return ctx*16 + remaining
}
