package vardct

import (
	"github.com/jxl-go/jxl/internal/entropy"
	"github.com/jxl-go/jxl/internal/xlerr"
)

// unpackSigned undoes the zigzag packing entropy-coded coefficients
// share with modular residuals (duplicated from internal/modular's
// unpackSigned; each package that consumes the entropy coder owns its
// own copy rather than sharing a cross-package helper for a two-line
// function, matching the bitSink test-helper duplication pattern
// already used between internal/entropy and internal/header).
func unpackSigned(u uint32) int32 {
	if u&1 == 0 {
		return int32(u >> 1)
	}
	return -int32((u + 1) >> 1)
}

// Block holds one coded transform block's decoded, dequantized
// coefficients plus the bookkeeping needed by neighboring blocks'
// nonzero-count prediction.
type Block struct {
	Coeffs   []float64 // length numCoeffs, natural row-major order
	Raw      []int32   // quantized (pre-dequant) coefficients, for bias lookup
	Nonzeros int
}

// DecodeBlock implements spec §4.4 steps 1-4: decode the nonzero count,
// then walk scanOrder decoding each coefficient's token from
// zero_density_context, until nonzeros reaches zero or the scan is
// exhausted (in which case any remaining expected nonzeros is a
// failure).
func DecodeBlock(sr *entropy.SymbolReader, nonzeroCtx, blockContext int, scanOrder []int, numBlocks int) (*Block, error) {
	numCoeffs := len(scanOrder)

	nzSym, err := sr.ReadSymbol(nonzeroCtx)
	if err != nil {
		return nil, err
	}
	nonzeros := int(nzSym)
	if nonzeros+numBlocks > numCoeffs {
		return nil, xlerr.New(xlerr.InvalidNumNonZeros, "nonzeros=%d numBlocks=%d numCoeffs=%d", nonzeros, numBlocks, numCoeffs)
	}

	b := &Block{
		Coeffs:   make([]float64, numCoeffs),
		Raw:      make([]int32, numCoeffs),
		Nonzeros: nonzeros,
	}

	remaining := nonzeros
	prevNonzero := false
	for i := 1; i < numCoeffs && remaining > 0; i++ {
		ctx := ZeroDensityContext(remaining, i, numBlocks, prevNonzero)
		_ = blockContext
		sym, err := sr.ReadSymbol(ctx)
		if err != nil {
			return nil, err
		}
		v := unpackSigned(sym)
		pos := scanOrder[i]
		b.Raw[pos] = v
		if v != 0 {
			remaining--
			prevNonzero = true
		} else {
			prevNonzero = false
		}
	}
	if remaining != 0 {
		return nil, xlerr.New(xlerr.EndOfBlockResidualNonZeros, "remaining=%d after full scan", remaining)
	}
	return b, nil
}

// ApplyDequant dequantizes b.Raw (shifted left by shiftForPass, per
// spec §4.4 step 3's "shifted left by the pass's shift_for_pass") into
// b.Coeffs for channel c, using the family's quant matrix and global
// scale state.
func ApplyDequant(b *Block, m *QuantMatrix, gs GlobalScale, biases QuantBiases, c Channel, rawQuant float64, shiftForPass int) {
	for k := range b.Raw {
		shifted := b.Raw[k] << uint(shiftForPass)
		b.Coeffs[k] = Dequantize(m, gs, biases, c, k, shifted, rawQuant)
	}
}
