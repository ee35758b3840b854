package vardct

// NaturalOrder returns the zigzag coefficient scan order for an NxN
// block: index i of the returned slice is the flat (row*n+col) position
// of the i'th coefficient to decode, low frequency first. JPEG XL
// allows this order to be permuted per coefficient-orders transmission
// (spec §4.4 HfGlobal "coefficient orders"); ReorderedScan applies a
// transmitted permutation on top of this natural base order.
func NaturalOrder(n int) []int {
	type pos struct{ r, c int }
	positions := make([]pos, 0, n*n)
	for s := 0; s < 2*n-1; s++ {
		var diag []pos
		for r := 0; r <= s; r++ {
			c := s - r
			if r < n && c < n {
				diag = append(diag, pos{r, c})
			}
		}
		if s%2 == 0 {
			for i, j := 0, len(diag)-1; i < j; i, j = i+1, j-1 {
				diag[i], diag[j] = diag[j], diag[i]
			}
		}
		positions = append(positions, diag...)
	}
	out := make([]int, len(positions))
	for i, p := range positions {
		out[i] = p.r*n + p.c
	}
	return out
}

// ReorderedScan applies a transmitted permutation (one entry per scan
// position, giving the natural-order index to visit at that position)
// on top of NaturalOrder's base scan.
func ReorderedScan(natural []int, permutation []int) []int {
	if len(permutation) == 0 {
		return natural
	}
	out := make([]int, len(natural))
	for i, p := range permutation {
		out[i] = natural[p]
	}
	return out
}
