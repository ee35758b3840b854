package vardct

import "testing"

func TestBlockContextMapIdentityClustering(t *testing.T) {
	m := NewBlockContextMap(4, 3)
	if m.NumClusters != 36 {
		t.Fatalf("got %d clusters, want 36", m.NumClusters)
	}
	if m.Cluster(1, 2, ChannelB) != m.ClusterForCell[(1*3+2)*3+2] {
		t.Fatal("Cluster lookup disagrees with ClusterForCell layout")
	}
}

func TestPredictedNonzerosBoundary(t *testing.T) {
	nz := []int{0, 0, 0, 0}
	gridWidth := 2
	if p := PredictedNonzeros(nz, gridWidth, 0, 0, 1); p != 0 {
		t.Fatalf("top-left block should predict 0 with no neighbors, got %v", p)
	}
	nz[0] = 4 // left neighbor of (1,0)
	if p := PredictedNonzeros(nz, gridWidth, 1, 0, 1); p != 4 {
		t.Fatalf("got %v, want 4 (only left neighbor present)", p)
	}
}

func TestNonzeroContextBucketsClampToRange(t *testing.T) {
	lo := NonzeroContext(-1, 0)
	hi := NonzeroContext(2, 0)
	if lo < 0 || hi < 0 {
		t.Fatal("context must never be negative")
	}
	if hi <= lo {
		t.Fatalf("higher predicted density should give a higher bucket:lo=%d hi=%d", lo, hi)
	}
}

func TestZeroDensityContextVariesWithPrevNonzero(t *testing.T) {
	a := ZeroDensityContext(5, 10, 1, false)
	b := ZeroDensityContext(5, 10, 1, true)
	if a == b {
		t.Fatal("prevNonzero flag must change the context")
	}
}
