package search

import "testing"

// Grounded on engine/tt.go's roundtrip-store-then-probe test pattern.

func TestTable_StoreAndProbeRoundtrip(t *testing.T) {
	tt := NewTable(1)
	tt.Store(12345, 6, 0, 0, 100, BoundExact)

	entry, found := tt.Probe(12345)
	if !found {
		t.Fatalf("expected entry to be found")
	}
	if entry.Depth != 6 || entry.Score != 100 || entry.Bound != BoundExact {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestTable_ProbeMiss(t *testing.T) {
	tt := NewTable(1)
	if _, found := tt.Probe(999); found {
		t.Fatalf("expected no entry for an unstored key")
	}
}

func TestTable_MateScorePlyAdjustment(t *testing.T) {
	tt := NewTable(1)
	// A mate found 3 plies deep, stored at that ply, should read back as a
	// mate 2 plies nearer (mateIn(1)) when probed at ply 1.
	mateScore := mateIn(3)
	tt.Store(42, 10, 3, 0, mateScore, BoundExact)

	entry, found := tt.Probe(42)
	if !found {
		t.Fatalf("expected entry to be found")
	}
	got := scoreFromTT(entry.Score, 1)
	if got <= Checkmate {
		t.Fatalf("expected a mate score after ply adjustment, got %d", got)
	}
	if got <= mateScore {
		t.Fatalf("expected mate score read closer to root (ply 1) to report a shorter mate than stored at ply 3, got %d want > %d", got, mateScore)
	}
}

func TestTable_Usable_ExactAlwaysCuts(t *testing.T) {
	tt := NewTable(1)
	tt.Store(7, 5, 0, 0, 50, BoundExact)
	entry, found := tt.Probe(7)
	score, ok := Usable(entry, found, 5, -1000, 1000, 0)
	if !ok || score != 50 {
		t.Fatalf("expected exact entry to be usable with score 50, got %d ok=%v", score, ok)
	}
}

func TestTable_Usable_ShallowerDepthRejected(t *testing.T) {
	tt := NewTable(1)
	tt.Store(7, 3, 0, 0, 50, BoundExact)
	entry, found := tt.Probe(7)
	if _, ok := Usable(entry, found, 5, -1000, 1000, 0); ok {
		t.Fatalf("expected a shallower stored entry to be rejected for a deeper request")
	}
}

func TestTable_Usable_UpperBoundOnlyCutsBelowAlpha(t *testing.T) {
	tt := NewTable(1)
	tt.Store(7, 5, 0, 0, 50, BoundUpper)
	entry, found := tt.Probe(7)
	if _, ok := Usable(entry, found, 5, 40, 1000, 0); ok {
		t.Fatalf("upper bound of 50 should not cut off against alpha=40")
	}
	if score, ok := Usable(entry, found, 5, 100, 1000, 0); !ok || score != 50 {
		t.Fatalf("upper bound of 50 should cut off against alpha=100, got score=%d ok=%v", score, ok)
	}
}

func TestTable_Usable_LowerBoundOnlyCutsAboveBeta(t *testing.T) {
	tt := NewTable(1)
	tt.Store(7, 5, 0, 0, 50, BoundLower)
	entry, found := tt.Probe(7)
	if _, ok := Usable(entry, found, 5, -1000, 100, 0); ok {
		t.Fatalf("lower bound of 50 should not cut off against beta=100")
	}
	if score, ok := Usable(entry, found, 5, -1000, 40, 0); !ok || score != 50 {
		t.Fatalf("lower bound of 50 should cut off against beta=40, got score=%d ok=%v", score, ok)
	}
}

func TestTable_ClusterReplacesShallowestWhenFull(t *testing.T) {
	tt := NewTable(1)
	// Force four entries into the same cluster by using keys that are
	// multiples of clusterCount (hash % clusterCount == 0 for all of them),
	// then a fifth distinct key should evict the shallowest of the four.
	cc := tt.clusterCount

	keys := []uint64{cc * 1, cc * 2, cc * 3, cc * 4}
	for i, k := range keys {
		tt.Store(k, int8(i+1), 0, 0, 0, BoundExact)
	}
	// The shallowest entry has depth 1 (key cc*1); a fifth distinct key
	// colliding into the same cluster should replace it.
	tt.Store(cc*5, 10, 0, 0, 0, BoundExact)
	if _, found := tt.Probe(cc * 1); found {
		t.Fatalf("expected the shallowest entry to have been evicted")
	}
	if _, found := tt.Probe(cc * 5); !found {
		t.Fatalf("expected the new entry to have been stored")
	}
}
