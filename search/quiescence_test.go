package search

import (
	"testing"

	"github.com/oliverans-student/gooseline/board"
)

func freshWorker() *worker {
	sh := &shared{
		tt:       NewTable(1),
		killers:  &KillerTable{},
		history:  &HistoryTable{},
		counters: &CounterTable{},
		deadline: deadline{infinite: true},
	}
	return &worker{shared: sh, order: &orderTables{killers: sh.killers, history: sh.history, counters: sh.counters}, extBudget: extensionBudgetInit, qDepth: DefaultQDepth}
}

// The start position has no captures, so quiescence returns the stand-pat
// value, which includes the side-to-move tempo bonus and is positive.
func TestQuiescence_StandPatWhenNoCapturesImprove(t *testing.T) {
	pos := board.ParseFen(board.Startpos)
	w := freshWorker()
	var pv PVLine
	score := w.quiescence(&pos, -MaxScore, MaxScore, &pv, 0, w.qDepth)
	if score <= 0 {
		t.Fatalf("expected the startpos quiescence value to be at least the tempo bonus, got %d", score)
	}
}

// S5: quiescence resolves a hanging capture rather than taking the
// stand-pat material count at face value.
func TestQuiescence_ResolvesHangingCapture(t *testing.T) {
	// White queen can be captured by a black pawn; without quiescence a
	// depth-0 static eval would count the white queen as present.
	pos := board.ParseFen("4k3/8/8/8/8/2p5/3Q4/4K3 b - - 0 1")
	w := freshWorker()
	var pv PVLine
	standPat := evaluateRelative(&pos)
	score := w.quiescence(&pos, -MaxScore, MaxScore, &pv, 0, w.qDepth)
	// Black to move, cxd2 wins the queen for the pawn (Kxd2 recaptures), so
	// from Black's perspective the score should rise far above the stand-pat
	// value, which still counts White's queen.
	if score < standPat+500 {
		t.Fatalf("expected quiescence to find the winning pawn-takes-queen capture, got %d (stand-pat %d)", score, standPat)
	}
}

func TestQuiescence_InCheckSearchesAllReplies(t *testing.T) {
	// Black king in check from a rook down the e-file; quiescence must
	// search non-capture king moves too, not just captures.
	pos := board.ParseFen("4k3/8/8/8/8/8/8/4R1K1 b - - 0 1")
	if !pos.OurKingInCheck() {
		t.Skip("fixture not in check, adjust FEN")
	}
	w := freshWorker()
	var pv PVLine
	score := w.quiescence(&pos, -MaxScore, MaxScore, &pv, 0, w.qDepth)
	if score == matedIn(0) {
		t.Fatalf("expected an escape from check, not immediate mate")
	}
}
