package search

import (
	"testing"
	"time"

	"github.com/oliverans-student/gooseline/board"
)

// End-to-end scenarios grounded on spec.md §8's S1-S6 and the teacher's
// tests/perft_test.go / engine search smoke tests.

func searchDepth(t *testing.T, fen string, depth int8) (board.Move, int32) {
	t.Helper()
	pos := board.ParseFen(fen)
	s := NewSearcher(4)
	var history []uint64
	history = append(history, pos.Hash())

	var lastMove board.Move
	var lastScore int32
	best := s.FindBestMove(&pos, history, Limits{Depth: depth, Threads: 1}, func(info Info) {
		lastMove = info.PV.BestMove()
		lastScore = info.Score
	})
	if best == 0 && lastMove != 0 {
		best = lastMove
	}
	return best, lastScore
}

// S1: mate in one.
func TestFindBestMove_MateInOne(t *testing.T) {
	best, score := searchDepth(t, "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1", 3)
	if best == 0 {
		t.Fatalf("expected a move to be returned")
	}
	if !isMateScore(score) {
		t.Fatalf("expected a mate score, got %d", score)
	}
	pos := board.ParseFen("6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")
	pos.Make(best)
	if pos.Outcome(nil) != board.Checkmate {
		t.Fatalf("expected the returned move to deliver checkmate, got outcome %v", pos.Outcome(nil))
	}
}

// S2: Scholar's mate, a mate in one from this position. spec.md names the FEN of the position
// *after* Qxf7# is played, but requires the engine to find Qxf7# "from the
// prior position" - one ply earlier, queen still on h5, White to move.
func TestFindBestMove_ScholarsMate(t *testing.T) {
	fen := "r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4"
	best, score := searchDepth(t, fen, 3)
	if best == 0 {
		t.Fatalf("expected a move to be returned")
	}
	if !isMateScore(score) {
		t.Fatalf("expected a mate score, got %d", score)
	}
	pos := board.ParseFen(fen)
	qxf7, err := board.ParseUCIMove(&pos, "h5f7")
	if err != nil {
		t.Fatalf("failed to parse Qxf7: %v", err)
	}
	if best != qxf7 {
		t.Fatalf("expected Qxf7#, got %v", best)
	}
	pos.Make(best)
	if pos.Outcome(nil) != board.Checkmate {
		t.Fatalf("expected Qxf7 to deliver checkmate, got outcome %v", pos.Outcome(nil))
	}
}

// S4: stalemate detection and the null-move sentinel.
func TestFindBestMove_StalemateReturnsSentinel(t *testing.T) {
	best, _ := searchDepth(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", 4)
	if best != 0 {
		t.Fatalf("expected the null-move sentinel (0) on stalemate, got %v", best)
	}
}

// S3: avoid hanging the queen to an obvious recapture.
func TestFindBestMove_AvoidsHangingQueen(t *testing.T) {
	best, _ := searchDepth(t, "4k3/8/8/8/3q4/8/3Q4/4K3 w - - 0 1", 4)
	pos := board.ParseFen("4k3/8/8/8/3q4/8/3Q4/4K3 w - - 0 1")
	if best == 0 {
		t.Fatalf("expected a move to be returned")
	}
	// The hanging capture is the queen on d2 taking the queen on d4.
	hanging, err := board.ParseUCIMove(&pos, "d2d4")
	if err != nil {
		t.Fatalf("failed to parse the candidate hanging move: %v", err)
	}
	if best == hanging {
		t.Fatalf("engine played Qxd4?? despite the recapture")
	}
}

// Invariant 1: a returned move is always legal in the searched position.
func TestFindBestMove_ReturnsLegalMove(t *testing.T) {
	pos := board.ParseFen(board.Startpos)
	best, _ := searchDepth(t, board.Startpos, 3)
	legal := pos.LegalMoves()
	found := false
	for _, m := range legal {
		if m == best {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("returned move %v is not in the legal move list", best)
	}
}

// S6: a warm transposition table strictly reduces node count on a re-search.
func TestFindBestMove_TranspositionTableShortensRework(t *testing.T) {
	pos := board.ParseFen(board.Startpos)
	s := NewSearcher(8)
	history := []uint64{pos.Hash()}

	var firstNodes, secondNodes uint64
	s.FindBestMove(&pos, history, Limits{Depth: 5, Threads: 1}, func(info Info) {
		firstNodes = info.Nodes
	})
	s.FindBestMove(&pos, history, Limits{Depth: 5, Threads: 1}, func(info Info) {
		secondNodes = info.Nodes
	})
	if secondNodes >= firstNodes {
		t.Fatalf("expected a warm-table re-search to visit fewer nodes: first=%d second=%d", firstNodes, secondNodes)
	}
}

// Invariant 7: re-searching after clearing tables is deterministic
// single-threaded.
func TestFindBestMove_DeterministicAfterClear(t *testing.T) {
	fen := "r1bqkb1r/pppp1Qpp/2n2n2/4p3/2B1P3/8/PPPP1PPP/RNB1K1NR b KQkq - 0 4"
	s := NewSearcher(4)

	pos1 := board.ParseFen(fen)
	best1 := s.FindBestMove(&pos1, []uint64{pos1.Hash()}, Limits{Depth: 4, Threads: 1}, nil)

	s.NewGame()
	pos2 := board.ParseFen(fen)
	best2 := s.FindBestMove(&pos2, []uint64{pos2.Hash()}, Limits{Depth: 4, Threads: 1}, nil)

	if best1 != best2 {
		t.Fatalf("expected deterministic best move across cleared-table re-search: got %v then %v", best1, best2)
	}
}

// Invariant 6: make/unmake during search leaves the root position untouched.
func TestFindBestMove_RootUnmodifiedAfterSearch(t *testing.T) {
	fen := board.Startpos
	pos := board.ParseFen(fen)
	before := pos.Hash()

	s := NewSearcher(4)
	s.FindBestMove(&pos, []uint64{pos.Hash()}, Limits{Depth: 4, Threads: 1}, nil)

	if pos.Hash() != before {
		t.Fatalf("root position hash changed during search: before=%d after=%d", before, pos.Hash())
	}
}

// A 50 ms move-time budget on the start position still returns a move, and
// the search finishes well within two seconds.
func TestFindBestMove_RespectsMoveTime(t *testing.T) {
	pos := board.ParseFen(board.Startpos)
	s := NewSearcher(4)
	start := time.Now()
	best := s.FindBestMove(&pos, []uint64{pos.Hash()}, Limits{MoveTime: 50 * time.Millisecond, Threads: 1}, nil)
	elapsed := time.Since(start)
	if best == 0 {
		t.Fatalf("expected a move under a tight move-time budget")
	}
	if elapsed > 2*time.Second {
		t.Fatalf("search took far longer than its move-time budget: %v", elapsed)
	}
}
