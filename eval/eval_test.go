package eval

import (
	"testing"

	"github.com/oliverans-student/gooseline/board"
)

// Grounded on engine/evaluation_util.go's symmetric-position sanity checks:
// a mirrored position should evaluate to the mirror image of the score, and
// the starting position (fully symmetric) should score near zero plus the
// side-to-move tempo bonus.

func TestEvaluate_StartposIsNearZero(t *testing.T) {
	b := board.ParseFen(board.Startpos)
	score := Evaluate(&b)
	if score != TempoBonus {
		t.Fatalf("startpos eval: got %d want %d (white to move, tempo only)", score, TempoBonus)
	}
}

func TestEvaluate_MaterialAdvantageIsPositiveForWhite(t *testing.T) {
	// White is up a rook.
	b := board.ParseFen("4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	if score := Evaluate(&b); score <= 0 {
		t.Fatalf("expected White up a rook to score positive, got %d", score)
	}
}

func TestEvaluate_MaterialAdvantageIsNegativeForBlackToScoreMirror(t *testing.T) {
	// Mirror of the above: Black up a rook, White to move.
	b := board.ParseFen("4k3/8/8/8/8/8/8/r3K3 w - - 0 1")
	if score := Evaluate(&b); score >= 0 {
		t.Fatalf("expected Black up a rook to score negative for White, got %d", score)
	}
}

func TestGamePhase_StartposIsMidgame(t *testing.T) {
	b := board.ParseFen(board.Startpos)
	if phase := GamePhase(&b); phase != TotalPhase {
		t.Fatalf("startpos phase: got %d want %d", phase, TotalPhase)
	}
	if IsEndgame(&b) {
		t.Fatalf("startpos should not register as endgame")
	}
}

func TestGamePhase_BareKingsIsEndgame(t *testing.T) {
	b := board.ParseFen("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	if phase := GamePhase(&b); phase != 0 {
		t.Fatalf("bare kings phase: got %d want 0", phase)
	}
	if !IsEndgame(&b) {
		t.Fatalf("bare kings should register as endgame")
	}
}

// e5 = file 'e' (4) + rank 5 (index 4) * 8.
const e5 = board.Square(4 + 4*8)

func TestIsPassedPawn(t *testing.T) {
	// White pawn on e5 with no black pawns on d,e,f files ahead of it.
	b := board.ParseFen("4k3/8/8/4P3/8/8/8/4K3 w - - 0 1")
	blackPawns := b.PieceBitboard(board.PieceTypePawn, board.Black)
	if !IsPassedPawn(e5, board.White, blackPawns) {
		t.Fatalf("expected e5 pawn to be passed with no black pawns on board")
	}
}

func TestIsPassedPawn_BlockedByEnemyPawn(t *testing.T) {
	b := board.ParseFen("4k3/4p3/8/4P3/8/8/8/4K3 w - - 0 1")
	blackPawns := b.PieceBitboard(board.PieceTypePawn, board.Black)
	if IsPassedPawn(e5, board.White, blackPawns) {
		t.Fatalf("expected e5 pawn to not be passed with a blocking black pawn on e7")
	}
}
