package search

import (
	"testing"

	"github.com/oliverans-student/gooseline/board"
)

// Grounded on engine/see_test.go's swap-off scenarios.

func TestSEE_WinningPawnCapture(t *testing.T) {
	// White pawn on e4 can capture a black knight on d5, undefended.
	pos := board.ParseFen("4k3/8/8/3n4/4P3/8/8/4K3 w - - 0 1")
	mv, err := board.ParseUCIMove(&pos, "e4d5")
	if err != nil {
		t.Fatalf("failed to parse move: %v", err)
	}
	if see := staticExchangeEval(&pos, mv); see <= 0 {
		t.Fatalf("expected a winning capture (pawn takes undefended knight) to have positive SEE, got %d", see)
	}
}

func TestSEE_LosingQueenCapture(t *testing.T) {
	// White queen on d2 captures a pawn on d4 defended down the file by a
	// black queen on d8.
	pos := board.ParseFen("3q2k1/8/8/8/3p4/8/3Q4/4K3 w - - 0 1")
	mv, err := board.ParseUCIMove(&pos, "d2d4")
	if err != nil {
		t.Fatalf("failed to parse move: %v", err)
	}
	if see := staticExchangeEval(&pos, mv); see >= 0 {
		t.Fatalf("expected queen-takes-defended-pawn to have negative SEE, got %d", see)
	}
}

func TestSEE_UndefendedRookCapture(t *testing.T) {
	// Rook takes an undefended rook: a clean material win.
	pos := board.ParseFen("4k3/8/8/3r4/8/8/8/3R1K2 w - - 0 1")
	mv, err := board.ParseUCIMove(&pos, "d1d5")
	if err != nil {
		t.Fatalf("failed to parse move: %v", err)
	}
	if see := staticExchangeEval(&pos, mv); see <= 0 {
		t.Fatalf("expected an undefended rook capture to win material, got %d", see)
	}
}
