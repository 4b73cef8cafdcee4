package board

import "testing"

// Perft counts from the startpos and a few well-known stress positions,
// grounded on tests/perft_test.go's fixture set (now exercising board's own
// ParseFen/Perft instead of an external module alias).

func TestPerftInitialPosition(t *testing.T) {
	b := ParseFen(Startpos)
	if got := Perft(&b, 1); got != 20 {
		t.Fatalf("perft depth1: got %d want %d", got, 20)
	}
	if got := Perft(&b, 2); got != 400 {
		t.Fatalf("perft depth2: got %d want %d", got, 400)
	}
	if got := Perft(&b, 3); got != 8902 {
		t.Fatalf("perft depth3: got %d want %d", got, 8902)
	}
}

func TestPerftKiwipete(t *testing.T) {
	fen := "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	b := ParseFen(fen)
	if got := Perft(&b, 1); got != 48 {
		t.Fatalf("kiwipete perft depth1: got %d want %d", got, 48)
	}
	if got := Perft(&b, 2); got != 2039 {
		t.Fatalf("kiwipete perft depth2: got %d want %d", got, 2039)
	}
}

func TestPerftEndgamePosition(t *testing.T) {
	fen := "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1"
	b := ParseFen(fen)
	if got := Perft(&b, 1); got != 14 {
		t.Fatalf("endgame perft depth1: got %d want %d", got, 14)
	}
	if got := Perft(&b, 4); got != 43238 {
		t.Fatalf("endgame perft depth4: got %d want %d", got, 43238)
	}
}
