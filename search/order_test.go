package search

import (
	"testing"

	"github.com/oliverans-student/gooseline/board"
)

// Grounded on engine/moveordering_test.go's ordering-precedence checks.

func TestScoreMoves_HashMoveOutranksEverything(t *testing.T) {
	pos := board.ParseFen("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		t.Fatalf("expected legal moves")
	}
	hashMove := moves[len(moves)-1] // pick something that isn't necessarily first

	order := &orderTables{killers: &KillerTable{}, history: &HistoryTable{}, counters: &CounterTable{}}
	list := scoreMoves(&pos, moves, 0, hashMove, 0, order)
	orderNext(0, &list)

	if list.moves[0].move != hashMove {
		t.Fatalf("expected hash move to be ordered first")
	}
}

func TestScoreMoves_CapturesOutrankQuiets(t *testing.T) {
	pos := board.ParseFen("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	moves := pos.LegalMoves()
	order := &orderTables{killers: &KillerTable{}, history: &HistoryTable{}, counters: &CounterTable{}}
	list := scoreMoves(&pos, moves, 0, 0, 0, order)

	sawQuiet := false
	for i := range list.moves {
		orderNext(i, &list)
		isCapture := board.IsCapture(list.moves[i].move, &pos)
		if isCapture && sawQuiet {
			t.Fatalf("found a capture ordered after a quiet move")
		}
		if !isCapture {
			sawQuiet = true
		}
	}
}

func TestKillerTable_InsertAndQuery(t *testing.T) {
	k := &KillerTable{}
	m1 := board.Move(1234)
	m2 := board.Move(5678)

	k.Insert(m1, 3)
	if primary, _ := k.isKiller(m1, 3); !primary {
		t.Fatalf("expected m1 to be the primary killer at ply 3")
	}
	k.Insert(m2, 3)
	primary, secondary := k.isKiller(m1, 3)
	if primary {
		t.Fatalf("expected m1 to be demoted once m2 is inserted")
	}
	if !secondary {
		t.Fatalf("expected m1 to become the secondary killer")
	}
	if p, _ := k.isKiller(m2, 3); !p {
		t.Fatalf("expected m2 to be the new primary killer")
	}
}

func TestHistoryTable_BonusAndMalus(t *testing.T) {
	h := &HistoryTable{}
	m := board.Move(42)
	h.Bonus(true, m, 4)
	if got := h.score(true, m); got <= 0 {
		t.Fatalf("expected a positive history score after Bonus, got %d", got)
	}
	before := h.score(true, m)
	h.Malus(true, m, 4)
	if got := h.score(true, m); got >= before {
		t.Fatalf("expected Malus to reduce the history score: before=%d after=%d", before, got)
	}
}

func TestCounterTable_StoreAndGet(t *testing.T) {
	c := &CounterTable{}
	prev := board.Move(10)
	reply := board.Move(20)
	c.Store(true, prev, reply)
	if got := c.Get(true, prev); got != reply {
		t.Fatalf("expected stored counter move, got %v want %v", got, reply)
	}
	if got := c.Get(false, prev); got == reply {
		t.Fatalf("expected the other side's counter table to be unaffected")
	}
}
