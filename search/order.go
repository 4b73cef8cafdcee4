package search

import (
	"sync"

	"github.com/oliverans-student/gooseline/board"
)

// Move ordering offsets, highest-priority first: the PV/hash move outranks
// everything, then promotions, then captures (scored by MVV-LVA within that
// band). Killers, counter moves and plain history share the quiet band below
// captures: history scores are not capped below killerOffset, so a quiet
// move with a large history score can sort ahead of a killer. Grounded on
// the teacher's moveordering.go offset ladder.
const (
	hashMoveOffset   uint32 = 1 << 24
	promotionOffset  uint32 = 1 << 20
	captureOffset    uint32 = 1 << 16
	killerOffset     uint32 = 1 << 12
	counterOffset    uint32 = 1 << 11
)

// mvvLva[victim][attacker] scores a capture by the value of the piece taken
// minus a small discount for the attacker's own value, so that "queen takes
// pawn" sorts below "pawn takes queen".
var mvvLva [7][7]uint32

func init() {
	values := [7]uint32{0, 1, 3, 3, 5, 9, 0}
	for victim := 1; victim <= 5; victim++ {
		for attacker := 1; attacker <= 6; attacker++ {
			mvvLva[victim][attacker] = values[victim]*10 - values[attacker]
		}
	}
}

// scoredMove pairs a move with its ordering key for a single ply's move
// list.
type scoredMove struct {
	move  board.Move
	score uint32
}

// moveList is the scored move set for one node, consumed via selection-sort
// (orderNext) so that only the moves actually searched pay the sort cost.
type moveList struct {
	moves []scoredMove
}

// KillerTable remembers up to two quiet moves that caused a beta cutoff at
// each ply. It is shared across every worker in a parallel search the same
// way the transposition table is (spec.md §5 treats a single coarse mutex
// per shared table as acceptable): a killer found by one worker's root-move
// subtree is a reasonable ordering hint for another's, even though the
// positions at a given ply differ between them.
type KillerTable struct {
	mu    sync.Mutex
	moves [MaxPly + 1][2]board.Move
}

// Insert records move as the newest killer at ply, demoting the previous
// primary killer to secondary.
func (k *KillerTable) Insert(move board.Move, ply int) {
	if ply < 0 || ply > MaxPly {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.moves[ply][0] != move {
		k.moves[ply][1] = k.moves[ply][0]
		k.moves[ply][0] = move
	}
}

func (k *KillerTable) isKiller(move board.Move, ply int) (primary, secondary bool) {
	if ply < 0 || ply > MaxPly {
		return false, false
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.moves[ply][0] == move, k.moves[ply][1] == move
}

// HistoryTable scores quiet moves by how often they have produced beta
// cutoffs (bonus) versus failed to (malus), indexed by side to move and
// from/to square. Shared across workers under its own mutex: a move that is
// good for one worker's line is a reasonable bet for another's.
type HistoryTable struct {
	mu     sync.Mutex
	scores [2][64][64]int32
}

const historyMax = 1 << 14

// Bonus rewards move for causing a cutoff at the given depth.
func (h *HistoryTable) Bonus(white bool, move board.Move, depth int8) {
	side := sideIndex(white)
	h.mu.Lock()
	defer h.mu.Unlock()
	v := &h.scores[side][move.From()][move.To()]
	*v += int32(depth) * int32(depth)
	if *v >= historyMax {
		h.age(side)
	}
}

// Malus penalizes a quiet move that was tried but did not cause a cutoff,
// while a later move in the same node did.
func (h *HistoryTable) Malus(white bool, move board.Move, depth int8) {
	side := sideIndex(white)
	h.mu.Lock()
	defer h.mu.Unlock()
	v := &h.scores[side][move.From()][move.To()]
	*v -= int32(depth) * int32(depth)
	if *v < -historyMax {
		*v = -historyMax
	}
}

func (h *HistoryTable) score(white bool, move board.Move) int32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scores[sideIndex(white)][move.From()][move.To()]
}

// age halves every entry for side, keeping the table from saturating over a
// long search. Called with mu already held.
func (h *HistoryTable) age(side int) {
	for f := 0; f < 64; f++ {
		for t := 0; t < 64; t++ {
			h.scores[side][f][t] /= 2
		}
	}
}

func sideIndex(white bool) int {
	if white {
		return 0
	}
	return 1
}

// CounterTable records, per side and per previous move, the quiet reply
// that most recently caused a beta cutoff in response to it.
type CounterTable struct {
	mu    sync.Mutex
	moves [2][64][64]board.Move
}

func (c *CounterTable) Store(white bool, prev, reply board.Move) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.moves[sideIndex(white)][prev.From()][prev.To()] = reply
}

func (c *CounterTable) Get(white bool, prev board.Move) board.Move {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.moves[sideIndex(white)][prev.From()][prev.To()]
}

// orderTables bundles the per-worker/shared state the oracle needs to score
// one node's moves.
type orderTables struct {
	killers  *KillerTable
	history  *HistoryTable
	counters *CounterTable
}

// scoreMoves assigns an ordering key to every move in moves, given the
// preferred move from the hash table or PV (hashMove), the previous ply's
// move (for counter-move lookup), and the ply these moves are being
// generated at (for killer lookup).
func scoreMoves(pos *board.Board, moves []board.Move, ply int, hashMove, prevMove board.Move, t *orderTables) moveList {
	white := pos.SideToMove() == board.White
	list := moveList{moves: make([]scoredMove, len(moves))}

	for i, m := range moves {
		var s uint32
		switch {
		case m == hashMove && hashMove != 0:
			s = hashMoveOffset
		case m.PromotionPieceType() != board.PieceTypeNone:
			s = promotionOffset + mvvLva[board.PieceTypeQueen][m.MovedPiece().Type()]
		case board.IsCapture(m, pos):
			victim := capturedType(pos, m)
			s = captureOffset + mvvLva[victim][m.MovedPiece().Type()]
		default:
			if primary, secondary := t.killers.isKiller(m, ply); primary {
				s = killerOffset + 1
			} else if secondary {
				s = killerOffset
			} else if t.counters.Get(white, prevMove) == m {
				s = counterOffset + uint32(clampHistory(t.history.score(white, m)))
			} else {
				s = uint32(clampHistory(t.history.score(white, m)))
			}
		}
		list.moves[i] = scoredMove{move: m, score: s}
	}
	return list
}

// clampHistory keeps a negative history score from underflowing into the
// unsigned ordering key space.
func clampHistory(v int32) int32 {
	if v < 0 {
		return 0
	}
	return v
}

func capturedType(pos *board.Board, m board.Move) board.PieceType {
	if pt, _, ok := pos.PieceAt(m.To()); ok {
		return pt
	}
	return board.PieceTypePawn // en passant: victim is always a pawn
}

// orderNext selects the highest-scoring unordered move starting at index i
// and swaps it into place, giving an O(n) partial selection sort that only
// ever pays for the prefix of moves actually searched.
func orderNext(i int, list *moveList) {
	best := i
	for j := i + 1; j < len(list.moves); j++ {
		if list.moves[j].score > list.moves[best].score {
			best = j
		}
	}
	list.moves[i], list.moves[best] = list.moves[best], list.moves[i]
}
