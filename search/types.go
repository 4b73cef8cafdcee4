// Package search implements the negamax search core: move ordering, a
// transposition table, quiescence search, the negamax engine with its
// pruning and extension rules, and the iterative-deepening driver that
// parallelizes across root moves. It depends on board for move generation
// and on eval for static position scoring; neither of those packages
// depends back on search.
package search

import "github.com/oliverans-student/gooseline/board"

// Score constants. MaxScore bounds the representable score range; Checkmate
// is the threshold above which a score encodes "mate in N" rather than a
// material/positional evaluation, per mateScore = ±(MaxScore - pliesToMate).
const (
	MaxScore  int32 = 32500
	Checkmate int32 = 20000
	DrawScore int32 = 0
	MaxPly          = 100
)

// mateIn builds the score for delivering mate in the given number of plies
// from the root, on the side to move's perspective.
func mateIn(ply int) int32 { return MaxScore - int32(ply) }

// matedIn builds the score for being mated in the given number of plies.
func matedIn(ply int) int32 { return -MaxScore + int32(ply) }

// isMateScore reports whether s encodes a forced mate rather than a
// material/positional evaluation.
func isMateScore(s int32) bool { return s > Checkmate || s < -Checkmate }

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func minI8(a, b int8) int8 {
	if a < b {
		return a
	}
	return b
}

// PVLine accumulates the principal variation as it is discovered bottom-up:
// each node prepends its own best move to the line reported by its best
// child.
type PVLine struct {
	Moves []board.Move
}

// Clear empties the line for reuse without reallocating its backing array.
func (pv *PVLine) Clear() { pv.Moves = pv.Moves[:0] }

// Update sets move as this node's contribution and appends the child's line
// after it.
func (pv *PVLine) Update(move board.Move, child PVLine) {
	pv.Moves = append(pv.Moves[:0], move)
	pv.Moves = append(pv.Moves, child.Moves...)
}

// Clone returns an independent copy, since PVLine reuses its backing slice
// across sibling searches.
func (pv PVLine) Clone() PVLine {
	out := make([]board.Move, len(pv.Moves))
	copy(out, pv.Moves)
	return PVLine{Moves: out}
}

// BestMove returns the line's first move, or the zero Move if the line is
// empty.
func (pv PVLine) BestMove() board.Move {
	if len(pv.Moves) == 0 {
		return 0
	}
	return pv.Moves[0]
}

// String renders the line in coordinate notation, space-separated, the
// format the "pv" field of an info line uses.
func (pv PVLine) String() string {
	s := ""
	for i, m := range pv.Moves {
		if i > 0 {
			s += " "
		}
		s += m.String()
	}
	return s
}
