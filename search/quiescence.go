package search

import (
	"github.com/oliverans-student/gooseline/board"
	"github.com/oliverans-student/gooseline/eval"
)

// DeltaMargin is the safety margin added to a capture's material gain
// before comparing against alpha in quiescence delta pruning.
var DeltaMargin int32 = 200

// QuiescenceSeeMargin rejects captures whose static exchange evaluation
// falls below this (negative) threshold before they are even searched.
var QuiescenceSeeMargin int32 = -100

// quiescence resolves tactical sequences at the fringe of the main search:
// when not in check it searches only captures (and stops once none remain
// or stand-pat already beats beta), and when in check it searches every
// legal reply, since there is no quiet "do nothing" option available.
// depth is the remaining quiescence budget (q_depth per spec.md §4.3); once
// it runs out the node falls straight back to the static evaluation,
// grounded on the original's `if (depth == 0) return evaluate(board);` in
// search.cpp.
func (w *worker) quiescence(pos *board.Board, alpha, beta int32, pv *PVLine, ply int, depth int8) int32 {
	w.nodes++
	if w.nodes&2047 == 0 && w.shared.deadline.exceeded() {
		w.stopped = true
	}
	if w.stopped {
		return 0
	}

	if depth <= 0 {
		return evaluateRelative(pos)
	}

	inCheck := pos.OurKingInCheck()
	standPat := eval.Evaluate(pos)
	if pos.SideToMove() == board.Black {
		standPat = -standPat
	}

	var best int32
	if inCheck {
		best = matedIn(ply)
	} else {
		if standPat >= beta {
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
		best = standPat
	}

	var moves []board.Move
	if inCheck {
		moves = pos.LegalMoves()
	} else {
		moves = pos.LegalCaptures()
	}
	if len(moves) == 0 {
		if inCheck {
			return matedIn(ply)
		}
		return best
	}

	list := scoreMoves(pos, moves, ply, 0, 0, w.order)
	var childPV PVLine

	for i := range list.moves {
		orderNext(i, &list)
		move := list.moves[i].move

		if !inCheck {
			if staticExchangeEval(pos, move) < QuiescenceSeeMargin {
				continue
			}
			gain := seeCapturedValue(pos, move)
			if move.PromotionPieceType() != board.PieceTypeNone {
				gain += eval.PieceValueMG[move.PromotionPieceType()] - eval.PieceValueMG[board.PieceTypePawn]
			}
			if standPat+gain+DeltaMargin < alpha {
				continue
			}
		}

		undo := pos.Make(move)
		score := -w.quiescence(pos, -beta, -alpha, &childPV, ply+1, depth-1)
		undo()

		if w.stopped {
			return 0
		}
		if score > best {
			best = score
		}
		if score >= beta {
			return score
		}
		if score > alpha {
			alpha = score
			pv.Update(move, childPV)
		}
		childPV.Clear()
	}

	return best
}
