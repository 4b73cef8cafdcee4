package search

import (
	"math/bits"

	"github.com/oliverans-student/gooseline/board"
	"github.com/oliverans-student/gooseline/eval"
)

// Pruning/reduction/extension knobs. Exposed as package vars rather than a
// config struct or file, matching the ambient convention: these are
// compiled-in constants a maintainer tunes by editing the source, not
// runtime configuration (see SPEC_FULL.md §2.3).
var (
	FutilityMargins        = [8]int32{0, 120, 220, 320, 420, 520, 620, 720}
	RFPMargins              = [8]int32{0, 100, 200, 300, 400, 500, 600, 700}
	RazoringMargins         = [4]int32{0, 125, 225, 325}
	LateMovePruningMargins  = [9]int{0, 3, 5, 9, 14, 20, 27, 35, 44}

	LMRDepthLimit  int8 = 2
	LMRMoveLimit        = 2
	NullMoveMinDepth int8 = 2

	// extensionBudgetInit bounds how many extra plies a single worker's
	// search line may accumulate from check/sole-reply/mate-threat/
	// promotion-threat/singular extensions combined, preventing runaway
	// search-tree blowup from stacked extensions along one path.
	extensionBudgetInit int8 = 4
)

var lmrTable [MaxPly + 1][64]int8

func init() {
	for d := 1; d <= MaxPly; d++ {
		for m := 1; m < 64; m++ {
			r := 0.4 + flog(float64(d))*flog(float64(m))*0.5
			lmrTable[d][m] = int8(r)
		}
	}
}

// flog is a tiny natural-log approximation good enough for shaping the LMR
// table; avoids pulling in math.Log for a single call site's worth of use.
func flog(x float64) float64 {
	if x < 1 {
		return 0
	}
	n := 0.0
	for x >= 2 {
		x /= 2
		n++
	}
	// x is now in [1,2); linear approx of ln on that range.
	return n*0.693147 + (x-1)*0.6
}

// evaluateRelative returns eval.Evaluate from the side-to-move's
// perspective, the convention negamax requires.
func evaluateRelative(pos *board.Board) int32 {
	s := eval.Evaluate(pos)
	if pos.SideToMove() == board.Black {
		return -s
	}
	return s
}

// hasNonPawnMaterial reports whether the side to move has any piece beyond
// pawns and king, used to withhold null-move pruning in king-and-pawn
// endings where zugzwang makes the null-move assumption unsound.
func hasNonPawnMaterial(pos *board.Board) bool {
	bb := pos.Bitboards(pos.SideToMove())
	return bb.Knights|bb.Bishops|bb.Rooks|bb.Queens != 0
}

// isMopUp reports spec.md §4.5.1's mop-up flag: true iff one side has only
// its king left on the board. Grounded on the original's
// `board.us(Color::WHITE).count() == 1 || board.us(Color::BLACK).count() == 1`
// in search_negamax.cpp's findBestMove — a single per-search flag there, but
// cheap enough here to recompute per node from the position's own bitboards.
func isMopUp(pos *board.Board) bool {
	white := pos.Bitboards(board.White)
	black := pos.Bitboards(board.Black)
	return bits.OnesCount64(white.All) == 1 || bits.OnesCount64(black.All) == 1
}

// mateThreatMove reports whether move (already legal, not yet played) drives
// its destination close enough to the enemy king to be a mating threat in
// its own right: grounded on the original's mateThreatMove in
// search_negamax.cpp, a Chebyshev/file-rank proxy for "near the enemy king"
// rather than a real mate search.
func mateThreatMove(pos *board.Board, move board.Move) bool {
	enemy := opposite(pos.SideToMove())
	theirKing := pos.Bitboards(enemy).Kings
	if theirKing == 0 {
		return false
	}
	kingSq := bits.TrailingZeros64(theirKing)
	kingFile, kingRank := kingSq&7, kingSq>>3

	to := int(move.To())
	toFile, toRank := to&7, to>>3

	if manhattanDistance(toFile, toRank, kingFile, kingRank) <= 3 {
		return true
	}

	switch move.MovedPiece().Type() {
	case board.PieceTypeRook, board.PieceTypeQueen:
		if absInt(toFile-kingFile) <= 1 && absInt(toRank-kingRank) <= 1 {
			return true
		}
	}
	return false
}

func manhattanDistance(f1, r1, f2, r2 int) int {
	return absInt(f1-f2) + absInt(r1-r2)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// promotionThreatMove reports whether move is a passed pawn advancing deep
// into enemy territory, not yet promoting but threatening to. Grounded on
// the original's promotionThreatMove in search_negamax.cpp: a pawn move,
// landing on a square from which the pawn is passed (eval.IsPassedPawn),
// past the far side of the board (rank > 3 for White, rank < 4 for Black).
// This is distinct from move simply being a promotion.
func promotionThreatMove(pos *board.Board, move board.Move) bool {
	if move.MovedPiece().Type() != board.PieceTypePawn {
		return false
	}
	color := pos.SideToMove()
	to := move.To()
	rank := int(to) >> 3

	enemyPawns := pos.Bitboards(opposite(color)).Pawns
	if !eval.IsPassedPawn(to, color, enemyPawns) {
		return false
	}
	if color == board.White {
		return rank > 3
	}
	return rank < 4
}

// worker carries one goroutine's local search state: its own node counter,
// stop flag, extension budget, and position-hash history (for repetition
// detection along its own line of play). It shares the transposition,
// killer, history and counter tables with every other worker via pointers
// into shared.
type worker struct {
	id        int
	shared    *shared
	order     *orderTables
	nodes     uint64
	stopped   bool
	extBudget int8
	qDepth    int8
	history   []uint64
}

func (w *worker) pollTime() {
	if w.nodes&4095 == 0 && w.shared.deadline.exceeded() {
		w.shared.requestStop()
	}
	if w.shared.isStopped() {
		w.stopped = true
	}
}

// negamax is the core recursive search. alpha/beta and the returned score
// are always relative to the side to move at this node (the negamax sign
// convention): the caller negates the child's return value before
// comparing it against its own window.
func (w *worker) negamax(pos *board.Board, alpha, beta int32, depth int8, ply int, pv *PVLine, prevMove board.Move, didNull, isExtended bool, excluded board.Move) int32 {
	w.nodes++
	w.pollTime()
	if w.stopped {
		return 0
	}

	if ply >= MaxPly {
		return evaluateRelative(pos)
	}

	isRoot := ply == 0
	isPV := beta-alpha > 1

	if !isRoot {
		if pos.IsDrawByRepetition(w.history) || pos.IsDrawBy50() || pos.IsInsufficientMaterial() {
			return DrawScore
		}
	}

	inCheck := pos.OurKingInCheck()
	if inCheck && w.extBudget > 0 {
		depth++
		w.extBudget--
		defer func() { w.extBudget++ }()
	}

	if depth <= 0 {
		return w.quiescence(pos, alpha, beta, pv, ply, w.qDepth)
	}

	hash := pos.Hash()
	entry, found := w.shared.tt.Probe(hash)
	var hashMove board.Move
	if found {
		hashMove = entry.Move
	}

	if !isRoot && !isPV {
		if excluded == 0 {
			if score, ok := Usable(entry, found, depth, alpha, beta, ply); ok {
				return score
			}
		}
	}

	var staticScore int32
	if found {
		staticScore = scoreFromTT(entry.Score, ply)
	} else {
		staticScore = evaluateRelative(pos)
	}

	improving := ply >= 2 && !inCheck && staticScore > alpha
	mopUp := isMopUp(pos)
	endGame := eval.IsEndgame(pos)

	// Reverse-futility / static-null-move pruning: if we're already far
	// enough above beta that the opponent's best reply couldn't plausibly
	// claw back the margin, cut immediately. Withheld in the endgame and
	// under mop-up, where the static eval is least trustworthy (per the
	// original's shared pruningCondition gating on !endGameFlag && !mopUp).
	if !inCheck && !isPV && !isRoot && !mopUp && !endGame && depth >= 1 && depth <= 7 && abs32(beta) < Checkmate {
		margin := RFPMargins[depth]
		if !improving {
			margin -= 50
		}
		if staticScore-margin >= beta {
			return staticScore - margin
		}
	}

	// Null-move pruning: pass the turn and see if the opponent, given a
	// free move, still can't reach beta. Skipped in king-and-pawn endings
	// (zugzwang, via hasNonPawnMaterial), in the endgame generally, under
	// mop-up, and at the node directly after another null move (didNull).
	if !inCheck && !isPV && !didNull && !isRoot && !mopUp && !endGame && depth >= NullMoveMinDepth && hasNonPawnMaterial(pos) {
		undo := pos.MakeNull()
		var childPV PVLine
		w.history = append(w.history, pos.Hash())
		R := int8(3) + depth/3
		if depth > 6 {
			R++
		}
		if R > depth-1 {
			R = depth - 1
		}
		score := -w.negamax(pos, -beta, -beta+1, depth-1-R, ply+1, &childPV, 0, true, isExtended, 0)
		w.history = w.history[:len(w.history)-1]
		undo()

		if w.stopped {
			return 0
		}
		if score >= beta && !isMateScore(score) {
			return score
		}
	}

	// Razoring: deep enough below alpha at shallow depth that only
	// quiescence needs to confirm we can't recover.
	if !inCheck && !isPV && !isRoot && !mopUp && !endGame && depth >= 1 && depth <= 3 && abs32(alpha) < Checkmate {
		margin := RazoringMargins[depth]
		if staticScore+margin <= alpha {
			var razorPV PVLine
			score := w.quiescence(pos, alpha, alpha+1, &razorPV, ply, w.qDepth)
			if score <= alpha {
				return score
			}
		}
	}

	// Singular extension: if the hash move is so far ahead of every
	// alternative that a reduced search excluding it can't reach its own
	// score minus a margin, it is likely forced — extend it.
	var singular bool
	if !isPV && !isRoot && !inCheck && !didNull && excluded == 0 && w.extBudget > 0 &&
		depth >= 8 && hashMove != 0 && found && entry.Bound == BoundExact && entry.Depth >= depth-3 {
		ttValue := scoreFromTT(entry.Score, ply)
		if !isMateScore(ttValue) {
			margin := int32(50 + 10*int32(depth))
			target := ttValue - margin
			R := int8(3) + depth/4
			if R > depth-1 {
				R = depth - 1
			}
			var verifyPV PVLine
			score := w.negamax(pos, target-1, target, depth-1-R, ply, &verifyPV, prevMove, didNull, true, hashMove)
			if score < target {
				singular = true
			}
		}
	}

	// Internal iterative deepening: no hash move at a depth worth having
	// one, so do a reduced search purely to populate the table entry.
	if hashMove == 0 && depth >= 5 && !didNull && !isExtended {
		reduced := depth - 2
		if depth >= 8 {
			reduced = depth - depth/4
		}
		var iidPV PVLine
		w.negamax(pos, alpha, beta, reduced, ply, &iidPV, prevMove, false, true, 0)
		if e, ok := w.shared.tt.Probe(hash); ok {
			hashMove = e.Move
		}
	}

	moves := pos.LegalMoves()
	if len(moves) == 0 {
		if inCheck {
			return matedIn(ply)
		}
		return DrawScore
	}

	list := scoreMoves(pos, moves, ply, hashMove, prevMove, w.order)

	bound := BoundUpper
	best := matedIn(ply)
	var bestMove board.Move
	legal := 0
	white := pos.SideToMove() == board.White
	quietTried := make([]board.Move, 0, 16)
	soleReply := len(moves) == 1

	for i := range list.moves {
		orderNext(i, &list)
		move := list.moves[i].move
		if move == excluded {
			continue
		}

		isCapture := board.IsCapture(move, pos)
		givesCheck := pos.GivesCheck(move)
		isPromo := move.PromotionPieceType() != board.PieceTypeNone
		mateThreat := mateThreatMove(pos, move)
		promoThreat := promotionThreatMove(pos, move)
		tactical := isCapture || givesCheck || isPromo
		legal++

		if depth <= 8 && !isPV && !tactical && !isRoot && legal > 1 {
			margin := LateMovePruningMargins[minInt(int(depth), len(LateMovePruningMargins)-1)]
			if !improving {
				margin = margin * 2 / 3
			}
			if margin > 0 && legal > margin {
				continue
			}
		}

		if depth <= 7 && depth >= 1 && !givesCheck && !isPV && !isRoot && !tactical && !mopUp && !endGame && abs32(alpha) < Checkmate {
			margin := FutilityMargins[depth]
			if !improving {
				margin -= 50
			}
			if staticScore+margin <= alpha {
				continue
			}
		}

		if !isCapture {
			quietTried = append(quietTried, move)
		}

		extend := int8(0)
		if move == hashMove && singular {
			extend = 1
		} else if soleReply && w.extBudget > 0 {
			extend = 1
		} else if mateThreat && w.extBudget > 0 {
			extend = 1
		} else if promoThreat && w.extBudget > 0 {
			extend = 1
		}
		if extend > 0 {
			w.extBudget -= extend
		}

		undo := pos.Make(move)
		w.history = append(w.history, pos.Hash())

		var childPV PVLine
		nextDepth := depth - 1 + extend
		var score int32
		if legal == 1 {
			score = -w.negamax(pos, -beta, -alpha, nextDepth, ply+1, &childPV, move, false, isExtended || extend > 0, 0)
		} else {
			reduction := int8(0)
			noReduce := mopUp || givesCheck || tactical || mateThreat || promoThreat
			if depth >= LMRDepthLimit && legal >= LMRMoveLimit && !noReduce {
				reduction = w.computeLMR(depth, legal, isPV, white, move, improving)
			}
			score = w.pvs(pos, move, nextDepth, reduction, alpha, beta, ply, isExtended || extend > 0, &childPV)
		}

		w.history = w.history[:len(w.history)-1]
		undo()
		if extend > 0 {
			w.extBudget += extend
		}

		if w.stopped {
			return 0
		}

		if score > best {
			best = score
			bestMove = move
			if score > alpha {
				alpha = score
				bound = BoundExact
				pv.Update(move, childPV)
			}
		}

		if score >= beta {
			bound = BoundLower
			if !isCapture {
				w.order.killers.Insert(move, ply)
				w.order.counters.Store(white, prevMove, move)
				w.order.history.Bonus(white, move, depth)
				for _, qm := range quietTried {
					if qm != move {
						w.order.history.Malus(white, qm, depth)
					}
				}
			}
			break
		}
	}

	if excluded == 0 && !w.stopped {
		w.shared.tt.Store(hash, depth, ply, bestMove, best, bound)
	}
	return best
}

// pvs performs a principal-variation search of move: a reduced null-window
// probe, a full-depth null-window re-search if a reduced probe beat alpha,
// and finally a full-window search if the move turns out to
// beat alpha without already beating beta.
func (w *worker) pvs(pos *board.Board, move board.Move, baseDepth, reduction int8, alpha, beta int32, ply int, extended bool, childPV *PVLine) int32 {
	next := baseDepth - reduction
	score := -w.negamax(pos, -(alpha + 1), -alpha, next, ply+1, childPV, move, false, extended, 0)

	if score > alpha && reduction > 0 {
		score = -w.negamax(pos, -(alpha + 1), -alpha, baseDepth, ply+1, childPV, move, false, extended, 0)
	}
	if score > alpha && score < beta {
		score = -w.negamax(pos, -beta, -alpha, baseDepth, ply+1, childPV, move, false, extended, 0)
	}
	return score
}

// computeLMR derives a late-move reduction from depth and move index,
// trimmed by how well the move has historically performed and pushed
// further when the position isn't improving.
func (w *worker) computeLMR(depth int8, legal int, isPV bool, white bool, move board.Move, improving bool) int8 {
	d := int(depth)
	if d > MaxPly {
		d = MaxPly
	}
	m := legal
	if m > 63 {
		m = 63
	}
	r := lmrTable[d][m]
	if isPV && r > 0 {
		r--
	}
	if !improving {
		r++
	}
	hist := w.order.history.score(white, move)
	if hist > 0 {
		bonus := int8(hist / 2048)
		if bonus > r {
			bonus = r
		}
		r -= bonus
	} else if hist < -2048 {
		r++
	}
	if r < 0 {
		r = 0
	}
	if r > depth-1 {
		r = depth - 1
	}
	return r
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
