package search

import (
	"math/bits"

	"github.com/oliverans-student/gooseline/board"
	"github.com/oliverans-student/gooseline/eval"
)

var seeValue = [7]int32{
	board.PieceTypeKing:   20000,
	board.PieceTypePawn:   100,
	board.PieceTypeKnight: 300,
	board.PieceTypeBishop: 300,
	board.PieceTypeRook:   500,
	board.PieceTypeQueen:  900,
}

// staticExchangeEval estimates the net material gained by playing the
// capture move on pos, without making any moves on the board: it replays
// the exchange on targetSquare one "minimum-value attacker" at a time using
// attack bitboards, the standard swap-off algorithm.
func staticExchangeEval(pos *board.Board, move board.Move) int32 {
	target := move.To()

	whiteOcc := pos.Bitboards(board.White).All
	blackOcc := pos.Bitboards(board.Black).All
	occ := whiteOcc | blackOcc

	attacker := move.MovedPiece().Type()
	var victim board.PieceType
	if pt, _, ok := pos.PieceAt(target); ok {
		victim = pt
	} else {
		victim = board.PieceTypePawn // en passant
	}

	var gains [32]int32
	depth := 0
	gains[0] = seeValue[victim]

	// Remove the initial attacker/occupant from the occupancy so later
	// x-ray attackers behind it are exposed.
	occ &^= uint64(1) << uint(move.From())
	side := pos.SideToMove()
	side = opposite(side)

	attackers := attackersTo(pos, target, occ)

	for {
		ownAttackers := attackers & sideOccupancy(pos, side, occ, whiteOcc, blackOcc)
		if ownAttackers == 0 {
			break
		}
		nextSq, nextPT, ok := leastValuableAttacker(pos, ownAttackers)
		if !ok {
			break
		}
		depth++
		gains[depth] = seeValue[attacker] - gains[depth-1]
		attacker = nextPT

		occ &^= targetBBFor(nextSq)
		attackers = attackersTo(pos, target, occ) &^ targetBBFor(nextSq)
		side = opposite(side)

		if depth >= 31 {
			break
		}
	}

	for depth > 0 {
		gains[depth-1] = -maxI32(-gains[depth-1], gains[depth])
		depth--
	}
	return gains[0]
}

func targetBBFor(sq board.Square) uint64 { return uint64(1) << uint(sq) }

func opposite(c board.Color) board.Color {
	if c == board.White {
		return board.Black
	}
	return board.White
}

func sideOccupancy(pos *board.Board, side board.Color, occ, whiteOcc, blackOcc uint64) uint64 {
	if side == board.White {
		return whiteOcc & occ
	}
	return blackOcc & occ
}

// attackersTo returns every piece of either color attacking sq given the
// (possibly reduced, mid-exchange) occupancy occ.
func attackersTo(pos *board.Board, sq board.Square, occ uint64) uint64 {
	var attackers uint64
	attackers |= board.KnightAttacks(sq) & (pos.PieceBitboard(board.PieceTypeKnight, board.White) | pos.PieceBitboard(board.PieceTypeKnight, board.Black)) & occ
	attackers |= board.KingAttacks(sq) & (pos.PieceBitboard(board.PieceTypeKing, board.White) | pos.PieceBitboard(board.PieceTypeKing, board.Black)) & occ

	bishops := pos.PieceBitboard(board.PieceTypeBishop, board.White) | pos.PieceBitboard(board.PieceTypeBishop, board.Black) |
		pos.PieceBitboard(board.PieceTypeQueen, board.White) | pos.PieceBitboard(board.PieceTypeQueen, board.Black)
	attackers |= board.CalculateBishopMoveBitboard(uint8(sq), occ) & bishops & occ

	rooks := pos.PieceBitboard(board.PieceTypeRook, board.White) | pos.PieceBitboard(board.PieceTypeRook, board.Black) |
		pos.PieceBitboard(board.PieceTypeQueen, board.White) | pos.PieceBitboard(board.PieceTypeQueen, board.Black)
	attackers |= board.CalculateRookMoveBitboard(uint8(sq), occ) & rooks & occ

	// Pawns: a white pawn attacks sq if sq is one of ITS capture targets, so
	// look from sq using Black's pawn-attack table to find white attackers,
	// and vice versa.
	attackers |= board.PawnAttacks(board.Black, sq) & pos.PieceBitboard(board.PieceTypePawn, board.White) & occ
	attackers |= board.PawnAttacks(board.White, sq) & pos.PieceBitboard(board.PieceTypePawn, board.Black) & occ

	return attackers
}

// leastValuableAttacker picks the cheapest piece among candidates.
func leastValuableAttacker(pos *board.Board, candidates uint64) (board.Square, board.PieceType, bool) {
	order := [6]board.PieceType{
		board.PieceTypePawn, board.PieceTypeKnight, board.PieceTypeBishop,
		board.PieceTypeRook, board.PieceTypeQueen, board.PieceTypeKing,
	}
	for _, pt := range order {
		both := pos.PieceBitboard(pt, board.White) | pos.PieceBitboard(pt, board.Black)
		bb := both & candidates
		if bb != 0 {
			return board.Square(bits.TrailingZeros64(bb)), pt, true
		}
	}
	return 0, board.PieceTypeNone, false
}

// seeCapturedValue reports the material value used by delta pruning for a
// move's captured piece (zero for non-captures).
func seeCapturedValue(pos *board.Board, m board.Move) int32 {
	if pt, _, ok := pos.PieceAt(m.To()); ok {
		return eval.PieceValueMG[pt]
	}
	if board.IsCapture(m, pos) {
		return eval.PieceValueMG[board.PieceTypePawn] // en passant
	}
	return 0
}
