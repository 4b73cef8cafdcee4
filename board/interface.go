package board

import "math/bits"

// Outcome classifies a position as non-terminal or one of the five terminal
// states the search core needs to recognize before doing any further work.
type Outcome uint8

const (
	None Outcome = iota
	Checkmate
	Stalemate
	DrawFifty
	DrawRepetition
	DrawInsufficient
)

// LegalMoves returns every legal move for the side to move.
func (b *Board) LegalMoves() []Move { return b.GenerateLegalMoves() }

// LegalCaptures returns the legal captures (including en passant and
// capture-promotions) for the side to move.
func (b *Board) LegalCaptures() []Move { return b.GenerateCapturesInto(make([]Move, 0, 32)) }

// PieceBitboard returns the bitboard of pieces of the given type and color.
func (b *Board) PieceBitboard(pt PieceType, c Color) uint64 {
	bb := b.Bitboards(c)
	switch pt {
	case PieceTypePawn:
		return bb.Pawns
	case PieceTypeKnight:
		return bb.Knights
	case PieceTypeBishop:
		return bb.Bishops
	case PieceTypeRook:
		return bb.Rooks
	case PieceTypeQueen:
		return bb.Queens
	case PieceTypeKing:
		return bb.Kings
	default:
		return 0
	}
}

// KnightAttacks returns the knight attack bitboard from sq.
func KnightAttacks(sq Square) uint64 { return knightMoves[int(sq)] }

// KingAttacks returns the king attack bitboard from sq.
func KingAttacks(sq Square) uint64 { return kingMoves[int(sq)] }

// PawnAttacks returns the pawn attack bitboard from sq for the given color.
func PawnAttacks(c Color, sq Square) uint64 { return pawnAttacks[int(c)][int(sq)] }

// PieceAt reports the piece occupying sq, if any.
func (b *Board) PieceAt(sq Square) (pt PieceType, c Color, ok bool) {
	p := b.pieces[int(sq)]
	if p == NoPiece {
		return PieceTypeNone, White, false
	}
	return p.Type(), p.Color(), true
}

// Outcome classifies the current position as non-terminal or terminal,
// consulting the supplied position-hash history for repetition.
func (b *Board) Outcome(history []uint64) Outcome {
	if b.IsDrawByRepetition(history) {
		return DrawRepetition
	}
	if b.IsDrawBy50() {
		return DrawFifty
	}
	if !b.HasLegalMoves() {
		if b.InCheck(b.sideToMove) {
			return Checkmate
		}
		return Stalemate
	}
	if b.isInsufficientMaterial() {
		return DrawInsufficient
	}
	return None
}

// IsInsufficientMaterial reports king-vs-king and king+single-minor-vs-king
// endings with no pawns, rooks, or queens left on the board — positions
// that can never be forced to mate.
func (b *Board) IsInsufficientMaterial() bool { return b.isInsufficientMaterial() }

// isInsufficientMaterial reports king-vs-king and king+single-minor-vs-king
// endings that can never be forced to mate. Any pawn, rook, queen, or a
// second minor piece anywhere on the board means mating chances remain.
func (b *Board) isInsufficientMaterial() bool {
	white := b.Bitboards(White)
	black := b.Bitboards(Black)
	if white.Pawns|black.Pawns|white.Rooks|black.Rooks|white.Queens|black.Queens != 0 {
		return false
	}
	minors := bits.OnesCount64(white.Knights|white.Bishops) + bits.OnesCount64(black.Knights|black.Bishops)
	return minors <= 1
}
