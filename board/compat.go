package board

import (
	"errors"
	"strings"
)

// Startpos is the FEN of the initial chess position.
const Startpos = FENStartPos

// ParseFen parses a FEN string, panicking on malformed input. Used by callers
// (tests, the command loop) that already know the FEN is well-formed.
func ParseFen(fen string) Board {
	b, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return *b
}

// ToFen exposes the camel-case spelling used throughout the search core.
func (b *Board) ToFen() string { return b.ToFEN() }

// Make plays a move and returns an undo closure. Panics if the move is
// illegal — callers are expected to only pass moves from LegalMoves/
// LegalCaptures.
func (b *Board) Make(m Move) func() {
	ok, st := b.MakeMove(m)
	if !ok {
		panic("board: Make called with an illegal move")
	}
	return func() { b.UnmakeMove(m, st) }
}

// MakeNull plays a null move (passes the turn without moving a piece) and
// returns the corresponding undo closure.
func (b *Board) MakeNull() func() {
	st := b.MakeNullMove()
	return func() { b.UnmakeNullMove(st) }
}

// OurKingInCheck reports whether the side to move has its king in check.
func (b *Board) OurKingInCheck() bool { return b.InCheck(b.sideToMove) }

// IsCapture reports whether playing m captures a piece, including en passant.
func IsCapture(m Move, b *Board) bool {
	toBB := uint64(1) << uint(m.To())
	if toBB&b.AllOccupancy() != 0 {
		return true
	}
	if m.Flags() == FlagEnPassant {
		return true
	}
	return false
}

// ParseUCIMove converts a coordinate-notation string (e2e4, e7e8q, 0000) into
// a Move legal in the given position. It looks up the moving piece, detects
// captures/en passant/castling from board state, and rejects strings that
// don't correspond to one of the position's legal moves.
func ParseUCIMove(b *Board, movestr string) (Move, error) {
	movestr = strings.TrimSpace(strings.ToLower(movestr))
	if movestr == "0000" {
		return 0, nil
	}
	if len(movestr) < 4 || len(movestr) > 5 {
		return 0, errors.New("board: invalid move length")
	}
	from, err := algebraicToIndex(movestr[0:2])
	if err != nil {
		return 0, err
	}
	to, err := algebraicToIndex(movestr[2:4])
	if err != nil {
		return 0, err
	}
	var promoType PieceType
	if len(movestr) == 5 {
		switch movestr[4] {
		case 'q':
			promoType = PieceTypeQueen
		case 'r':
			promoType = PieceTypeRook
		case 'b':
			promoType = PieceTypeBishop
		case 'n':
			promoType = PieceTypeKnight
		default:
			return 0, errors.New("board: invalid promotion piece")
		}
	}

	for _, mv := range b.GenerateLegalMoves() {
		if int(mv.From()) != from || int(mv.To()) != to {
			continue
		}
		if promoType != PieceTypeNone && mv.PromotionPieceType() != promoType {
			continue
		}
		if promoType == PieceTypeNone && mv.PromotionPieceType() != PieceTypeNone {
			continue
		}
		return mv, nil
	}
	return 0, errors.New("board: move is not legal in this position")
}

func algebraicToIndex(alg string) (int, error) {
	if len(alg) != 2 {
		return 0, errors.New("board: invalid algebraic square length")
	}
	file := alg[0]
	rank := alg[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return 0, errors.New("board: invalid algebraic square")
	}
	return int(file-'a') + int(rank-'1')*8, nil
}
