package eval

import (
	"math/bits"

	"github.com/oliverans-student/gooseline/board"
)

// flipSquare mirrors a square vertically so Black's pieces can be looked up
// in the same White-relative PSQT tables.
func flipSquare(sq board.Square) board.Square { return board.Square(int(sq) ^ 56) }

// GamePhase counts non-pawn, non-king material on the board in the units
// spec.md §4.4.d's game_phase(pos) uses: knights/bishops=1, rooks=2, queens=4,
// summed across both sides. A full set of minors/rooks/queens gives
// TotalPhase (24); a position with nothing left but pawns and kings gives 0.
func GamePhase(pos *board.Board) int32 {
	var phase int32
	for _, c := range [2]board.Color{board.White, board.Black} {
		bb := pos.Bitboards(c)
		phase += int32(bits.OnesCount64(bb.Knights)) * KnightPhase
		phase += int32(bits.OnesCount64(bb.Bishops)) * BishopPhase
		phase += int32(bits.OnesCount64(bb.Rooks)) * RookPhase
		phase += int32(bits.OnesCount64(bb.Queens)) * QueenPhase
	}
	if phase > TotalPhase {
		phase = TotalPhase
	}
	return phase
}

// IsEndgame reports spec.md §4.4.d's end_game(pos) predicate: game_phase at
// or below EndgamePhaseThreshold.
func IsEndgame(pos *board.Board) bool {
	return GamePhase(pos) <= EndgamePhaseThreshold
}

// IsPassedPawn reports whether the pawn on sq (belonging to color) has no
// enemy pawn able to stop or capture it on its own file or either adjacent
// file, ahead of it. enemyPawns is the opposing side's pawn bitboard.
func IsPassedPawn(sq board.Square, color board.Color, enemyPawns uint64) bool {
	file := int(sq) & 7
	rank := int(sq) >> 3

	var blockMask uint64
	for f := file - 1; f <= file+1; f++ {
		if f < 0 || f > 7 {
			continue
		}
		blockMask |= onlyFile[f]
	}

	var aheadMask uint64
	if color == board.White {
		for r := rank + 1; r < 8; r++ {
			aheadMask |= rankMask(r)
		}
	} else {
		for r := rank - 1; r >= 0; r-- {
			aheadMask |= rankMask(r)
		}
	}
	return enemyPawns&blockMask&aheadMask == 0
}

func rankMask(rank int) uint64 { return uint64(0xFF) << uint(8*rank) }

// Evaluate returns a white-relative centipawn score for pos: positive means
// White is better, negative means Black is better, independent of whose
// turn it is to move. The negamax engine flips the sign to the side-to-move
// convention at the call site.
func Evaluate(pos *board.Board) int32 {
	phase := GamePhase(pos)
	var mg, eg int32

	whiteBB := pos.Bitboards(board.White)
	blackBB := pos.Bitboards(board.Black)

	addSide := func(bb board.Bitboards, color board.Color, enemyPawns uint64, sign int32) {
		for pt, pieces := range [7]uint64{
			board.PieceTypePawn:   bb.Pawns,
			board.PieceTypeKnight: bb.Knights,
			board.PieceTypeBishop: bb.Bishops,
			board.PieceTypeRook:   bb.Rooks,
			board.PieceTypeQueen:  bb.Queens,
			board.PieceTypeKing:   bb.Kings,
		} {
			if pt == int(board.PieceTypeNone) {
				continue
			}
			ptype := board.PieceType(pt)
			remaining := pieces
			for remaining != 0 {
				sq := board.Square(bits.TrailingZeros64(remaining))
				remaining &= remaining - 1

				psqSq := sq
				if color == board.Black {
					psqSq = flipSquare(sq)
				}

				mg += sign * (PieceValueMG[ptype] + PSQT_MG[ptype][psqSq])
				eg += sign * (PieceValueEG[ptype] + PSQT_EG[ptype][psqSq])

				mg += sign * mobilityBonus(pos, sq, ptype, color, true)
				eg += sign * mobilityBonus(pos, sq, ptype, color, false)

				if ptype == board.PieceTypePawn && IsPassedPawn(sq, color, enemyPawns) {
					mg += sign * PassedPawnPSQT_MG[psqSq]
					eg += sign * PassedPawnPSQT_EG[psqSq]
				}

				if ptype == board.PieceTypeRook {
					mg += sign * rookFileBonus(sq, whiteBB.Pawns|blackBB.Pawns, bb.Pawns)
				}
			}
		}

		if bits.OnesCount64(bb.Bishops) >= 2 {
			mg += sign * BishopPairBonusMG
			eg += sign * BishopPairBonusEG
		}
	}

	addSide(whiteBB, board.White, blackBB.Pawns, 1)
	addSide(blackBB, board.Black, whiteBB.Pawns, -1)

	score := tapered(mg, eg, phase)
	if pos.SideToMove() == board.White {
		score += TempoBonus
	} else {
		score -= TempoBonus
	}
	return score
}

// tapered blends the middlegame and endgame scores by phase (out of
// TotalPhase), the standard tapered-eval interpolation.
func tapered(mg, eg, phase int32) int32 {
	if phase > TotalPhase {
		phase = TotalPhase
	}
	return (mg*phase + eg*(TotalPhase-phase)) / TotalPhase
}

// mobilityBonus approximates reachable-square mobility from attack
// bitboards rather than full legal-move generation, which would be too
// expensive to call once per piece per leaf node.
func mobilityBonus(pos *board.Board, sq board.Square, pt board.PieceType, color board.Color, middlegame bool) int32 {
	own := pos.Bitboards(color).All
	occ := pos.Bitboards(board.White).All | pos.Bitboards(board.Black).All

	var attacks uint64
	switch pt {
	case board.PieceTypeKnight:
		attacks = board.KnightAttacks(sq)
	case board.PieceTypeBishop:
		attacks = board.CalculateBishopMoveBitboard(uint8(sq), occ)
	case board.PieceTypeRook:
		attacks = board.CalculateRookMoveBitboard(uint8(sq), occ)
	case board.PieceTypeQueen:
		attacks = board.CalculateBishopMoveBitboard(uint8(sq), occ) | board.CalculateRookMoveBitboard(uint8(sq), occ)
	default:
		return 0
	}
	count := int32(bits.OnesCount64(attacks &^ own))
	if middlegame {
		return count * MobilityValueMG[pt]
	}
	return count * MobilityValueEG[pt]
}

// rookFileBonus rewards rooks on open (no pawns at all) and semi-open (no
// own pawn) files.
func rookFileBonus(sq board.Square, allPawns, ownPawns uint64) int32 {
	file := int(sq) & 7
	fileMask := onlyFile[file]
	if allPawns&fileMask == 0 {
		return RookOpenFileBonusMG
	}
	if ownPawns&fileMask == 0 {
		return RookSemiOpenFileBonusMG
	}
	return 0
}
