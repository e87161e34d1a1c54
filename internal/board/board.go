// Package board provides square geometry and attack bitboards on top of the
// rules library's board type. The evaluator and the tactics annotator both
// need to ask "which squares does this piece hit" and "is this square
// attacked", which the rules library keeps internal to its move generator.
package board

import (
	"math/bits"

	"github.com/corentings/chess/v2"
)

// Bitboard is a set of squares, one bit per square, a1 = bit 0, h8 = bit 63.
type Bitboard uint64

// SquareBB returns a bitboard with only the given square set.
func SquareBB(sq chess.Square) Bitboard {
	return Bitboard(1) << uint(sq)
}

// IsSet reports whether the square's bit is set.
func (b Bitboard) IsSet(sq chess.Square) bool {
	return b&SquareBB(sq) != 0
}

// PopCount returns the number of set squares.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(uint64(b))
}

// LSB returns the lowest set square. Undefined for the empty bitboard.
func (b Bitboard) LSB() chess.Square {
	return chess.Square(bits.TrailingZeros64(uint64(b)))
}

// PopLSB removes and returns the lowest set square.
func (b *Bitboard) PopLSB() chess.Square {
	sq := b.LSB()
	*b &= *b - 1
	return sq
}

// Precomputed leaper attacks, filled in at init.
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard // [ColorIndex][square], squares a pawn on sq attacks
)

func init() {
	knightDeltas := [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingDeltas := [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}

	for sq := 0; sq < 64; sq++ {
		f, r := sq%8, sq/8
		for _, d := range knightDeltas {
			if bb, ok := offsetBB(f+d[0], r+d[1]); ok {
				knightAttacks[sq] |= bb
			}
		}
		for _, d := range kingDeltas {
			if bb, ok := offsetBB(f+d[0], r+d[1]); ok {
				kingAttacks[sq] |= bb
			}
		}
		for _, df := range []int{-1, 1} {
			if bb, ok := offsetBB(f+df, r+1); ok {
				pawnAttacks[0][sq] |= bb
			}
			if bb, ok := offsetBB(f+df, r-1); ok {
				pawnAttacks[1][sq] |= bb
			}
		}
	}
}

func offsetBB(f, r int) (Bitboard, bool) {
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return 0, false
	}
	return Bitboard(1) << uint(r*8+f), true
}

// KnightAttacks returns the squares a knight on sq attacks.
func KnightAttacks(sq chess.Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns the squares a king on sq attacks.
func KingAttacks(sq chess.Square) Bitboard {
	return kingAttacks[sq]
}

// PawnAttacks returns the squares a pawn of the given color on sq attacks.
func PawnAttacks(sq chess.Square, c chess.Color) Bitboard {
	return pawnAttacks[ColorIndex(c)][sq]
}

var (
	bishopDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	rookDirs   = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
)

func rayAttacks(sq chess.Square, occ Bitboard, dirs [4][2]int) Bitboard {
	var attacks Bitboard
	f0, r0 := int(sq.File()), int(sq.Rank())
	for _, d := range dirs {
		f, r := f0+d[0], r0+d[1]
		for f >= 0 && f <= 7 && r >= 0 && r <= 7 {
			bb := Bitboard(1) << uint(r*8+f)
			attacks |= bb
			if occ&bb != 0 {
				break
			}
			f += d[0]
			r += d[1]
		}
	}
	return attacks
}

// BishopAttacks returns the squares a bishop on sq attacks given blockers.
func BishopAttacks(sq chess.Square, occ Bitboard) Bitboard {
	return rayAttacks(sq, occ, bishopDirs)
}

// RookAttacks returns the squares a rook on sq attacks given blockers.
func RookAttacks(sq chess.Square, occ Bitboard) Bitboard {
	return rayAttacks(sq, occ, rookDirs)
}

// QueenAttacks returns the squares a queen on sq attacks given blockers.
func QueenAttacks(sq chess.Square, occ Bitboard) Bitboard {
	return BishopAttacks(sq, occ) | RookAttacks(sq, occ)
}

// AttacksFrom returns the attack set of the given piece type from sq.
func AttacksFrom(pt chess.PieceType, c chess.Color, sq chess.Square, occ Bitboard) Bitboard {
	switch pt {
	case chess.Pawn:
		return PawnAttacks(sq, c)
	case chess.Knight:
		return KnightAttacks(sq)
	case chess.Bishop:
		return BishopAttacks(sq, occ)
	case chess.Rook:
		return RookAttacks(sq, occ)
	case chess.Queen:
		return QueenAttacks(sq, occ)
	case chess.King:
		return KingAttacks(sq)
	}
	return 0
}

// ColorIndex maps a color to 0 (white) or 1 (black) for array indexing.
func ColorIndex(c chess.Color) int {
	if c == chess.White {
		return 0
	}
	return 1
}

// TypeIndex maps a piece type to a dense 0..5 index (pawn first).
func TypeIndex(pt chess.PieceType) int {
	switch pt {
	case chess.Pawn:
		return 0
	case chess.Knight:
		return 1
	case chess.Bishop:
		return 2
	case chess.Rook:
		return 3
	case chess.Queen:
		return 4
	default:
		return 5
	}
}

// PieceValue returns the base centipawn value of a piece type.
// The king is 0: it can never be traded.
func PieceValue(pt chess.PieceType) int {
	switch pt {
	case chess.Pawn:
		return 100
	case chess.Knight:
		return 320
	case chess.Bishop:
		return 330
	case chess.Rook:
		return 500
	case chess.Queen:
		return 900
	}
	return 0
}

// Occupancy is a bitboard snapshot of a board, scanned once per query site
// so attack tests don't walk the 64 squares repeatedly.
type Occupancy struct {
	All     Bitboard
	ByColor [2]Bitboard
	Pieces  [2][6]Bitboard // [ColorIndex][TypeIndex]
}

// Scan builds an Occupancy from the rules library's board.
func Scan(b *chess.Board) Occupancy {
	var occ Occupancy
	for sq := chess.Square(0); sq < 64; sq++ {
		p := b.Piece(sq)
		if p == chess.NoPiece {
			continue
		}
		bb := SquareBB(sq)
		ci := ColorIndex(p.Color())
		occ.All |= bb
		occ.ByColor[ci] |= bb
		occ.Pieces[ci][TypeIndex(p.Type())] |= bb
	}
	return occ
}

// KingSquare returns the king square of the given color, or NoSquare if the
// board has no such king (test positions may omit one).
func (occ Occupancy) KingSquare(c chess.Color) chess.Square {
	bb := occ.Pieces[ColorIndex(c)][TypeIndex(chess.King)]
	if bb == 0 {
		return chess.NoSquare
	}
	return bb.LSB()
}

// AttackersTo returns the pieces of color by that attack sq.
func (occ Occupancy) AttackersTo(sq chess.Square, by chess.Color) Bitboard {
	ci := ColorIndex(by)
	var attackers Bitboard
	// A pawn of color by attacks sq iff a pawn of the opposite color on sq
	// would attack the pawn's square.
	attackers |= PawnAttacks(sq, by.Other()) & occ.Pieces[ci][TypeIndex(chess.Pawn)]
	attackers |= KnightAttacks(sq) & occ.Pieces[ci][TypeIndex(chess.Knight)]
	attackers |= KingAttacks(sq) & occ.Pieces[ci][TypeIndex(chess.King)]
	diag := BishopAttacks(sq, occ.All)
	line := RookAttacks(sq, occ.All)
	queens := occ.Pieces[ci][TypeIndex(chess.Queen)]
	attackers |= diag & (occ.Pieces[ci][TypeIndex(chess.Bishop)] | queens)
	attackers |= line & (occ.Pieces[ci][TypeIndex(chess.Rook)] | queens)
	return attackers
}

// IsAttacked reports whether sq is attacked by any piece of color by.
func (occ Occupancy) IsAttacked(sq chess.Square, by chess.Color) bool {
	return occ.AttackersTo(sq, by) != 0
}

// InCheck reports whether the side to move is in check.
func InCheck(pos *chess.Position) bool {
	occ := Scan(pos.Board())
	king := occ.KingSquare(pos.Turn())
	if king == chess.NoSquare {
		return false
	}
	return occ.IsAttacked(king, pos.Turn().Other())
}

// Mirror maps a square to its vertical reflection (a1 <-> a8).
func Mirror(sq chess.Square) chess.Square {
	return chess.Square(int(sq.File()) + (7-int(sq.Rank()))*8)
}

// Chebyshev returns the king-move distance between two squares.
func Chebyshev(a, b chess.Square) int {
	df := int(a.File()) - int(b.File())
	if df < 0 {
		df = -df
	}
	dr := int(a.Rank()) - int(b.Rank())
	if dr < 0 {
		dr = -dr
	}
	if df > dr {
		return df
	}
	return dr
}
