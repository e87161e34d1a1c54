// Package engine implements the alpha-beta search and static evaluation.
package engine

import (
	"github.com/corentings/chess/v2"

	"github.com/regentchess/regent/internal/board"
)

// Search constants.
const (
	MateScore = 100_000
	MaxPly    = 128
)

// mateBound is the threshold above which a score denotes a forced mate.
const mateBound = MateScore - 10_000

// Evaluation weights.
const (
	mobilityWeight        = 5
	doubledPawnPenalty    = 20
	isolatedPawnPenalty   = 15
	pawnShieldBonus       = 15
	passedPawnBase        = 50
	passedPawnKingSupport = 50
	passedPawnUnstoppable = 400
)

// Piece-square tables, indexed by square for white and by the vertically
// mirrored square for black. Row 0 is rank 1.
var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, -20, -20, 10, 10, 5,
	5, -5, -10, 0, 0, -10, -5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, 5, 10, 25, 25, 10, 5, 5,
	10, 10, 20, 30, 30, 20, 10, 10,
	50, 50, 50, 50, 50, 50, 50, 50,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPST = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopPST = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookPST = [64]int{
	0, 0, 0, 5, 5, 0, 0, 0,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	5, 10, 10, 10, 10, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var queenPST = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-10, 5, 5, 5, 5, 5, 0, -10,
	0, 0, 5, 5, 5, 5, 0, -5,
	-5, 0, 5, 5, 5, 5, 0, -5,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

// kingPST is the middlegame king table: castled corners good, center bad.
var kingPST = [64]int{
	20, 30, 10, 0, 0, 10, 30, 20,
	20, 20, 0, 0, 0, 0, 20, 20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
}

// pstFor returns the table for a piece type.
func pstFor(pt chess.PieceType) *[64]int {
	switch pt {
	case chess.Pawn:
		return &pawnPST
	case chess.Knight:
		return &knightPST
	case chess.Bishop:
		return &bishopPST
	case chess.Rook:
		return &rookPST
	case chess.Queen:
		return &queenPST
	default:
		return &kingPST
	}
}

// IsMateScore reports whether a score denotes a forced mate.
func IsMateScore(score int) bool {
	if score < 0 {
		score = -score
	}
	return score > mateBound
}

// Evaluate returns the static score of the position from the side to move's
// viewpoint. ply is the distance from the search root and only affects the
// mate score of checkmated positions.
func (e *Engine) Evaluate(pos *chess.Position, ply int) int {
	switch pos.Status() {
	case chess.Checkmate:
		return -MateScore + ply
	case chess.Stalemate:
		return 0
	}
	if insufficientMaterial(pos) || pos.HalfMoveClock() >= 100 || e.isRepetition(pos) {
		return 0
	}

	occ := board.Scan(pos.Board())
	score := materialAndPST(occ)
	score += e.mobility(pos)
	score += passedPawns(pos, occ)
	score += pawnStructure(occ)
	score += kingShield(occ)

	if pos.Turn() == chess.Black {
		return -score
	}
	return score
}

// materialAndPST sums base values and square bonuses, white minus black.
func materialAndPST(occ board.Occupancy) int {
	var score int
	for ci, sign := range [2]int{1, -1} {
		for _, pt := range []chess.PieceType{chess.Pawn, chess.Knight, chess.Bishop, chess.Rook, chess.Queen, chess.King} {
			table := pstFor(pt)
			bb := occ.Pieces[ci][board.TypeIndex(pt)]
			for bb != 0 {
				sq := bb.PopLSB()
				pstSq := sq
				if ci == 1 {
					pstSq = board.Mirror(sq)
				}
				score += sign * (board.PieceValue(pt) + table[pstSq])
			}
		}
	}
	return score
}

// mobility scores the legal-move surplus of the side to move over the
// opponent, measured by swapping the turn with a null move. When the side to
// move is in check the null move is illegal and the term cancels out.
func (e *Engine) mobility(pos *chess.Position) int {
	own := len(pos.ValidMoves())
	opp := own
	if !board.InCheck(pos) {
		opp = len(pos.Update(nil).ValidMoves())
	}
	diff := mobilityWeight * (own - opp)
	if pos.Turn() == chess.Black {
		return -diff
	}
	return diff
}

// passedPawns scores pawns with no enemy pawns ahead of them on their own or
// adjacent files, including the square rule for pawns the enemy king can no
// longer catch.
func passedPawns(pos *chess.Position, occ board.Occupancy) int {
	var score int
	for ci, sign := range [2]int{1, -1} {
		color := chess.White
		if ci == 1 {
			color = chess.Black
		}
		enemyPawns := occ.Pieces[1-ci][board.TypeIndex(chess.Pawn)]
		ownKing := occ.KingSquare(color)
		enemyKing := occ.KingSquare(color.Other())

		pawns := occ.Pieces[ci][board.TypeIndex(chess.Pawn)]
		for pawns != 0 {
			sq := pawns.PopLSB()
			f, r := int(sq.File()), int(sq.Rank())
			if !isPassed(enemyPawns, f, r, color) {
				continue
			}

			bonus := passedPawnBase
			adv := r
			if color == chess.Black {
				adv = 7 - r
			}
			bonus += 5 * adv * adv

			if unstoppable(pos, enemyKing, f, r, color) {
				bonus += passedPawnUnstoppable
			} else if ownKing != chess.NoSquare && board.Chebyshev(ownKing, sq) <= 2 {
				bonus += passedPawnKingSupport
			}

			// A blocker directly in front halves everything, the
			// unstoppable bonus included.
			frontRank := r + 1
			if color == chess.Black {
				frontRank = r - 1
			}
			if frontRank >= 0 && frontRank <= 7 {
				front := chess.Square(frontRank*8 + f)
				if occ.All.IsSet(front) {
					bonus /= 2
				}
			}

			score += sign * bonus
		}
	}
	return score
}

// isPassed reports whether a pawn of the given color at (f, r) has no enemy
// pawn strictly ahead of it on its own or adjacent files.
func isPassed(enemyPawns board.Bitboard, f, r int, color chess.Color) bool {
	for df := -1; df <= 1; df++ {
		nf := f + df
		if nf < 0 || nf > 7 {
			continue
		}
		if color == chess.White {
			for nr := r + 1; nr <= 7; nr++ {
				if enemyPawns.IsSet(chess.Square(nr*8 + nf)) {
					return false
				}
			}
		} else {
			for nr := r - 1; nr >= 0; nr-- {
				if enemyPawns.IsSet(chess.Square(nr*8 + nf)) {
					return false
				}
			}
		}
	}
	return true
}

// unstoppable applies the square rule: the pawn promotes before the enemy
// king can reach the promotion square. The two-square first move shortens
// the pawn's path by one, and the defender gets a tempo when it is their
// turn.
func unstoppable(pos *chess.Position, enemyKing chess.Square, f, r int, color chess.Color) bool {
	var dist int
	var promo chess.Square
	if color == chess.White {
		dist = 7 - r
		if r == 1 {
			dist--
		}
		promo = chess.Square(7*8 + f)
	} else {
		dist = r
		if r == 6 {
			dist--
		}
		promo = chess.Square(f)
	}
	kingDist := 99
	if enemyKing != chess.NoSquare {
		kingDist = board.Chebyshev(enemyKing, promo)
	}
	if pos.Turn() == color {
		return kingDist > dist
	}
	return kingDist > dist+1
}

// pawnStructure penalizes doubled and isolated pawns for both sides.
func pawnStructure(occ board.Occupancy) int {
	var score int
	for ci, sign := range [2]int{1, -1} {
		pawns := occ.Pieces[ci][board.TypeIndex(chess.Pawn)]

		var filePawns [8]int
		for bb := pawns; bb != 0; {
			sq := bb.PopLSB()
			filePawns[sq.File()]++
		}

		penalty := 0
		for f := 0; f < 8; f++ {
			if filePawns[f] >= 2 {
				penalty += doubledPawnPenalty * (filePawns[f] - 1)
			}
			if filePawns[f] == 0 {
				continue
			}
			isolated := true
			if f > 0 && filePawns[f-1] > 0 {
				isolated = false
			}
			if f < 7 && filePawns[f+1] > 0 {
				isolated = false
			}
			if isolated {
				penalty += isolatedPawnPenalty * filePawns[f]
			}
		}
		score -= sign * penalty
	}
	return score
}

// kingShield rewards friendly pawns on the two ranks in front of the king
// across its file and the adjacent files.
func kingShield(occ board.Occupancy) int {
	var score int
	for ci, sign := range [2]int{1, -1} {
		color := chess.White
		if ci == 1 {
			color = chess.Black
		}
		king := occ.KingSquare(color)
		if king == chess.NoSquare {
			continue
		}
		pawns := occ.Pieces[ci][board.TypeIndex(chess.Pawn)]
		kf, kr := int(king.File()), int(king.Rank())
		dir := 1
		if color == chess.Black {
			dir = -1
		}
		for f := kf - 1; f <= kf+1; f++ {
			if f < 0 || f > 7 {
				continue
			}
			for step := 1; step <= 2; step++ {
				r := kr + dir*step
				if r < 0 || r > 7 {
					continue
				}
				if pawns.IsSet(chess.Square(r*8 + f)) {
					score += sign * pawnShieldBonus
				}
			}
		}
	}
	return score
}

// insufficientMaterial reports positions neither side can win: bare kings,
// a lone minor piece, or same-colored bishops only.
func insufficientMaterial(pos *chess.Position) bool {
	occ := board.Scan(pos.Board())
	for ci := 0; ci < 2; ci++ {
		if occ.Pieces[ci][board.TypeIndex(chess.Pawn)] != 0 ||
			occ.Pieces[ci][board.TypeIndex(chess.Rook)] != 0 ||
			occ.Pieces[ci][board.TypeIndex(chess.Queen)] != 0 {
			return false
		}
	}
	knights := occ.Pieces[0][board.TypeIndex(chess.Knight)] | occ.Pieces[1][board.TypeIndex(chess.Knight)]
	bishops := occ.Pieces[0][board.TypeIndex(chess.Bishop)] | occ.Pieces[1][board.TypeIndex(chess.Bishop)]
	minors := knights.PopCount() + bishops.PopCount()
	if minors <= 1 {
		return true
	}
	if knights == 0 && sameColorSquares(bishops) {
		return true
	}
	return false
}

// sameColorSquares reports whether every set square is of one square color.
func sameColorSquares(bb board.Bitboard) bool {
	const lightSquares board.Bitboard = 0x55AA55AA55AA55AA
	return bb&lightSquares == 0 || bb&^lightSquares == 0
}

// isRepetition reports whether the current position already occurred twice
// along the game plus search line.
func (e *Engine) isRepetition(pos *chess.Position) bool {
	key := Fingerprint(pos)
	count := 0
	for _, h := range e.history {
		if h == key {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}
