package engine

import (
	"sort"

	"github.com/corentings/chess/v2"

	"github.com/regentchess/regent/internal/board"
)

// Move ordering scores. The hash move outranks everything; winning captures
// outrank killers, killers outrank promotions and quiet history moves.
const (
	hashMoveScore    = 100_000
	captureBaseScore = 10_000
	killerScore1     = 9_000
	killerScore2     = 8_000
	promotionBase    = 7_000
	givesCheckBonus  = 50
	centerWeight     = 10
)

// moveKey identifies a move independent of its generation tags.
type moveKey struct {
	from  chess.Square
	to    chess.Square
	promo chess.PieceType
}

func keyOf(m *chess.Move) moveKey {
	return moveKey{from: m.S1(), to: m.S2(), promo: m.Promo()}
}

// MoveOrderer ranks legal moves to maximize alpha-beta cutoffs. Killers and
// the history table persist across one top-level search and are reset
// between searches.
type MoveOrderer struct {
	killers   [MaxPly][2]moveKey
	hasKiller [MaxPly][2]bool
	history   [2][64][64]int
}

// NewMoveOrderer creates an empty move orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Clear resets killers and history for a new search.
func (mo *MoveOrderer) Clear() {
	*mo = MoveOrderer{}
}

// UpdateKillers records a quiet move that caused a beta cutoff at ply.
// The two slots always hold distinct moves.
func (mo *MoveOrderer) UpdateKillers(m *chess.Move, ply int) {
	if ply >= MaxPly {
		return
	}
	k := keyOf(m)
	if mo.hasKiller[ply][0] && mo.killers[ply][0] == k {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.hasKiller[ply][1] = mo.hasKiller[ply][0]
	mo.killers[ply][0] = k
	mo.hasKiller[ply][0] = true
}

// UpdateHistory rewards a quiet cutoff move with depth squared.
func (mo *MoveOrderer) UpdateHistory(c chess.Color, m *chess.Move, depth int) {
	mo.history[board.ColorIndex(c)][m.S1()][m.S2()] += depth * depth
}

// isCapture reports whether a move takes a piece, en passant included.
func isCapture(m *chess.Move) bool {
	return m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant)
}

// mvvLva scores a capture by most-valuable-victim, least-valuable-attacker.
func mvvLva(pos *chess.Position, m *chess.Move) int {
	b := pos.Board()
	victim := board.PieceValue(chess.Pawn)
	if !m.HasTag(chess.EnPassant) {
		if p := b.Piece(m.S2()); p != chess.NoPiece {
			victim = board.PieceValue(p.Type())
		}
	}
	attacker := 0
	if p := b.Piece(m.S1()); p != chess.NoPiece {
		attacker = board.PieceValue(p.Type())
	}
	return 10*victim - attacker
}

// promoKind returns the ordering ordinal of a promotion piece, queen high.
func promoKind(pt chess.PieceType) int {
	switch pt {
	case chess.Knight:
		return 2
	case chess.Bishop:
		return 3
	case chess.Rook:
		return 4
	case chess.Queen:
		return 5
	}
	return 0
}

// centerScore rewards destinations near the board center. The distance to
// the center point is always a whole number of half-steps from each axis,
// so the doubled sum stays in integers.
func centerScore(sq chess.Square) int {
	f, r := int(sq.File()), int(sq.Rank())
	df := 7 - 2*f
	if df < 0 {
		df = -df
	}
	dr := 7 - 2*r
	if dr < 0 {
		dr = -dr
	}
	return centerWeight * (7 - (df+dr)/2)
}

// scoreMove assigns the ordering score of a single move.
func (mo *MoveOrderer) scoreMove(pos *chess.Position, m *chess.Move, ply int, ttMove *moveKey) int {
	k := keyOf(m)
	if ttMove != nil && k == *ttMove {
		return hashMoveScore
	}

	score := 0
	if isCapture(m) {
		score += captureBaseScore + mvvLva(pos, m)
	} else if ply < MaxPly {
		if mo.hasKiller[ply][0] && mo.killers[ply][0] == k {
			score += killerScore1
		} else if mo.hasKiller[ply][1] && mo.killers[ply][1] == k {
			score += killerScore2
		}
	}
	if m.Promo() != chess.NoPieceType {
		score += promotionBase + 100*promoKind(m.Promo())
	}
	score += mo.history[board.ColorIndex(pos.Turn())][m.S1()][m.S2()]
	if m.HasTag(chess.Check) {
		score += givesCheckBonus
	}
	score += centerScore(m.S2())
	return score
}

// OrderMoves sorts the legal moves in descending ordering score. Ties keep
// generation order.
func (mo *MoveOrderer) OrderMoves(pos *chess.Position, moves []chess.Move, ply int, ttMove *chess.Move) []chess.Move {
	var tt *moveKey
	if ttMove != nil {
		k := keyOf(ttMove)
		tt = &k
	}
	scores := make([]int, len(moves))
	for i := range moves {
		scores[i] = mo.scoreMove(pos, &moves[i], ply, tt)
	}
	ordered := make([]chess.Move, len(moves))
	copy(ordered, moves)
	idx := make([]int, len(moves))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
	for i, j := range idx {
		ordered[i] = moves[j]
	}
	return ordered
}
