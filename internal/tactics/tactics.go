// Package tactics annotates moves with the tactical patterns they create.
// The annotator is a pure function of a position and a move; the search
// never consults it, it exists for human-readable commentary only.
package tactics

import (
	"fmt"
	"strings"

	"github.com/corentings/chess/v2"

	"github.com/regentchess/regent/internal/board"
)

// Kind names a detected tactical pattern.
type Kind string

const (
	Fork             Kind = "Fork"
	Pin              Kind = "Pin"
	Skewer           Kind = "Skewer"
	DiscoveredAttack Kind = "Discovered Attack"
	TrappedPiece     Kind = "Trapped Piece"
	PromotionThreat  Kind = "Promotion Threat"
)

// Tactic is one detected pattern with the squares involved.
type Tactic struct {
	Kind    Kind
	Targets []chess.Square
}

// String renders the tactic for the analysis report.
func (t Tactic) String() string {
	if len(t.Targets) == 0 {
		return string(t.Kind)
	}
	names := make([]string, len(t.Targets))
	for i, sq := range t.Targets {
		names[i] = sq.String()
	}
	return fmt.Sprintf("%s (%s)", t.Kind, strings.Join(names, ", "))
}

// forkValue is the minimum worth of a piece to count as a fork target.
const forkValue = 300

// targetValue is the worth of a piece as a tactical target; the king is
// priceless rather than worthless here.
func targetValue(pt chess.PieceType) int {
	if pt == chess.King {
		return 10_000
	}
	return board.PieceValue(pt)
}

// Annotate returns the tactical patterns the move creates, in a stable
// order. The move must be legal in pos.
func Annotate(pos *chess.Position, m *chess.Move) []Tactic {
	after := pos.Update(m)
	occ := board.Scan(after.Board())
	us := pos.Turn()
	them := us.Other()
	mover := after.Board().Piece(m.S2())
	if mover == chess.NoPiece {
		return nil
	}

	var tactics []Tactic
	if t, ok := detectFork(occ, mover, m.S2(), them); ok {
		tactics = append(tactics, t)
	}
	tactics = append(tactics, detectPinsAndSkewers(after.Board(), occ, mover, m.S2())...)
	if t, ok := detectDiscovered(pos, m, occ, us, them); ok {
		tactics = append(tactics, t)
	}
	if t, ok := detectTrap(after.Board(), occ, mover, m.S2(), us, them); ok {
		tactics = append(tactics, t)
	}
	if t, ok := detectPromotionThreat(pos, m); ok {
		tactics = append(tactics, t)
	}
	return tactics
}

// detectFork looks for two or more valuable enemy pieces hit by the moved
// piece from its new square.
func detectFork(occ board.Occupancy, mover chess.Piece, sq chess.Square, them chess.Color) (Tactic, bool) {
	attacks := board.AttacksFrom(mover.Type(), mover.Color(), sq, occ.All)
	targets := attacks & occ.ByColor[board.ColorIndex(them)]

	var hit []chess.Square
	for bb := targets; bb != 0; {
		t := bb.PopLSB()
		for _, pt := range []chess.PieceType{chess.Knight, chess.Bishop, chess.Rook, chess.Queen, chess.King} {
			if occ.Pieces[board.ColorIndex(them)][board.TypeIndex(pt)].IsSet(t) && targetValue(pt) >= forkValue {
				hit = append(hit, t)
			}
		}
	}
	if len(hit) >= 2 {
		return Tactic{Kind: Fork, Targets: hit}, true
	}
	return Tactic{}, false
}

// detectPinsAndSkewers walks the rays of a sliding mover: two enemy pieces
// on one ray are a pin when the nearer is worth less than the farther and a
// skewer when worth more.
func detectPinsAndSkewers(b *chess.Board, occ board.Occupancy, mover chess.Piece, sq chess.Square) []Tactic {
	var dirs [][2]int
	switch mover.Type() {
	case chess.Bishop:
		dirs = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	case chess.Rook:
		dirs = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	case chess.Queen:
		dirs = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}, {1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	default:
		return nil
	}

	var tactics []Tactic
	f0, r0 := int(sq.File()), int(sq.Rank())
	for _, d := range dirs {
		var front, back chess.Square
		found := 0
		f, r := f0+d[0], r0+d[1]
		for f >= 0 && f <= 7 && r >= 0 && r <= 7 && found < 2 {
			cur := chess.Square(r*8 + f)
			if occ.All.IsSet(cur) {
				p := b.Piece(cur)
				if p.Color() == mover.Color() {
					break
				}
				if found == 0 {
					front = cur
				} else {
					back = cur
				}
				found++
			}
			f += d[0]
			r += d[1]
		}
		if found < 2 {
			continue
		}
		frontVal := targetValue(b.Piece(front).Type())
		backVal := targetValue(b.Piece(back).Type())
		switch {
		case backVal > frontVal:
			tactics = append(tactics, Tactic{Kind: Pin, Targets: []chess.Square{front, back}})
		case frontVal > backVal:
			tactics = append(tactics, Tactic{Kind: Skewer, Targets: []chess.Square{front, back}})
		}
	}
	return tactics
}

// detectDiscovered reports a friendly slider whose line onto a valuable
// enemy piece opened up when the moved piece vacated its square.
func detectDiscovered(pos *chess.Position, m *chess.Move, after board.Occupancy, us, them chess.Color) (Tactic, bool) {
	before := board.Scan(pos.Board())
	ci := board.ColorIndex(us)

	sliders := after.Pieces[ci][board.TypeIndex(chess.Bishop)] |
		after.Pieces[ci][board.TypeIndex(chess.Rook)] |
		after.Pieces[ci][board.TypeIndex(chess.Queen)]
	sliders &= ^board.SquareBB(m.S2())

	for bb := sliders; bb != 0; {
		from := bb.PopLSB()
		p := pos.Board().Piece(from)
		if p == chess.NoPiece {
			continue
		}
		wasAttacking := board.AttacksFrom(p.Type(), us, from, before.All)
		nowAttacking := board.AttacksFrom(p.Type(), us, from, after.All)
		// The opened line must run through the vacated square.
		if !nowAttacking.IsSet(m.S1()) {
			continue
		}
		opened := nowAttacking &^ wasAttacking
		for tb := opened & after.ByColor[board.ColorIndex(them)]; tb != 0; {
			t := tb.PopLSB()
			victim := pos.Board().Piece(t)
			if victim != chess.NoPiece && targetValue(victim.Type()) >= forkValue {
				return Tactic{Kind: DiscoveredAttack, Targets: []chess.Square{t}}, true
			}
		}
	}
	return Tactic{}, false
}

// detectTrap reports a valuable enemy piece newly attacked by the mover
// whose every flight square is covered.
func detectTrap(b *chess.Board, occ board.Occupancy, mover chess.Piece, sq chess.Square, us, them chess.Color) (Tactic, bool) {
	attacks := board.AttacksFrom(mover.Type(), mover.Color(), sq, occ.All)
	targets := attacks & occ.ByColor[board.ColorIndex(them)]

	for bb := targets; bb != 0; {
		t := bb.PopLSB()
		victim := b.Piece(t)
		if victim.Type() == chess.King || targetValue(victim.Type()) < forkValue {
			continue
		}
		flights := board.AttacksFrom(victim.Type(), them, t, occ.All) &^ occ.ByColor[board.ColorIndex(them)]
		trapped := true
		for fb := flights; fb != 0; {
			esc := fb.PopLSB()
			if !occ.IsAttacked(esc, us) {
				trapped = false
				break
			}
		}
		if trapped {
			return Tactic{Kind: TrappedPiece, Targets: []chess.Square{t}}, true
		}
	}
	return Tactic{}, false
}

// detectPromotionThreat reports a promotion or a pawn arriving on its
// penultimate rank.
func detectPromotionThreat(pos *chess.Position, m *chess.Move) (Tactic, bool) {
	if m.Promo() != chess.NoPieceType {
		return Tactic{Kind: PromotionThreat, Targets: []chess.Square{m.S2()}}, true
	}
	p := pos.Board().Piece(m.S1())
	if p == chess.NoPiece || p.Type() != chess.Pawn {
		return Tactic{}, false
	}
	r := int(m.S2().Rank())
	if (p.Color() == chess.White && r == 6) || (p.Color() == chess.Black && r == 1) {
		return Tactic{Kind: PromotionThreat, Targets: []chess.Square{m.S2()}}, true
	}
	return Tactic{}, false
}
