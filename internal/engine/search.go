package engine

import (
	"sort"
	"time"

	"github.com/corentings/chess/v2"

	"github.com/regentchess/regent/internal/board"
)

// maxQuiescencePly bounds the tactical extension beyond the horizon.
const maxQuiescencePly = 6

// negamax searches the position to the given depth inside the (alpha, beta)
// window and returns a fail-hard score with the principal variation built on
// the return path. canNull gates null-move pruning so two passes are never
// stacked.
func (e *Engine) negamax(pos *chess.Position, depth, alpha, beta, ply int, canNull bool) (int, []chess.Move) {
	e.nodes++
	if e.nodes%1000 == 0 && time.Since(e.searchStart) > e.timeLimit {
		e.timeUp = true
	}
	if e.timeUp {
		return 0, nil
	}

	key := Fingerprint(pos)

	// A cached score can contradict an imminent claimable draw, which the
	// fingerprint cannot see. Skip the table when the clock is nearly run
	// down or the position already occurred along this line.
	if pos.HalfMoveClock() < 90 && e.countHistory(key) < 2 {
		if entry, ok := e.tt.Probe(key, depth, alpha, beta); ok {
			return entry.Score, entry.PV
		}
	}

	switch pos.Status() {
	case chess.Checkmate:
		return -MateScore + ply, nil
	case chess.Stalemate:
		return 0, nil
	}
	if insufficientMaterial(pos) || pos.HalfMoveClock() >= 100 || e.isRepetition(pos) {
		return 0, nil
	}

	if depth <= 0 {
		return e.quiescence(pos, alpha, beta, ply, 0), nil
	}

	inCheck := board.InCheck(pos)

	// Null-move pruning: hand the opponent a free move at reduced depth;
	// if the position still beats beta the real search would too. Needs the
	// side to move to have a rook or queen so zugzwang positions are left
	// alone.
	if canNull && depth >= 3 && !inCheck && abs(beta) < MateScore-1000 && hasMajorPiece(pos) {
		null := pos.Update(nil)
		e.pushHistory(Fingerprint(null))
		score, _ := e.negamax(null, depth-3, -beta, -beta+1, ply+1, false)
		e.popHistory()
		if e.timeUp {
			return 0, nil
		}
		if -score >= beta {
			e.tt.Store(key, depth, beta, TTLowerBound, nil, nil)
			return beta, nil
		}
	}

	var ttMove *chess.Move
	if entry, ok := e.tt.Lookup(key); ok {
		ttMove = entry.BestMove
	}
	moves := e.orderer.OrderMoves(pos, pos.ValidMoves(), ply, ttMove)
	if len(moves) == 0 {
		// Rule terminations are handled above; treat as dead draw.
		return 0, nil
	}

	origAlpha := alpha
	var bestMove *chess.Move
	var bestPV []chess.Move

	for i := range moves {
		m := moves[i]
		child := pos.Update(&m)
		e.pushHistory(Fingerprint(child))
		score, subPV := e.negamax(child, depth-1, -beta, -alpha, ply+1, true)
		e.popHistory()
		score = -score
		if e.timeUp {
			return 0, nil
		}

		if score > alpha {
			alpha = score
			mm := m
			bestMove = &mm
			bestPV = append([]chess.Move{m}, subPV...)
		}

		if score >= beta {
			if !isCapture(&m) {
				e.orderer.UpdateKillers(&m, ply)
				e.orderer.UpdateHistory(pos.Turn(), &m, depth)
			}
			mm := m
			e.tt.Store(key, depth, beta, TTLowerBound, &mm, bestPV)
			return beta, bestPV
		}
	}

	flag := TTExact
	if alpha <= origAlpha {
		flag = TTUpperBound
	}
	e.tt.Store(key, depth, alpha, flag, bestMove, bestPV)
	return alpha, bestPV
}

// quiescence extends the search through tactical continuations so the
// horizon never cuts a capture sequence in half. Fail-hard on both bounds.
func (e *Engine) quiescence(pos *chess.Position, alpha, beta, ply, qply int) int {
	e.nodes++
	if e.nodes%1000 == 0 && time.Since(e.searchStart) > e.timeLimit {
		e.timeUp = true
	}
	if e.timeUp {
		return 0
	}

	standPat := e.Evaluate(pos, ply)
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}
	if qply >= maxQuiescencePly {
		return alpha
	}

	for _, m := range tacticalMoves(pos) {
		m := m
		child := pos.Update(&m)
		e.pushHistory(Fingerprint(child))
		score := -e.quiescence(child, -beta, -alpha, ply+1, qply+1)
		e.popHistory()
		if e.timeUp {
			return 0
		}
		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}

// tacticalMoves returns the captures, promotions, checks and near-promotion
// pawn pushes of the position, highest priority first.
func tacticalMoves(pos *chess.Position) []chess.Move {
	legal := pos.ValidMoves()
	b := pos.Board()

	type scored struct {
		move  chess.Move
		score int
	}
	picked := make([]scored, 0, len(legal))
	for i := range legal {
		m := &legal[i]
		switch {
		case isCapture(m):
			s := 10_000 + mvvLva(pos, m)
			if m.HasTag(chess.Check) {
				s += 1_000
			}
			picked = append(picked, scored{legal[i], s})
		case m.Promo() != chess.NoPieceType:
			picked = append(picked, scored{legal[i], 15_000 + 100*promoKind(m.Promo())})
		case m.HasTag(chess.Check):
			picked = append(picked, scored{legal[i], 8_000})
		case isPawnPushToSeventh(b, m, pos.Turn()):
			picked = append(picked, scored{legal[i], 7_000})
		}
	}
	sort.SliceStable(picked, func(a, b int) bool {
		return picked[a].score > picked[b].score
	})
	moves := make([]chess.Move, len(picked))
	for i := range picked {
		moves[i] = picked[i].move
	}
	return moves
}

// isPawnPushToSeventh reports a pawn advance onto its penultimate rank.
func isPawnPushToSeventh(b *chess.Board, m *chess.Move, turn chess.Color) bool {
	p := b.Piece(m.S1())
	if p == chess.NoPiece || p.Type() != chess.Pawn {
		return false
	}
	r := int(m.S2().Rank())
	if turn == chess.White {
		return r == 6
	}
	return r == 1
}

// hasMajorPiece reports whether the side to move still has a rook or queen.
func hasMajorPiece(pos *chess.Position) bool {
	occ := board.Scan(pos.Board())
	ci := board.ColorIndex(pos.Turn())
	return occ.Pieces[ci][board.TypeIndex(chess.Rook)] != 0 ||
		occ.Pieces[ci][board.TypeIndex(chess.Queen)] != 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
