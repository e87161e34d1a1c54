package engine

import (
	"log"
	"strings"
	"time"

	"github.com/corentings/chess/v2"
)

// aspirationWindow is the half-width of the window seeded around the
// previous iteration's score.
const aspirationWindow = 50

// Result is a completed root analysis.
type Result struct {
	Move  *chess.Move
	Score int
	PV    []chess.Move
	Depth int
	Nodes uint64
}

// Engine holds all mutable search state: the transposition table, the move
// orderer, the node counter and the fingerprint history of the current line.
// An Engine is single-threaded; the parallel root searcher builds one per
// worker.
type Engine struct {
	tt      *TranspositionTable
	orderer *MoveOrderer

	nodes       uint64
	searchStart time.Time
	timeLimit   time.Duration
	timeUp      bool

	gameHistory []uint64
	history     []uint64
}

// New creates an engine with a default-sized transposition table.
func New() *Engine {
	return &Engine{
		tt:      NewTranspositionTable(0),
		orderer: NewMoveOrderer(),
	}
}

// Nodes returns the node count of the last search.
func (e *Engine) Nodes() uint64 {
	return e.nodes
}

// TT exposes the transposition table, mainly for tests.
func (e *Engine) TT() *TranspositionTable {
	return e.tt
}

// SetGameHistory seeds the fingerprints of the positions played before the
// root so repetition detection sees the whole game, not just the search.
func (e *Engine) SetGameHistory(fingerprints []uint64) {
	e.gameHistory = append([]uint64(nil), fingerprints...)
}

// reset prepares the engine for a top-level search from pos. Bounds learned
// against a previous position must not leak into this one.
func (e *Engine) reset(pos *chess.Position) {
	e.nodes = 0
	e.timeUp = false
	e.orderer.Clear()
	e.tt.Clear()
	e.history = append([]uint64(nil), e.gameHistory...)
	root := Fingerprint(pos)
	if len(e.history) == 0 || e.history[len(e.history)-1] != root {
		e.history = append(e.history, root)
	}
}

func (e *Engine) pushHistory(fp uint64) {
	e.history = append(e.history, fp)
}

func (e *Engine) popHistory() {
	e.history = e.history[:len(e.history)-1]
}

func (e *Engine) countHistory(fp uint64) int {
	n := 0
	for _, h := range e.history {
		if h == fp {
			n++
		}
	}
	return n
}

// FindBestMove runs iterative deepening to maxDepth within the time budget
// and returns the best move of the deepest completed depth. The move is nil
// only when the position has no legal moves.
func (e *Engine) FindBestMove(pos *chess.Position, maxDepth int, timeLimit time.Duration) Result {
	e.reset(pos)
	e.searchStart = time.Now()
	e.timeLimit = timeLimit

	legal := pos.ValidMoves()
	if len(legal) == 0 {
		return Result{}
	}

	// A mate on the move never needs a search.
	for i := range legal {
		m := legal[i]
		if pos.Update(&m).Status() == chess.Checkmate {
			return Result{Move: &m, Score: MateScore - 1, PV: []chess.Move{m}, Depth: 1, Nodes: e.nodes}
		}
	}

	var best Result
	bestScore := 0

	for depth := 1; depth <= maxDepth; depth++ {
		if time.Since(e.searchStart) > e.timeLimit*9/10 {
			break
		}

		alpha := bestScore - aspirationWindow
		beta := bestScore + aspirationWindow
		score, pv := e.negamax(pos, depth, alpha, beta, 0, true)
		if e.timeUp {
			break
		}
		if score <= alpha || score >= beta {
			score, pv = e.negamax(pos, depth, -MateScore, MateScore, 0, true)
			if e.timeUp {
				break
			}
		}

		if len(pv) > 0 {
			mv := pv[0]
			best = Result{Move: &mv, Score: score, PV: pv, Depth: depth}
			bestScore = score
			log.Printf("[Search] depth=%d score=%d nodes=%d pv=%s",
				depth, score, e.nodes, pvString(pos, pv))
		}
	}

	if best.Move == nil {
		m := legal[0]
		best = Result{Move: &m, Score: bestScore, PV: []chess.Move{m}, Depth: 0}
	}
	best.Nodes = e.nodes
	return best
}

// pvString renders a variation in SAN from the given root position.
func pvString(pos *chess.Position, pv []chess.Move) string {
	var sb strings.Builder
	notation := chess.AlgebraicNotation{}
	cur := pos
	for i := range pv {
		if i > 0 {
			sb.WriteByte(' ')
		}
		m := pv[i]
		sb.WriteString(notation.Encode(cur, &m))
		cur = cur.Update(&m)
	}
	return sb.String()
}
