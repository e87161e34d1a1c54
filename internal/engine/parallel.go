package engine

import (
	"log"
	"time"

	"github.com/corentings/chess/v2"
	"golang.org/x/sync/errgroup"
)

// maxRootMoves caps the fan-out of the parallel root searcher.
const maxRootMoves = 20

// ParallelOptions configures the root-move fan-out.
type ParallelOptions struct {
	Depth     int
	TimeLimit time.Duration
	Workers   int
	// History seeds each worker's repetition detection.
	History []uint64
}

// FindBestMoveParallel distributes the first root moves across independent
// worker engines and keeps the move with the best score, first seen winning
// ties. Workers share nothing: each builds its own transposition table,
// killers and history, searches its root move to depth-1 with a full window
// from the opponent's viewpoint, and runs to its own budget. The dispatcher
// waits for all of them; a found mate does not cancel the siblings.
func FindBestMoveParallel(pos *chess.Position, opts ParallelOptions) Result {
	legal := pos.ValidMoves()
	if len(legal) == 0 {
		return Result{}
	}
	if len(legal) > maxRootMoves {
		legal = legal[:maxRootMoves]
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	rootFP := Fingerprint(pos)
	results := make([]Result, len(legal))

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range legal {
		i := i
		g.Go(func() error {
			m := legal[i]
			child := pos.Update(&m)

			w := New()
			w.SetGameHistory(append(append([]uint64(nil), opts.History...), rootFP))
			w.reset(child)
			w.searchStart = time.Now()
			w.timeLimit = opts.TimeLimit

			score, subPV := w.negamax(child, opts.Depth-1, -MateScore, MateScore, 1, true)
			results[i] = Result{
				Move:  &m,
				Score: -score,
				PV:    append([]chess.Move{m}, subPV...),
				Depth: opts.Depth,
				Nodes: w.nodes,
			}
			log.Printf("[Parallel] move=%s score=%d nodes=%d", m.String(), -score, w.nodes)
			return nil
		})
	}
	g.Wait()

	best := results[0]
	var nodes uint64
	for _, r := range results {
		nodes += r.Nodes
		if r.Score > best.Score {
			best = r
		}
	}
	best.Nodes = nodes
	return best
}
