// Package analyze is the command surface over the engine: it loads a
// position from FEN or PGN, optionally replays a move sequence with
// tactical commentary, runs the search and renders the report.
package analyze

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/corentings/chess/v2"

	"github.com/regentchess/regent/internal/engine"
	"github.com/regentchess/regent/internal/storage"
	"github.com/regentchess/regent/internal/tactics"
)

// Options configures one analysis run.
type Options struct {
	Pos      string        // FEN, PGN file, PGN text, or "start"
	As       string        // w|white|b|black; empty means side to move
	Depth    int           // maximum search depth
	Time     time.Duration // wall-clock budget
	Moves    string        // comma-separated SAN sequence to apply first
	Parallel bool          // use the parallel root searcher
	Workers  int           // worker cap for parallel mode
	Cache    bool          // consult and update the persistent cache
	CacheDir string        // cache location; empty selects the default
	Out      io.Writer
}

// Run performs the analysis. It returns an error only for unusable input;
// search-level conditions (no legal moves, time exhaustion) degrade to
// diagnostics in the report.
func Run(opts Options) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	pos, history, err := loadPosition(opts.Pos)
	if err != nil {
		return err
	}

	if opts.Moves != "" {
		pos, history, err = applySequence(out, pos, history, opts.Moves)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Position after sequence: %s\n", pos.String())
	}

	engineSide := pos.Turn()
	switch strings.ToLower(opts.As) {
	case "w", "white":
		engineSide = chess.White
	case "b", "black":
		engineSide = chess.Black
	case "":
	default:
		return fmt.Errorf("analyze: unknown side %q", opts.As)
	}

	if len(pos.ValidMoves()) == 0 {
		fmt.Fprintf(out, "No legal moves in this position (%s).\n", statusText(pos))
		return nil
	}

	var cache *storage.Cache
	if opts.Cache {
		cache, err = storage.Open(opts.CacheDir)
		if err != nil {
			log.Printf("[Analyze] cache unavailable: %v", err)
		} else {
			defer cache.Close()
		}
	}

	fp := engine.Fingerprint(pos)
	if cache != nil {
		if rec, found, err := cache.Load(fp); err == nil && found &&
			(rec.Depth >= opts.Depth || engine.IsMateScore(rec.Score)) {
			fmt.Fprintf(out, "Cached analysis (depth %d): %s  score %s\n",
				rec.Depth, rec.BestMove, formatScore(rec.Score, pos.Turn(), engineSide))
			fmt.Fprintf(out, "PV: %s\n", strings.Join(rec.PV, " "))
			return nil
		}
	}

	start := time.Now()
	var result engine.Result
	if opts.Parallel {
		result = engine.FindBestMoveParallel(pos, engine.ParallelOptions{
			Depth:     opts.Depth,
			TimeLimit: opts.Time,
			Workers:   opts.Workers,
			History:   history,
		})
	} else {
		e := engine.New()
		e.SetGameHistory(history)
		result = e.FindBestMove(pos, opts.Depth, opts.Time)
	}
	elapsed := time.Since(start)

	if result.Move == nil {
		fmt.Fprintf(out, "No move found.\n")
		return nil
	}

	notation := chess.AlgebraicNotation{}
	san := notation.Encode(pos, result.Move)
	fmt.Fprintf(out, "Best move: %s\n", san)
	fmt.Fprintf(out, "Score: %s\n", formatScore(result.Score, pos.Turn(), engineSide))
	fmt.Fprintf(out, "Depth: %d  Nodes: %d  Time: %.2fs\n", result.Depth, result.Nodes, elapsed.Seconds())
	fmt.Fprintf(out, "PV: %s\n", sanLine(pos, result.PV))
	for _, t := range tactics.Annotate(pos, result.Move) {
		fmt.Fprintf(out, "Tactic: %s\n", t)
	}

	if cache != nil {
		rec := storage.Record{
			FEN:      pos.String(),
			BestMove: san,
			Score:    result.Score,
			Depth:    result.Depth,
			PV:       sanMoves(pos, result.PV),
		}
		if err := cache.Store(fp, rec); err != nil {
			log.Printf("[Analyze] cache store failed: %v", err)
		}
	}
	return nil
}

// loadPosition resolves the --pos argument: the literal "start", a PGN
// file path, a FEN string, or inline PGN text. It returns the position to
// analyze and the fingerprints of every position reached before it.
func loadPosition(arg string) (*chess.Position, []uint64, error) {
	if arg == "" {
		return nil, nil, fmt.Errorf("analyze: no position given")
	}
	if arg == "start" {
		return historyOf(chess.NewGame())
	}
	if _, err := os.Stat(arg); err == nil {
		f, err := os.Open(arg)
		if err != nil {
			return nil, nil, fmt.Errorf("analyze: open %s: %w", arg, err)
		}
		defer f.Close()
		pgn, err := chess.PGN(f)
		if err != nil {
			return nil, nil, fmt.Errorf("analyze: parse PGN %s: %w", arg, err)
		}
		return historyOf(chess.NewGame(pgn))
	}
	if fen, err := chess.FEN(arg); err == nil {
		return historyOf(chess.NewGame(fen))
	}
	if pgn, err := chess.PGN(strings.NewReader(arg)); err == nil {
		return historyOf(chess.NewGame(pgn))
	}
	return nil, nil, fmt.Errorf("analyze: %q is not a FEN, PGN file or PGN text", arg)
}

// historyOf extracts the current position and the fingerprint history of a
// loaded game.
func historyOf(g *chess.Game) (*chess.Position, []uint64, error) {
	positions := g.Positions()
	fps := make([]uint64, 0, len(positions))
	for _, p := range positions {
		fps = append(fps, engine.Fingerprint(p))
	}
	return g.Position(), fps, nil
}

// applySequence plays a comma-separated SAN sequence, printing tactical
// annotations per move.
func applySequence(out io.Writer, pos *chess.Position, history []uint64, seq string) (*chess.Position, []uint64, error) {
	notation := chess.AlgebraicNotation{}
	for i, raw := range strings.Split(seq, ",") {
		san := strings.TrimSpace(raw)
		if san == "" {
			continue
		}
		m, err := notation.Decode(pos, san)
		if err != nil {
			return nil, nil, fmt.Errorf("analyze: move %d (%s): %w", i+1, san, err)
		}
		if !isLegal(pos, m) {
			return nil, nil, fmt.Errorf("analyze: move %d (%s) is not legal here", i+1, san)
		}
		found := tactics.Annotate(pos, m)
		if len(found) == 0 {
			fmt.Fprintf(out, "%d. %s\n", i+1, san)
		} else {
			notes := make([]string, len(found))
			for j, t := range found {
				notes[j] = t.String()
			}
			fmt.Fprintf(out, "%d. %s  [%s]\n", i+1, san, strings.Join(notes, "; "))
		}
		pos = pos.Update(m)
		history = append(history, engine.Fingerprint(pos))
	}
	return pos, history, nil
}

// isLegal reports whether the move is among the position's legal moves.
func isLegal(pos *chess.Position, m *chess.Move) bool {
	for _, v := range pos.ValidMoves() {
		if v.S1() == m.S1() && v.S2() == m.S2() && v.Promo() == m.Promo() {
			return true
		}
	}
	return false
}

// formatScore renders a score for display: from the engine's side, mates as
// move counts.
func formatScore(score int, turn, engineSide chess.Color) string {
	if turn != engineSide {
		score = -score
	}
	if engine.IsMateScore(score) {
		mateIn := (engine.MateScore - abs(score) + 1) / 2
		if score > 0 {
			return fmt.Sprintf("Mate in %d", mateIn)
		}
		return fmt.Sprintf("Mated in %d", mateIn)
	}
	return fmt.Sprintf("%+.2f", float64(score)/100)
}

// sanLine renders a variation in SAN from the given position.
func sanLine(pos *chess.Position, pv []chess.Move) string {
	return strings.Join(sanMoves(pos, pv), " ")
}

func sanMoves(pos *chess.Position, pv []chess.Move) []string {
	notation := chess.AlgebraicNotation{}
	cur := pos
	out := make([]string, 0, len(pv))
	for i := range pv {
		m := pv[i]
		out = append(out, notation.Encode(cur, &m))
		cur = cur.Update(&m)
	}
	return out
}

func statusText(pos *chess.Position) string {
	switch pos.Status() {
	case chess.Checkmate:
		return "checkmate"
	case chess.Stalemate:
		return "stalemate"
	default:
		return "no moves"
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
