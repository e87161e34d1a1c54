package analyze

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestRunAnalyzesFEN(t *testing.T) {
	var out bytes.Buffer
	err := Run(Options{
		Pos:   "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1",
		Depth: 2,
		Time:  10 * time.Second,
		Out:   &out,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	report := out.String()
	if !strings.Contains(report, "Best move: Ra8") {
		t.Errorf("expected the mating rook lift in the report:\n%s", report)
	}
	if !strings.Contains(report, "Mate in 1") {
		t.Errorf("expected mate-distance formatting:\n%s", report)
	}
}

func TestRunRejectsGarbage(t *testing.T) {
	err := Run(Options{Pos: "not a position at all", Depth: 1, Time: time.Second})
	if err == nil {
		t.Fatal("unparseable input must fail")
	}
}

func TestRunReportsTerminalPosition(t *testing.T) {
	var out bytes.Buffer
	// Stalemate: the side to move has nothing to play.
	err := Run(Options{
		Pos:   "k7/8/1QK5/8/8/8/8/8 b - - 0 1",
		Depth: 2,
		Time:  time.Second,
		Out:   &out,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "No legal moves") {
		t.Errorf("expected a terminal-position diagnostic:\n%s", out.String())
	}
}

func TestRunMoveSequence(t *testing.T) {
	var out bytes.Buffer
	err := Run(Options{
		Pos:   "start",
		Moves: "e4,e5,Nf3,Nc6,Bb5",
		Depth: 2,
		Time:  20 * time.Second,
		Out:   &out,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	report := out.String()
	// The Ruy Lopez tabiya, black to move.
	if !strings.Contains(report, "r1bqkbnr/pppp1ppp/2n5/1B2p3/4P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3") {
		t.Errorf("expected the Ruy Lopez FEN after the sequence:\n%s", report)
	}
	if !strings.Contains(report, "Best move:") {
		t.Errorf("expected analysis to follow the sequence:\n%s", report)
	}
}

func TestRunRejectsIllegalSequence(t *testing.T) {
	err := Run(Options{
		Pos:   "start",
		Moves: "e4,e4",
		Depth: 1,
		Time:  time.Second,
		Out:   &bytes.Buffer{},
	})
	if err == nil {
		t.Fatal("an illegal move in the sequence must fail")
	}
}

func TestRunSideConvention(t *testing.T) {
	// Analyzing for white with black to move: black's best keeps the
	// balance, so the white-view score stays near zero but the report
	// must carry the negation without crashing.
	var out bytes.Buffer
	err := Run(Options{
		Pos:   "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1",
		As:    "white",
		Depth: 2,
		Time:  10 * time.Second,
		Out:   &out,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "Score:") {
		t.Errorf("expected a score line:\n%s", out.String())
	}
}

func TestRunUsesCache(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		Pos:      "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1",
		Depth:    2,
		Time:     10 * time.Second,
		Cache:    true,
		CacheDir: dir,
	}

	var first bytes.Buffer
	opts.Out = &first
	if err := Run(opts); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	var second bytes.Buffer
	opts.Out = &second
	if err := Run(opts); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if !strings.Contains(second.String(), "Cached analysis") {
		t.Errorf("second run should hit the cache:\n%s", second.String())
	}
}
