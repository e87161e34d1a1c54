package engine

import (
	"testing"
)

func TestEvaluateCheckmate(t *testing.T) {
	// Back-rank mate, black to move and mated.
	pos := positionFromFEN(t, "R5k1/5ppp/8/8/8/8/5PPP/6K1 b - - 0 1")
	e := New()
	if got := e.Evaluate(pos, 0); got != -MateScore {
		t.Errorf("checkmate at ply 0 = %d, want %d", got, -MateScore)
	}
	if got := e.Evaluate(pos, 4); got != -MateScore+4 {
		t.Errorf("checkmate at ply 4 = %d, want %d", got, -MateScore+4)
	}
}

func TestEvaluateStalemate(t *testing.T) {
	// Classic corner stalemate: black king h8, white Kg6 and Qf7? No --
	// king a8 boxed by queen b6 and king: black has no moves, no check.
	pos := positionFromFEN(t, "k7/8/1QK5/8/8/8/8/8 b - - 0 1")
	e := New()
	if got := e.Evaluate(pos, 0); got != 0 {
		t.Errorf("stalemate = %d, want 0", got)
	}
}

func TestEvaluateInsufficientMaterial(t *testing.T) {
	for _, fen := range []string{
		"8/8/4k3/8/8/4K3/8/8 w - - 0 1",    // bare kings
		"8/8/4k3/8/8/4KN2/8/8 w - - 0 1",   // lone knight
		"8/8/4k3/8/8/4KB2/8/8 b - - 0 1",   // lone bishop
	} {
		pos := positionFromFEN(t, fen)
		e := New()
		if got := e.Evaluate(pos, 0); got != 0 {
			t.Errorf("insufficient material %q = %d, want 0", fen, got)
		}
	}
}

func TestEvaluateFiftyMoveDraw(t *testing.T) {
	pos := positionFromFEN(t, "8/4k3/8/8/8/8/4K3/4R3 w - - 100 80")
	e := New()
	if got := e.Evaluate(pos, 0); got != 0 {
		t.Errorf("claimable fifty-move position = %d, want 0", got)
	}
}

func TestEvaluateStartingPositionBalanced(t *testing.T) {
	pos := positionFromFEN(t, startFEN)
	e := New()
	score := e.Evaluate(pos, 0)
	if score < -50 || score > 50 {
		t.Errorf("starting position = %d, want a near-zero score", score)
	}
	t.Logf("starting position eval: %d", score)
}

func TestEvaluateMaterialSwing(t *testing.T) {
	// White is a queen up; the score from white's viewpoint must be large.
	pos := positionFromFEN(t, "rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	e := New()
	score := e.Evaluate(pos, 0)
	if score < 700 {
		t.Errorf("queen-up position = %d, want clearly winning for white", score)
	}
	// Same imbalance seen from the losing side.
	pos = positionFromFEN(t, "rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1")
	if got := e.Evaluate(pos, 0); got > -700 {
		t.Errorf("queen-down side to move = %d, want clearly losing", got)
	}
}

func TestEvaluateUnstoppablePasser(t *testing.T) {
	// White pawn a6, white king a1, black king h8: the black king is
	// outside the square of the pawn, so the passer bonus alone must push
	// the score past +400.
	pos := positionFromFEN(t, "7k/8/P7/8/8/8/8/K7 w - - 0 1")
	e := New()
	score := e.Evaluate(pos, 0)
	if score <= 400 {
		t.Errorf("unstoppable passer = %d, want > 400", score)
	}
	t.Logf("unstoppable passer eval: %d", score)
}

func TestEvaluateStoppablePasserSmaller(t *testing.T) {
	// Same pawn, but the defending king already guards the promotion
	// square: no unstoppable bonus, so the score stays well under 400.
	caught := positionFromFEN(t, "1k6/8/P7/8/8/8/8/K7 w - - 0 1")
	e := New()
	score := e.Evaluate(caught, 0)
	if score <= 0 || score > 400 {
		t.Errorf("guarded passer = %d, want a modest positive score", score)
	}
	t.Logf("guarded promotion path eval: %d", score)
}

func TestEvaluatePawnStructurePenalties(t *testing.T) {
	e := New()
	// Healthy: connected pawns. Damaged: the same pawns doubled on one file.
	healthy := positionFromFEN(t, "4k3/8/8/8/8/8/4PP2/4K3 w - - 0 1")
	doubled := positionFromFEN(t, "4k3/8/8/8/8/4P3/4P3/4K3 w - - 0 1")
	hs := e.Evaluate(healthy, 0)
	ds := e.Evaluate(doubled, 0)
	if ds >= hs {
		t.Errorf("doubled+isolated pawns (%d) should score below connected pawns (%d)", ds, hs)
	}
}

func TestEvaluateKingShield(t *testing.T) {
	e := New()
	// Castled king behind its pawns versus the same king with the shield
	// pushed away.
	shielded := positionFromFEN(t, "6k1/5ppp/8/8/8/8/5PPP/6K1 w - - 0 1")
	bare := positionFromFEN(t, "6k1/5ppp/8/8/5PPP/8/8/6K1 w - - 0 1")
	ss := e.Evaluate(shielded, 0)
	bs := e.Evaluate(bare, 0)
	if ss <= bs {
		t.Errorf("shielded king (%d) should score above a bare king (%d)", ss, bs)
	}
}

func TestEvaluateMirrorSymmetry(t *testing.T) {
	// A position and its color-flipped mirror must score identically from
	// the side to move.
	white := positionFromFEN(t, "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")
	black := positionFromFEN(t, "rnbqkb1r/pppp1ppp/5n2/4p3/4P3/2N5/PPPP1PPP/R1BQKBNR b KQkq - 2 3")
	e := New()
	ws := e.Evaluate(white, 0)
	bs := e.Evaluate(black, 0)
	if ws != bs {
		t.Errorf("mirrored positions disagree: white view %d, black view %d", ws, bs)
	}
}

func TestIsMateScore(t *testing.T) {
	if !IsMateScore(MateScore - 3) {
		t.Error("a near-mate score should be flagged")
	}
	if !IsMateScore(-MateScore + 7) {
		t.Error("a getting-mated score should be flagged")
	}
	if IsMateScore(500) {
		t.Error("an ordinary material score is not a mate")
	}
}

func TestEvaluateTurnPerspective(t *testing.T) {
	// The same board with only the turn flipped: scores negate up to the
	// side-to-move-only terms (mobility is measured for the mover).
	w := positionFromFEN(t, "4k3/8/8/8/8/8/8/Q3K3 w - - 0 1")
	b := positionFromFEN(t, "4k3/8/8/8/8/8/8/Q3K3 b - - 0 1")
	e := New()
	ws := e.Evaluate(w, 0)
	bs := e.Evaluate(b, 0)
	if ws <= 0 || bs >= 0 {
		t.Errorf("white view %d should be positive, black view %d negative", ws, bs)
	}
}
