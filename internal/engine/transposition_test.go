package engine

import (
	"testing"

	"github.com/corentings/chess/v2"
)

func TestTTProbeFlagSemantics(t *testing.T) {
	tt := NewTranspositionTable(16)
	m := &chess.Move{}

	tt.Store(1, 5, 120, TTExact, m, nil)
	if _, ok := tt.Probe(1, 5, -100, 100); !ok {
		t.Error("exact entries hit regardless of the window")
	}
	if _, ok := tt.Probe(1, 6, -100, 100); ok {
		t.Error("an entry must not satisfy a deeper probe")
	}

	tt.Store(2, 4, 300, TTLowerBound, m, nil)
	if _, ok := tt.Probe(2, 4, 0, 250); !ok {
		t.Error("a lower bound at or above beta is a hit")
	}
	if _, ok := tt.Probe(2, 4, 0, 400); ok {
		t.Error("a lower bound inside the window is a miss")
	}

	tt.Store(3, 4, -300, TTUpperBound, m, nil)
	if _, ok := tt.Probe(3, 4, -250, 0); !ok {
		t.Error("an upper bound at or below alpha is a hit")
	}
	if _, ok := tt.Probe(3, 4, -400, 0); ok {
		t.Error("an upper bound inside the window is a miss")
	}
}

func TestTTReplacementPrefersDepth(t *testing.T) {
	tt := NewTranspositionTable(16)
	m := &chess.Move{}

	tt.Store(7, 6, 50, TTExact, m, nil)
	tt.Store(7, 3, 999, TTExact, m, nil) // shallower: must not replace
	if entry, ok := tt.Lookup(7); !ok || entry.Depth != 6 || entry.Score != 50 {
		t.Errorf("shallow store replaced a deeper entry: %+v", entry)
	}

	tt.Store(7, 6, 75, TTExact, m, nil) // equal depth: replaces
	if entry, _ := tt.Lookup(7); entry.Score != 75 {
		t.Errorf("equal-depth store should replace, got score %d", entry.Score)
	}

	tt.Store(7, 8, 10, TTExact, m, nil) // deeper: replaces
	if entry, _ := tt.Lookup(7); entry.Depth != 8 {
		t.Errorf("deeper store should replace, got depth %d", entry.Depth)
	}
}

func TestTTEvictionKeepsBound(t *testing.T) {
	const maxEntries = 100
	tt := NewTranspositionTable(maxEntries)
	tt.SeedEviction(42)
	m := &chess.Move{}

	for key := uint64(0); key < 5*maxEntries; key++ {
		tt.Store(key, 1, int(key), TTExact, m, nil)
		if tt.Len() > maxEntries {
			t.Fatalf("table grew to %d entries, cap is %d", tt.Len(), maxEntries)
		}
	}
	// Fresh keys keep landing after each shed.
	if _, ok := tt.Lookup(5*maxEntries - 1); !ok {
		t.Error("the most recent store should be present")
	}
	t.Logf("table holds %d/%d entries after churn", tt.Len(), maxEntries)
}

func TestTTClear(t *testing.T) {
	tt := NewTranspositionTable(16)
	tt.Store(9, 2, 10, TTExact, &chess.Move{}, nil)
	tt.Clear()
	if tt.Len() != 0 {
		t.Errorf("Clear left %d entries", tt.Len())
	}
}
