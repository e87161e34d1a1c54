package storage

import (
	"testing"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCacheRoundTrip(t *testing.T) {
	c := openTestCache(t)

	const fp = uint64(0xDEADBEEFCAFE)
	rec := Record{
		FEN:      "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		BestMove: "e4",
		Score:    35,
		Depth:    6,
		PV:       []string{"e4", "e5", "Nf3"},
	}
	if err := c.Store(fp, rec); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	got, found, err := c.Load(fp)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !found {
		t.Fatal("expected a cache hit after store")
	}
	if got.BestMove != "e4" || got.Depth != 6 || got.Score != 35 {
		t.Errorf("loaded record mismatch: %+v", got)
	}
	if len(got.PV) != 3 || got.PV[2] != "Nf3" {
		t.Errorf("PV mismatch: %v", got.PV)
	}
	if got.Analyzed.IsZero() {
		t.Error("Store should stamp the analysis time")
	}
}

func TestCacheMiss(t *testing.T) {
	c := openTestCache(t)
	if _, found, err := c.Load(42); err != nil || found {
		t.Errorf("expected a clean miss, found=%v err=%v", found, err)
	}
}

func TestCacheKeepsDeeperAnalysis(t *testing.T) {
	c := openTestCache(t)
	const fp = uint64(7)

	if err := c.Store(fp, Record{BestMove: "Nf3", Depth: 8}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	// A shallower result must not displace the deeper one.
	if err := c.Store(fp, Record{BestMove: "e4", Depth: 4}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	got, _, err := c.Load(fp)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.BestMove != "Nf3" || got.Depth != 8 {
		t.Errorf("shallow store displaced deeper analysis: %+v", got)
	}

	// A deeper result replaces.
	if err := c.Store(fp, Record{BestMove: "d4", Depth: 10}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if got, _, _ := c.Load(fp); got.Depth != 10 {
		t.Errorf("deeper store should replace: %+v", got)
	}
}
