package engine

import (
	"github.com/corentings/chess/v2"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

// DefaultTTSize is the default entry cap for the transposition table.
const DefaultTTSize = 2_000_000

// TTEntry is a cached search result for one fingerprint.
type TTEntry struct {
	Depth    int
	Score    int
	Flag     TTFlag
	BestMove *chess.Move
	PV       []chess.Move
}

// TranspositionTable is a bounded map from position fingerprint to search
// record. When full it sheds a random tenth of its entries; on key conflict
// the deeper search wins.
type TranspositionTable struct {
	entries map[uint64]TTEntry
	maxSize int
	rng     *prng
}

// NewTranspositionTable creates a table holding at most maxSize entries.
// A maxSize of 0 selects the default cap.
func NewTranspositionTable(maxSize int) *TranspositionTable {
	if maxSize <= 0 {
		maxSize = DefaultTTSize
	}
	return &TranspositionTable{
		entries: make(map[uint64]TTEntry),
		maxSize: maxSize,
		rng:     newPRNG(0xA3C59AC2B1E04F11),
	}
}

// SeedEviction reseeds the eviction generator. Tests use this to make the
// random shed deterministic.
func (tt *TranspositionTable) SeedEviction(seed uint64) {
	tt.rng = newPRNG(seed)
}

// Probe looks up a fingerprint at the given depth and window. It is a hit
// only if the stored depth covers the requested one and the stored bound is
// usable against the window: exact scores always, lower bounds at or above
// beta, upper bounds at or below alpha.
func (tt *TranspositionTable) Probe(key uint64, depth, alpha, beta int) (TTEntry, bool) {
	entry, ok := tt.entries[key]
	if !ok || entry.Depth < depth {
		return TTEntry{}, false
	}
	switch entry.Flag {
	case TTExact:
		return entry, true
	case TTLowerBound:
		if entry.Score >= beta {
			return entry, true
		}
	case TTUpperBound:
		if entry.Score <= alpha {
			return entry, true
		}
	}
	return TTEntry{}, false
}

// Lookup returns the raw entry for a fingerprint, usable as a move-ordering
// hint even when Probe would miss.
func (tt *TranspositionTable) Lookup(key uint64) (TTEntry, bool) {
	entry, ok := tt.entries[key]
	return entry, ok
}

// Store records a search result. Existing entries are only overwritten by a
// search of equal or greater depth; fresh keys are always inserted, evicting
// a random 10% of the table first if it is at capacity.
func (tt *TranspositionTable) Store(key uint64, depth, score int, flag TTFlag, best *chess.Move, pv []chess.Move) {
	if old, ok := tt.entries[key]; ok {
		if depth < old.Depth {
			return
		}
	} else if len(tt.entries) >= tt.maxSize {
		tt.evict()
	}
	tt.entries[key] = TTEntry{
		Depth:    depth,
		Score:    score,
		Flag:     flag,
		BestMove: best,
		PV:       pv,
	}
}

// evict removes roughly a tenth of the entries at random.
func (tt *TranspositionTable) evict() {
	drop := len(tt.entries) / 10
	if drop < 1 {
		drop = 1
	}
	// Map iteration order is already randomized; the PRNG decides how far
	// into the walk each eviction lands so repeated sheds don't favor the
	// same iteration prefix.
	skip := int(tt.rng.next() % 4)
	for k := range tt.entries {
		if skip > 0 {
			skip--
			continue
		}
		delete(tt.entries, k)
		drop--
		if drop == 0 {
			break
		}
		skip = int(tt.rng.next() % 4)
	}
}

// Len returns the number of stored entries.
func (tt *TranspositionTable) Len() int {
	return len(tt.entries)
}

// Clear drops all entries.
func (tt *TranspositionTable) Clear() {
	tt.entries = make(map[uint64]TTEntry)
}
