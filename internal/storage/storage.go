// Package storage persists completed analyses between runs. The search's
// own transposition table stays in memory; this cache sits outside the
// engine, keyed by position fingerprint.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Record is a finished root analysis for one position.
type Record struct {
	FEN      string    `json:"fen"`
	BestMove string    `json:"best_move"` // SAN
	Score    int       `json:"score"`
	Depth    int       `json:"depth"`
	PV       []string  `json:"pv"` // SAN from the position
	Analyzed time.Time `json:"analyzed"`
}

// Cache wraps BadgerDB for persistent analysis storage.
type Cache struct {
	db *badger.DB
}

// Open opens (or creates) the cache at dir. An empty dir selects the
// default location under the user's home directory (~/.regent/cache).
func Open(dir string) (*Cache, error) {
	if dir == "" {
		var err error
		dir, err = DefaultDir()
		if err != nil {
			return nil, err
		}
	}
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func key(fingerprint uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, fingerprint)
	return k
}

// Load returns the cached record for a fingerprint, or found=false.
func (c *Cache) Load(fingerprint uint64) (Record, bool, error) {
	var rec Record
	found := false

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(fingerprint))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &rec); err != nil {
				return err
			}
			found = true
			return nil
		})
	})
	return rec, found, err
}

// Store saves a record, keeping whichever of the old and new analyses is
// deeper.
func (c *Cache) Store(fingerprint uint64, rec Record) error {
	if old, found, err := c.Load(fingerprint); err != nil {
		return err
	} else if found && old.Depth > rec.Depth {
		return nil
	}

	rec.Analyzed = time.Now()
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(fingerprint), data)
	})
}
