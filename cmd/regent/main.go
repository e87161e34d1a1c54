package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/regentchess/regent/internal/analyze"
)

func main() {
	var (
		pos      = flag.String("pos", "", "position to analyze: FEN, PGN file, PGN text, or \"start\" (required)")
		as       = flag.String("as", "", "side the engine plays: w|white|b|black (default: side to move)")
		depth    = flag.Int("depth", 8, "maximum search depth")
		seconds  = flag.Float64("time", 30, "time budget in seconds")
		moves    = flag.String("move", "", "comma-separated SAN sequence to play before analyzing")
		parallel = flag.Bool("parallel", false, "distribute root moves across workers")
		workers  = flag.Int("workers", defaultWorkers(), "worker count for -parallel")
		cache    = flag.Bool("cache", false, "persist and reuse analysis results")
		cacheDir = flag.String("cache-dir", "", "analysis cache directory (default: ~/.regent/cache)")
	)
	flag.Parse()

	if *pos == "" {
		fmt.Fprintln(os.Stderr, "regent: -pos is required")
		flag.Usage()
		os.Exit(2)
	}

	err := analyze.Run(analyze.Options{
		Pos:      *pos,
		As:       *as,
		Depth:    *depth,
		Time:     time.Duration(*seconds * float64(time.Second)),
		Moves:    *moves,
		Parallel: *parallel,
		Workers:  *workers,
		Cache:    *cache,
		CacheDir: *cacheDir,
		Out:      os.Stdout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "regent: %v\n", err)
		os.Exit(1)
	}
}

func defaultWorkers() int {
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	return n
}
