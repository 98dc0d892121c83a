// Package parallel splits independent row-wise work across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how work is split.
type Config struct {
	Workers  int // Upper bound on goroutines; <= 1 runs inline.
	MinChunk int // Fewer items than this per worker are not worth a goroutine.
}

// DefaultConfig uses one worker per CPU and chunks of at least 64 rows.
func DefaultConfig() Config {
	return Config{
		Workers:  runtime.NumCPU(),
		MinChunk: 64,
	}
}

// Chunks returns the [lo, hi) ranges that cover [0, n) under cfg.
func (cfg Config) Chunks(n int) [][2]int {
	if n <= 0 {
		return nil
	}
	workers := cfg.Workers
	if cfg.MinChunk > 0 {
		workers = min(workers, n/cfg.MinChunk)
	}
	workers = max(workers, 1)

	size := (n + workers - 1) / workers
	chunks := make([][2]int, 0, workers)
	for lo := 0; lo < n; lo += size {
		chunks = append(chunks, [2]int{lo, min(lo+size, n)})
	}
	return chunks
}

// For calls f once per chunk of [0, n) and waits for all calls to return.
// With a single chunk f runs on the calling goroutine.
//
// A panic in any call is re-raised on the calling goroutine once every chunk
// has finished, so callers can recover it as if f had run inline.
//
// f must only touch data belonging to its own range.
func For(n int, cfg Config, f func(lo, hi int)) {
	chunks := cfg.Chunks(n)
	if len(chunks) == 1 {
		f(chunks[0][0], chunks[0][1])
		return
	}

	var (
		wg        sync.WaitGroup
		once      sync.Once
		recovered any
	)
	for _, c := range chunks {
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					once.Do(func() { recovered = r })
				}
			}()
			f(lo, hi)
		}(c[0], c[1])
	}
	wg.Wait()
	if recovered != nil {
		panic(recovered)
	}
}
