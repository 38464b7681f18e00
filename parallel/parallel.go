// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package parallel runs user work over a slice of items under a bounded,
// memory-aware worker pool with per-item and whole-operation timeouts,
// preserving each item's index in the result even on partial failure.
package parallel

import (
	"context"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/hideme/pdf-redact-engine/logger"
	"github.com/hideme/pdf-redact-engine/memmonitor"
)

// Config bounds the adaptive worker count computed when the caller does
// not pin MaxWorkers.
type Config struct {
	MinWorkers int `validate:"gte=1"`
	MaxWorkers int `validate:"gtesfield=MinWorkers"`
}

// DefaultConfig clamps adaptive sizing to [2, 8], matching the range the
// engine this package is grounded on uses.
func DefaultConfig() Config {
	return Config{MinWorkers: 2, MaxWorkers: 8}
}

// Result pairs a produced value with the index of the item it came from,
// so callers can reassemble output in original order after partial
// failure reorders completion.
type Result[T any] struct {
	Index int
	Value T
	OK    bool
}

// ProgressFunc is invoked no more than every 5 seconds with the running
// (completed, total, elapsed) tuple.
type ProgressFunc func(completed, total int, elapsed time.Duration)

// Options configures one ProcessInParallel call.
type Options struct {
	MaxWorkers   int // 0 means adaptive
	ItemTimeout  time.Duration
	BatchTimeout time.Duration
	OperationID  string
	Progress     ProgressFunc
	Monitor      *memmonitor.Monitor // optional, informs adaptive sizing
}

// ProcessInParallel runs fn(item) for every item, bounding concurrency
// either to opts.MaxWorkers or to an adaptively computed worker count,
// and returns one Result per item in original index order. A per-item
// timeout turns a stuck fn into a (zero-value, false) result rather than
// blocking the whole operation; a batch timeout bounds the whole call,
// returning whatever has completed so far with the rest marked not-OK.
func ProcessInParallel[T, R any](ctx context.Context, items []T, fn func(context.Context, T) (R, error), opts Options) []Result[R] {
	total := len(items)
	results := make([]Result[R], total)
	for i := range results {
		results[i].Index = i
	}

	if total == 0 {
		return results
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = computeWorkerCount(DefaultConfig(), total, opts.Monitor)
	} else if workers > total {
		workers = total
	}

	batchCtx := ctx
	var cancel context.CancelFunc
	if opts.BatchTimeout > 0 {
		batchCtx, cancel = context.WithTimeout(ctx, opts.BatchTimeout)
		defer cancel()
	}

	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var completed int
	var mu sync.Mutex
	lastProgress := time.Now()
	start := time.Now()

	for i, item := range items {
		if err := sem.Acquire(batchCtx, 1); err != nil {
			// Batch timeout or cancellation: remaining items stay not-OK.
			break
		}
		wg.Add(1)
		go func(idx int, it T) {
			defer wg.Done()
			defer sem.Release(1)

			itemCtx := batchCtx
			var itemCancel context.CancelFunc
			if opts.ItemTimeout > 0 {
				itemCtx, itemCancel = context.WithTimeout(batchCtx, opts.ItemTimeout)
				defer itemCancel()
			}

			val, err := fn(itemCtx, it)
			if err != nil {
				logger.Debug("parallel: item failed", "operation_id", opts.OperationID, "index", idx, "err", err, true)
				results[idx] = Result[R]{Index: idx, OK: false}
			} else {
				results[idx] = Result[R]{Index: idx, Value: val, OK: true}
			}

			mu.Lock()
			completed++
			n := completed
			if opts.Progress != nil && time.Since(lastProgress) >= 5*time.Second {
				lastProgress = time.Now()
				opts.Progress(n, total, time.Since(start))
			}
			mu.Unlock()
		}(i, item)
	}

	wg.Wait()
	if opts.Progress != nil {
		opts.Progress(completed, total, time.Since(start))
	}
	return results
}

// computeWorkerCount derives an adaptive worker count from CPU count and
// current memory pressure, the same inputs the worker-count heuristic
// this package is grounded on consults, generalized from its fixed
// NumCPU()/2 rule of thumb to also shrink under memory pressure.
func computeWorkerCount(cfg Config, itemCount int, mon *memmonitor.Monitor) int {
	n := runtime.NumCPU()
	if n > cfg.MaxWorkers {
		n = cfg.MaxWorkers
	}
	if n < cfg.MinWorkers {
		n = cfg.MinWorkers
	}

	if mon != nil && mon.ShouldThrottleBatch() {
		n = n / 2
		if n < cfg.MinWorkers {
			n = cfg.MinWorkers
		}
	}

	if itemCount < n {
		n = itemCount
	}
	if n < 1 {
		n = 1
	}
	return n
}

// PageResult is the per-page outcome of ProcessPagesInParallel: a
// best-effort result that degrades to an empty sensitive list rather
// than failing the whole batch when one page errors.
type PageResult[R any] struct {
	Index int
	Value R
}

// ProcessPagesInParallel is the simpler per-page form: a local semaphore
// bounds concurrency, and a page-level panic/error yields that page's
// zero value rather than aborting the batch.
func ProcessPagesInParallel[T, R any](ctx context.Context, pages []T, fn func(context.Context, T) (R, error), maxWorkers int) []PageResult[R] {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	if maxWorkers > len(pages) {
		maxWorkers = len(pages)
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	out := make([]PageResult[R], len(pages))
	sem := semaphore.NewWeighted(int64(maxWorkers))
	var wg sync.WaitGroup

	for i, page := range pages {
		sem.Acquire(ctx, 1)
		wg.Add(1)
		go func(idx int, p T) {
			defer wg.Done()
			defer sem.Release(1)
			defer func() {
				if r := recover(); r != nil {
					logger.Debug("parallel: page processing panicked, returning empty result", "index", idx, "panic", r, true)
					var zero R
					out[idx] = PageResult[R]{Index: idx, Value: zero}
				}
			}()
			val, err := fn(ctx, p)
			if err != nil {
				logger.Debug("parallel: page processing failed, returning empty result", "index", idx, "err", err, true)
				var zero R
				out[idx] = PageResult[R]{Index: idx, Value: zero}
				return
			}
			out[idx] = PageResult[R]{Index: idx, Value: val}
		}(i, page)
	}
	wg.Wait()
	return out
}

// ProcessEntitiesInBatches splits entities into fixed-size batches and
// invokes fn once per batch, concatenating results in order. An empty
// input returns an empty, non-nil slice.
func ProcessEntitiesInBatches[T, R any](ctx context.Context, entities []T, batchSize int, fn func(context.Context, []T) ([]R, error)) []R {
	out := make([]R, 0, len(entities))
	if len(entities) == 0 {
		return out
	}
	if batchSize <= 0 {
		batchSize = len(entities)
	}
	for start := 0; start < len(entities); start += batchSize {
		end := start + batchSize
		if end > len(entities) {
			end = len(entities)
		}
		batch := entities[start:end]
		res, err := fn(ctx, batch)
		if err != nil {
			logger.Debug("parallel: entity batch failed", "start", start, "end", end, "err", err, true)
			continue
		}
		out = append(out, res...)
	}
	return out
}
