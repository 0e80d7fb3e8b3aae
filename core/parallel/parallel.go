// Package parallel splits index ranges across worker goroutines.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Parallelize divides [0, items) into at most workers contiguous ranges and
// calls fn for each range (start, end) concurrently. workers <= 0 means one
// worker per CPU core. The first error cancels ctx for the remaining workers
// and is returned.
func Parallelize(ctx context.Context, items, workers int, fn func(ctx context.Context, start, end int) error) error {
	if items == 0 {
		return nil
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > items {
		workers = items // No need for more workers than items
	}

	// ceiling division
	chunkSize := (items + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}

		// Skip if there's no range to handle
		if start >= end {
			continue
		}

		g.Go(func() error {
			return fn(ctx, start, end)
		})
	}

	return g.Wait()
}

// ParallelizeWithThreshold runs fn sequentially over the whole range when
// items does not exceed threshold or only one worker is requested, and
// delegates to Parallelize otherwise.
func ParallelizeWithThreshold(ctx context.Context, items, threshold, workers int, fn func(ctx context.Context, start, end int) error) error {
	if items <= threshold || workers == 1 {
		if items == 0 {
			return nil
		}
		return fn(ctx, 0, items)
	}

	return Parallelize(ctx, items, workers, fn)
}
