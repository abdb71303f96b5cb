// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package parallel scans batches of files over a bounded worker pool.
// Per-item detection is synchronous; concurrency lives here, at the batch
// boundary, so the engine itself stays free of locking.
package parallel

import (
	"context"
	"runtime"
	"sync"

	"scrub-scan/internal/detector"
	"scrub-scan/internal/observability"
)

// ScanFunc produces a report for one file path.
type ScanFunc func(ctx context.Context, path string) (*detector.Report, error)

// FileResult pairs a path with its report or failure.
type FileResult struct {
	Path   string
	Report *detector.Report
	Err    error
}

// Pool runs scans with a fixed number of workers.
type Pool struct {
	workers  int
	observer *observability.StandardObserver
}

// NewPool creates a pool. A non-positive worker count uses GOMAXPROCS.
func NewPool(workers int, observer *observability.StandardObserver) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: workers, observer: observer}
}

// ScanFiles runs fn over every path and returns results in input order.
// A failing file records its error and does not stop the batch. The
// context cancels queued work, but items already running finish.
func (p *Pool) ScanFiles(ctx context.Context, paths []string, fn ScanFunc) []FileResult {
	finish := p.observer.StartTiming("parallel", "scan_files")

	results := make([]FileResult, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				report, err := fn(ctx, paths[i])
				results[i] = FileResult{Path: paths[i], Report: report, Err: err}
			}
		}()
	}

	cancelled := 0
dispatch:
	for i := range paths {
		select {
		case <-ctx.Done():
			for j := i; j < len(paths); j++ {
				results[j] = FileResult{Path: paths[j], Err: ctx.Err()}
				cancelled++
			}
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	finish(cancelled == 0, map[string]any{
		"files":     len(paths),
		"workers":   p.workers,
		"cancelled": cancelled,
	})
	return results
}
