// Package scan implements the concurrent usage scan engine: a parallel tree
// walk that classifies every regular file into a usage category, aggregates
// per-category byte totals, and keeps the largest files per category.
package scan

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
)

// task is one unit of work: a disjoint subtree owned by exactly one worker.
// Work is partitioned by the top-level directory entries of each scan root,
// so workers never share a traversal frontier.
type task struct {
	path    string
	isDir   bool
	rootDev uint64
}

// Paths scans the given roots and returns the aggregated result. Setup
// errors (a bad thread count) abort before traversal; per-entry errors
// during traversal never do. Cancelling ctx stops the walk early and
// returns the partial result with Cancelled set.
func Paths(ctx context.Context, roots []string, cfg *Config) (*Result, error) {
	return PathsWithProgress(ctx, roots, cfg, nil)
}

// PathsWithProgress is Paths with an optional progress sink. Each worker
// sends the size of every file it stats as a byte delta, so the consumer
// can accumulate throughput without contention. The channel is never closed
// by the scanner; multiple workers send on it concurrently until the call
// returns.
func PathsWithProgress(ctx context.Context, roots []string, cfg *Config, progress chan<- int64) (*Result, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	threads, err := cfg.threadCount()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	topK := cfg.effectiveTopK()

	// The setup accumulator owns the roots themselves; each top-level
	// entry below a root becomes a task with its own accumulator.
	setupAcc := newAccumulator(topK)
	setupWalker := &walker{cfg: cfg, acc: setupAcc, progress: progress}

	var tasks []task
	for _, root := range roots {
		root = filepath.Clean(root)
		info, err := os.Lstat(root)
		if err != nil {
			setupAcc.dirs++
			setupAcc.skipped++
			continue
		}
		if !info.IsDir() {
			setupWalker.visitFile(ctx, root, info)
			continue
		}
		setupAcc.dirs++
		dev, _ := deviceID(info)
		if !setupWalker.canSearch(info) {
			setupAcc.skipped++
			continue
		}
		entries, err := os.ReadDir(root)
		if err != nil {
			setupAcc.skipped++
			continue
		}
		for _, de := range entries {
			tasks = append(tasks, task{
				path:    filepath.Join(root, de.Name()),
				isDir:   de.IsDir(),
				rootDev: dev,
			})
		}
	}

	// One accumulator per task, indexed by task order, so the merge sees
	// a deterministic sequence regardless of scheduling.
	accs := make([]*accumulator, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i, t := range tasks {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			acc := newAccumulator(topK)
			accs[i] = acc
			w := &walker{cfg: cfg, rootDev: t.rootDev, acc: acc, progress: progress}
			w.run(gctx, t.path, t.isDir)
			return nil
		})
	}
	// Workers never return errors; Wait is purely a join point.
	_ = g.Wait()

	res := merge(append([]*accumulator{setupAcc}, accs...), topK)
	res.MountsScanned = len(roots)
	res.ElapsedMs = time.Since(start).Milliseconds()
	res.Cancelled = ctx.Err() != nil
	return res, nil
}
