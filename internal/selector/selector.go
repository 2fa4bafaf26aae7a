// Package selector implements the three root-selection policies of spec.md
// §4.3: sequential, concurrent, and latest_modified. It guarantees
// at-most-one returned handle and that every losing probe's handle is
// closed before control returns to the caller.
package selector

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/finch-xu/filehunter/internal/config"
	"github.com/finch-xu/filehunter/internal/resolve"
	"github.com/finch-xu/filehunter/internal/sanitize"
)

// ErrNotFound is returned when no eligible root yields a file, or when no
// root is eligible at all (spec.md §4.3: "no root was even eligible" also
// degrades to NotFound).
var ErrNotFound = errors.New("selector: not found")

// Select runs the roots eligible for rel (already extension-filtered by the
// caller) under mode and returns at most one winning OpenFile.
func Select(ctx context.Context, mode config.Mode, roots []config.RootSpec, rel sanitize.RelPath, maxFileSize int64) (*resolve.OpenFile, error) {
	if len(roots) == 0 {
		return nil, ErrNotFound
	}

	switch mode {
	case config.Concurrent:
		return selectConcurrent(ctx, roots, rel, maxFileSize)
	case config.LatestModified:
		return selectLatestModified(ctx, roots, rel, maxFileSize)
	default:
		return selectSequential(ctx, roots, rel, maxFileSize)
	}
}

// selectSequential probes roots in configuration order. A probe that fails
// for any reason (NotFound, Denied, Broken) advances to the next root
// instead of masking it; only success short-circuits.
func selectSequential(ctx context.Context, roots []config.RootSpec, rel sanitize.RelPath, maxFileSize int64) (*resolve.OpenFile, error) {
	for _, root := range roots {
		of, err := resolve.Probe(ctx, root, rel, maxFileSize)
		if err == nil {
			return of, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, ErrNotFound
}

type probeResult struct {
	of  *resolve.OpenFile
	err error
}

// selectConcurrent launches all probes in parallel; the first success wins
// and cancels the rest. Handles produced by late-arriving losers are closed
// without ever being handed to the streamer.
func selectConcurrent(ctx context.Context, roots []config.RootSpec, rel sanitize.RelPath, maxFileSize int64) (*resolve.OpenFile, error) {
	probeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan probeResult, len(roots))
	var wg sync.WaitGroup
	wg.Add(len(roots))
	for _, root := range roots {
		root := root
		go func() {
			defer wg.Done()
			of, err := resolve.Probe(probeCtx, root, rel, maxFileSize)
			results <- probeResult{of: of, err: err}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var winner *resolve.OpenFile
	for res := range results {
		if res.err == nil && winner == nil {
			winner = res.of
			cancel() // stop the remaining probes; their handles, if any, are closed below
			continue
		}
		if res.of != nil {
			res.of.Close()
		}
	}

	if winner == nil {
		return nil, ErrNotFound
	}
	return winner, nil
}

// selectLatestModified waits for every probe to finish (no early exit), then
// picks the success with the greatest ModTime; ties favor the earlier root.
func selectLatestModified(ctx context.Context, roots []config.RootSpec, rel sanitize.RelPath, maxFileSize int64) (*resolve.OpenFile, error) {
	g, gctx := errgroup.WithContext(ctx)
	opened := make([]*resolve.OpenFile, len(roots))

	for i, root := range roots {
		i, root := i, root
		g.Go(func() error {
			of, err := resolve.Probe(gctx, root, rel, maxFileSize)
			if err != nil {
				return nil // non-success is ignored, never aborts the group
			}
			opened[i] = of
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, of := range opened {
			of.Close()
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		for _, of := range opened {
			of.Close()
		}
		return nil, err
	}

	winner := -1
	for i, of := range opened {
		if of == nil {
			continue
		}
		if winner == -1 || of.ModTime.After(opened[winner].ModTime) {
			winner = i
		}
	}

	if winner == -1 {
		return nil, ErrNotFound
	}

	for i, of := range opened {
		if i != winner && of != nil {
			of.Close()
		}
	}

	return opened[winner], nil
}
