package precompress

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool runs a fixed number of workers over a stream of work items
type Pool struct {
	limit   int
	process func(WorkItem) WorkResult
}

// NewPool creates a pool of limit workers, each calling process for the items
// it pulls. limit below one is treated as one.
func NewPool(limit int, process func(WorkItem) WorkResult) *Pool {
	if limit < 1 {
		limit = 1
	}
	return &Pool{limit: limit, process: process}
}

// Run starts the workers and returns the channel their results arrive on, in
// completion order. Workers pull one item at a time, so a producer blocked on
// an unbuffered items channel never gets ahead of the pool. Once ctx is done
// no new item is pulled; items already pulled still complete and report.
// The result channel is closed after every worker has returned.
func (p *Pool) Run(ctx context.Context, items <-chan WorkItem) <-chan WorkResult {
	results := make(chan WorkResult, p.limit)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < p.limit; i++ {
		g.Go(func() error {
			for {
				if gctx.Err() != nil {
					return nil
				}
				select {
				case <-gctx.Done():
					return nil
				case item, ok := <-items:
					if !ok {
						return nil
					}
					results <- p.process(item)
				}
			}
		})
	}

	go func() {
		_ = g.Wait()
		close(results)
	}()
	return results
}
