// Package workerpool runs bounded fan-out phases and joins their results back
// by submission index.
package workerpool

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pool bounds how many items of one Process call run at the same time.
// A Pool holds no goroutines between calls and is safe to share.
type Pool struct {
	name          string
	maxConcurrent int
	logger        *zap.Logger
}

// New creates a pool. maxConcurrent < 1 means one goroutine per item.
func New(name string, maxConcurrent int, logger *zap.Logger) *Pool {
	return &Pool{
		name:          name,
		maxConcurrent: maxConcurrent,
		logger:        logger.Named("workerpool." + name),
	}
}

// Item is one unit of work.
type Item[T any] struct {
	ID      string // For logging
	Execute func(ctx context.Context) (T, error)
}

// Result is the outcome of the item at the same index.
type Result[T any] struct {
	ID    string
	Value T
	Err   error
}

// Process runs every item and blocks until all of them finish. Results[i]
// always belongs to items[i], regardless of completion order. A failing item
// does not cancel its siblings; items not yet started when ctx is done report
// ctx.Err().
func Process[T any](ctx context.Context, p *Pool, items []Item[T]) []Result[T] {
	if len(items) == 0 {
		return nil
	}

	start := time.Now()
	results := make([]Result[T], len(items))

	var g errgroup.Group
	if p.maxConcurrent > 0 {
		g.SetLimit(p.maxConcurrent)
	}

	for i, item := range items {
		results[i].ID = item.ID
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Value, results[i].Err = item.Execute(ctx)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	p.logger.Debug("Fan-out complete",
		zap.Int("items", len(items)),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)))

	return results
}
