// Package batch fans extraction requests out across a bounded worker pool,
// preserving input order in the output and isolating per-item failures.
package batch

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/docsift/docsift/internal/extract"
)

// Outcome is the per-item result of a batch: either a Result or an error,
// never both. Batches always return one Outcome per input request.
type Outcome struct {
	Result *extract.Result
	Err    error
}

// ItemFunc processes one request. It must observe ctx cancellation at its
// own stage boundaries; the coordinator only checks before starting an item.
type ItemFunc func(ctx context.Context, req extract.Request) (*extract.Result, error)

// Run executes fn for every request with at most workers in flight and
// returns outcomes in input order regardless of completion order. One item's
// failure never aborts its siblings. When ctx is cancelled or times out,
// items not yet started report ErrCancelled or ErrTimeout.
func Run(ctx context.Context, requests []extract.Request, workers int, fn ItemFunc) []Outcome {
	outcomes := make([]Outcome, len(requests))
	if len(requests) == 0 {
		return outcomes
	}
	if workers <= 0 {
		workers = 1
	}
	batchID := uuid.NewString()
	log.Debug().Str("batch", batchID).Int("items", len(requests)).Int("workers", workers).Msg("batch start")

	// errgroup bounds parallelism; item errors are recorded per slot rather
	// than returned, so no failure cancels the group.
	g := &errgroup.Group{}
	g.SetLimit(workers)
	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = Outcome{Err: mapCtxErr(err)}
				return nil
			}
			r, err := fn(ctx, req)
			if err != nil {
				log.Debug().Str("batch", batchID).Int("item", i).Err(err).Msg("item failed")
				outcomes[i] = Outcome{Err: err}
				return nil
			}
			outcomes[i] = Outcome{Result: r}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func mapCtxErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return extract.ErrTimeout
	}
	return extract.ErrCancelled
}
