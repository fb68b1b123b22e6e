package enrich

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// forEach runs fn for every key with at most limit calls in flight. fn
// errors are the caller's to record; only cancellation stops the pool.
func forEach[K any](ctx context.Context, limit int, keys []K, fn func(ctx context.Context, key K)) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, limit))

	for _, key := range keys {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			fn(gCtx, key)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
