package dag

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunConcurrently launches every unit at once and waits for all of them.
// Results are returned in unit order regardless of completion order. A unit
// never cancels its siblings; units report failure through their result.
func RunConcurrently[T any](ctx context.Context, units []func(context.Context) T) []T {
	results := make([]T, len(units))
	if len(units) == 1 {
		results[0] = units[0](ctx)
		return results
	}

	var g errgroup.Group
	for i, unit := range units {
		g.Go(func() error {
			results[i] = unit(ctx)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
