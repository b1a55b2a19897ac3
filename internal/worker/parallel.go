// Package worker provides a helper for running request-scoped work
// concurrently with per-task failure isolation.
package worker

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunParallelWithResults executes multiple functions concurrently and collects
// their results. The returned slices are aligned with funcs: errs[i] is the
// error from funcs[i] (nil on success), so callers can isolate failures
// per task instead of failing the whole batch.
func RunParallelWithResults[T any](ctx context.Context, funcs []func(ctx context.Context) (T, error)) ([]T, []error) {
	if len(funcs) == 0 {
		return nil, nil
	}

	results := make([]T, len(funcs))
	errs := make([]error, len(funcs))

	g, ctx := errgroup.WithContext(ctx)
	for i, fn := range funcs {
		g.Go(func() error {
			// Errors stay in the aligned slice; the group never fails,
			// so sibling tasks always run to completion.
			results[i], errs[i] = fn(ctx)
			return nil
		})
	}
	_ = g.Wait()

	return results, errs
}
