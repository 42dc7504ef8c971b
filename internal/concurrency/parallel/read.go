package parallel

import (
	"context"

	conc "dev.helix.gds/internal/concurrency"
)

// BiConsumer processes one [start, end) range, e.g. scanning that slice of
// a page-backed array.
type BiConsumer func(start, end int) error

// ReadParallel partitions [0, size) into concurrency.Value() ranges, each
// batch = ceil(size/concurrency) wide, and applies consume to every range
// (spec.md §4.5's `readParallel`). If pool is unusable or concurrency is
// 1, ranges are visited sequentially on the calling goroutine instead.
func ReadParallel(ctx context.Context, concurrency conc.Concurrency, size int, pool *conc.WorkerPool, consume BiConsumer) error {
	if size <= 0 {
		return nil
	}
	ranges := partitionRanges(size, concurrency.Value())

	if !executorUsable(pool) || concurrency.Value() == 1 {
		for _, r := range ranges {
			if err := consume(r.Start, r.End); err != nil {
				return err
			}
		}
		return nil
	}

	tasks := make([]conc.Task, len(ranges))
	for i, r := range ranges {
		r := r
		tasks[i] = conc.NewTaskFunc(taskID("read-parallel", i), func(ctx context.Context) (interface{}, error) {
			return nil, consume(r.Start, r.End)
		})
	}
	_, err := Run(ctx, tasks, pool, false)
	return err
}

func executorUsable(pool *conc.WorkerPool) bool {
	return pool != nil && !pool.IsShutdown() && !pool.IsTerminated()
}
