package paged

import (
	"context"
	"strconv"

	conc "dev.helix.gds/internal/concurrency"
)

// Generator computes the value stored at globalIndex.
type Generator func(globalIndex int) int64

// Identity is the canonical generator mapping i to i.
func Identity(globalIndex int) int64 { return int64(globalIndex) }

// CreateParallel allocates a HugeLongArray of size with the given
// pageShift and fills every page via generator, running the fill for
// pages [0, P-2] through the bounded-concurrency driver with the given
// concurrency, and filling the last page on the calling goroutine to
// avoid a straggler single-page submission (spec.md §4.7). A nil
// generator leaves every page untouched (the "pass-through" factory).
func CreateParallel(concurrency conc.Concurrency, size int, pageShift uint, pool *conc.WorkerPool, generator Generator) (*HugeLongArray, error) {
	arr, err := NewHugeLongArray(size, pageShift)
	if err != nil {
		return nil, err
	}
	if generator == nil {
		return arr, nil
	}

	lastPage := arr.PageCount() - 1
	if lastPage < 0 {
		return arr, nil
	}

	if lastPage == 0 || !executorUsable(pool) {
		for p := 0; p <= lastPage; p++ {
			fillPage(arr, p, generator)
		}
		return arr, nil
	}

	tasks := make([]conc.Task, lastPage)
	for p := 0; p < lastPage; p++ {
		p := p
		tasks[p] = conc.NewTaskFunc(pageTaskID(p), func(ctx context.Context) (interface{}, error) {
			fillPage(arr, p, generator)
			return nil, nil
		})
	}

	cfg, err := conc.NewDriverConfig(concurrency, conc.NewSliceTaskIterator(tasks))
	if err != nil {
		return nil, err
	}
	cfg.Executor = pool
	cfg.ForceUsageOfExecutor = true
	if _, err := conc.RunWithConcurrency(cfg); err != nil {
		return nil, err
	}

	fillPage(arr, lastPage, generator)
	return arr, nil
}

func fillPage(arr *HugeLongArray, pageIndex int, generator Generator) {
	page := arr.Page(pageIndex)
	base := arr.BaseOf(pageIndex)
	for i := range page {
		page[i] = generator(base + i)
	}
}

func pageTaskID(p int) string {
	return "page-fill-" + strconv.Itoa(p)
}

func executorUsable(pool *conc.WorkerPool) bool {
	return pool != nil && !pool.IsShutdown() && !pool.IsTerminated()
}
