package parallel

import (
	"sync"

	conc "dev.helix.gds/internal/concurrency"
	"dev.helix.gds/internal/errs"
)

// Range is a half-open [Start, End) span of node IDs assigned to one
// worker of a partitioned fan-out.
type Range struct {
	Start, End int
}

// partitionRanges splits [0, nodeCount) into at most concurrency
// contiguous, roughly-equal ranges. Never returns more ranges than there
// are elements.
func partitionRanges(nodeCount, concurrency int) []Range {
	if concurrency < 1 {
		concurrency = 1
	}
	if nodeCount <= 0 {
		return nil
	}
	batch := AdjustedBatchSize(nodeCount, concurrency, 1)
	ranges := make([]Range, 0, ThreadCount(batch, nodeCount))
	for start := 0; start < nodeCount; start += batch {
		end := start + batch
		if end > nodeCount {
			end = nodeCount
		}
		ranges = append(ranges, Range{Start: start, End: end})
	}
	return ranges
}

// ParallelForEachNode partitions [0, nodeCount) into concurrency.Value()
// contiguous ranges and invokes consumer(id) for every id in every range,
// each range running on its own goroutine. It blocks until every range
// finishes (or the termination flag trips), and chains every consumer
// error into one composite error (spec.md §4.5).
func ParallelForEachNode(nodeCount int, concurrency conc.Concurrency, flag conc.TerminationFlag, consumer func(id int) error) error {
	ranges := partitionRanges(nodeCount, concurrency.Value())
	if len(ranges) == 0 {
		return nil
	}
	if flag == nil {
		flag = conc.RunningTrue
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var composite *errs.CompositeError

	for _, r := range ranges {
		r := r
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := flag.AssertRunning(); err != nil {
				mu.Lock()
				composite = errs.AppendError(composite, err)
				mu.Unlock()
				return
			}
			for id := r.Start; id < r.End; id++ {
				if err := consumer(id); err != nil {
					mu.Lock()
					composite = errs.AppendError(composite, err)
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if composite != nil {
		return composite
	}
	return nil
}
