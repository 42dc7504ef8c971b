// Package parallel provides the batch-size arithmetic and fan-out helpers
// that sit on top of the concurrency package's worker pool and
// bounded-concurrency driver (spec.md §4.5's C8). These are pure functions
// and small orchestration helpers; ParallelForEachNode starts one goroutine
// per range itself, and the others dispatch through a
// *concurrency.WorkerPool or run inline.
package parallel

import "math"

// ThreadCount returns how many batches of batchSize are needed to cover
// elementCount elements: ceil(elementCount/batchSize). batchSize must be
// >= 1. A batchSize at or beyond elementCount yields 1.
func ThreadCount(batchSize, elementCount int) int {
	if batchSize < 1 {
		batchSize = 1
	}
	if batchSize >= elementCount {
		return 1
	}
	return ceilDiv(elementCount, batchSize)
}

// AdjustedBatchSize returns the batch size that spreads nodeCount elements
// across concurrency batches, never going below minBatch.
func AdjustedBatchSize(nodeCount, concurrency, minBatch int) int {
	if concurrency < 1 {
		concurrency = 1
	}
	batch := ceilDiv(nodeCount, concurrency)
	if batch < minBatch {
		return minBatch
	}
	return batch
}

// AdjustedBatchSizeWithCap is AdjustedBatchSize clamped to maxBatch.
func AdjustedBatchSizeWithCap(nodeCount, concurrency, minBatch, maxBatch int) int {
	batch := AdjustedBatchSize(nodeCount, concurrency, minBatch)
	if batch > maxBatch {
		return maxBatch
	}
	return batch
}

// PowerOfTwoBatchSize rounds batchSize up to the next power of two (at
// least 1), then keeps doubling until ceil((nodeCount+batchSize+1)/batchSize)
// is positive and at most math.MaxInt32 — i.e. the resulting page/run count
// stays small enough that downstream arithmetic on it cannot overflow.
func PowerOfTwoBatchSize(nodeCount, batchSize int) int {
	size := nextPowerOfTwo(batchSize)
	for !runCountFits(nodeCount, size) {
		size *= 2
	}
	return size
}

func runCountFits(nodeCount, batchSize int) bool {
	runs := ceilDiv(nodeCount+batchSize+1, batchSize)
	return runs > 0 && runs <= math.MaxInt32
}

func nextPowerOfTwo(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}
