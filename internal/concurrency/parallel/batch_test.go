package parallel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThreadCount_CeilsToWholeBatches(t *testing.T) {
	assert.Equal(t, 4, ThreadCount(10, 31))
	assert.Equal(t, 3, ThreadCount(10, 30))
}

func TestThreadCount_BatchAtOrAboveElementCountYieldsOne(t *testing.T) {
	assert.Equal(t, 1, ThreadCount(100, 10))
	assert.Equal(t, 1, ThreadCount(10, 10))
}

func TestThreadCount_ClampsBatchSizeBelowOne(t *testing.T) {
	assert.Equal(t, 5, ThreadCount(0, 5))
}

func TestAdjustedBatchSize_SpreadsEvenly(t *testing.T) {
	assert.Equal(t, 25, AdjustedBatchSize(100, 4, 1))
}

func TestAdjustedBatchSize_NeverGoesBelowMinBatch(t *testing.T) {
	assert.Equal(t, 10, AdjustedBatchSize(5, 4, 10))
}

func TestAdjustedBatchSize_ClampsConcurrencyBelowOne(t *testing.T) {
	assert.Equal(t, 5, AdjustedBatchSize(5, 0, 1))
}

func TestAdjustedBatchSizeWithCap_ClampsToMax(t *testing.T) {
	assert.Equal(t, 20, AdjustedBatchSizeWithCap(100, 2, 1, 20))
}

func TestAdjustedBatchSizeWithCap_UnaffectedWhenBelowCap(t *testing.T) {
	assert.Equal(t, 25, AdjustedBatchSizeWithCap(100, 4, 1, 1000))
}

func TestPowerOfTwoBatchSize_RoundsUpToPowerOfTwo(t *testing.T) {
	assert.Equal(t, 16, PowerOfTwoBatchSize(100, 10))
	assert.Equal(t, 1, PowerOfTwoBatchSize(10, 0))
}

func TestPowerOfTwoBatchSize_ResultIsAlwaysAPowerOfTwo(t *testing.T) {
	for _, nodeCount := range []int{0, 1, 7, 1000, 1 << 20} {
		for _, batchSize := range []int{1, 3, 17, 1024} {
			size := PowerOfTwoBatchSize(nodeCount, batchSize)
			assert.Equal(t, 0, size&(size-1), "size %d for nodeCount=%d batchSize=%d is not a power of two", size, nodeCount, batchSize)
			assert.GreaterOrEqual(t, size, batchSize)
		}
	}
}
