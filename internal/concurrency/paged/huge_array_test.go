package paged

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHugeLongArray_PageLayout(t *testing.T) {
	// Scenario 6 (spec.md §8): P=4 pages, pageShift=4 (pageSize 16), final
	// page carries the 58-16*3=10 leftover elements.
	arr, err := NewHugeLongArray(58, 4)
	require.NoError(t, err)
	assert.Equal(t, 58, arr.Size())
	assert.Equal(t, 4, arr.PageCount())
	assert.Equal(t, 16, arr.PageSize())
	assert.Equal(t, 10, arr.LastPageSize())
	assert.Len(t, arr.Page(3), 10)
	assert.Len(t, arr.Page(0), 16)
}

func TestNewHugeLongArray_ExactMultipleOfPageSize(t *testing.T) {
	arr, err := NewHugeLongArray(32, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, arr.PageCount())
	assert.Equal(t, 16, arr.LastPageSize())
}

func TestNewHugeLongArray_DefaultsPageShiftWhenZero(t *testing.T) {
	arr, err := NewHugeLongArray(10, 0)
	require.NoError(t, err)
	assert.Equal(t, uint(14), arr.PageShift())
	assert.Equal(t, 1, arr.PageCount())
}

func TestNewHugeLongArray_RejectsNegativeSize(t *testing.T) {
	_, err := NewHugeLongArray(-1, 4)
	assert.Error(t, err)
}

func TestHugeLongArray_GetSetRoundTripsAcrossPageBoundary(t *testing.T) {
	arr, err := NewHugeLongArray(58, 4)
	require.NoError(t, err)
	for i := 0; i < arr.Size(); i++ {
		arr.Set(i, int64(i*7))
	}
	for i := 0; i < arr.Size(); i++ {
		assert.Equal(t, int64(i*7), arr.Get(i))
	}
}

func TestHugeLongArray_BaseOfMatchesPageIndex(t *testing.T) {
	arr, err := NewHugeLongArray(58, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, arr.BaseOf(0))
	assert.Equal(t, 16, arr.BaseOf(1))
	assert.Equal(t, 48, arr.BaseOf(3))
}
