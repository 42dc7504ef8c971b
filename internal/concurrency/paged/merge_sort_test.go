package paged

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// knuthMultiplicativeHash is the key function spec.md §8 Scenario 5 names:
// f(i) = (i * 2654435761) mod 2^32, evaluated as native uint32 wraparound.
func knuthMultiplicativeHash(entry int64) int64 {
	return int64(uint32(entry) * uint32(2654435761))
}

// Scenario 5 (spec.md §8): indirect sort correctness. A = [0..7] sorted by
// the Knuth multiplicative hash must match a plain stable sort of the same
// permutation by the same key.
func TestIndirectMergeSort_MatchesReferenceStableSortOfPermutation(t *testing.T) {
	const n = 8
	a, err := NewHugeLongArray(n, 4)
	require.NoError(t, err)
	aux, err := NewHugeLongArray(n, 4)
	require.NoError(t, err)

	entries := make([]int64, n)
	for i := 0; i < n; i++ {
		entries[i] = int64(i)
		a.Set(i, int64(i))
	}

	IndirectMergeSort(a, aux, knuthMultiplicativeHash)

	sort.SliceStable(entries, func(i, j int) bool {
		return knuthMultiplicativeHash(entries[i]) < knuthMultiplicativeHash(entries[j])
	})

	got := make([]int64, n)
	for i := 0; i < n; i++ {
		got[i] = a.Get(i)
	}
	assert.Equal(t, entries, got)

	for i := 1; i < n; i++ {
		assert.LessOrEqual(t, knuthMultiplicativeHash(a.Get(i-1)), knuthMultiplicativeHash(a.Get(i)))
	}
}

func TestIndirectMergeSort_AlreadySortedIsNoOp(t *testing.T) {
	a, err := NewHugeLongArray(5, 4)
	require.NoError(t, err)
	aux, err := NewHugeLongArray(5, 4)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		a.Set(i, int64(i))
	}
	IndirectMergeSort(a, aux, func(v int64) int64 { return v })
	for i := 0; i < 5; i++ {
		assert.Equal(t, int64(i), a.Get(i))
	}
}

func TestIndirectMergeSort_StableOnEqualKeys(t *testing.T) {
	a, err := NewHugeLongArray(4, 4)
	require.NoError(t, err)
	aux, err := NewHugeLongArray(4, 4)
	require.NoError(t, err)
	// All four entries share key 0; order must be preserved.
	a.Set(0, 10)
	a.Set(1, 11)
	a.Set(2, 12)
	a.Set(3, 13)
	IndirectMergeSort(a, aux, func(v int64) int64 { return 0 })
	assert.Equal(t, []int64{10, 11, 12, 13}, []int64{a.Get(0), a.Get(1), a.Get(2), a.Get(3)})
}

func TestIndirectMergeSort_SizeLessThanTwoIsNoOp(t *testing.T) {
	a, err := NewHugeLongArray(1, 4)
	require.NoError(t, err)
	aux, err := NewHugeLongArray(1, 4)
	require.NoError(t, err)
	a.Set(0, 99)
	IndirectMergeSort(a, aux, func(v int64) int64 { return v })
	assert.Equal(t, int64(99), a.Get(0))

	empty, err := NewHugeLongArray(0, 4)
	require.NoError(t, err)
	emptyAux, err := NewHugeLongArray(0, 4)
	require.NoError(t, err)
	assert.NotPanics(t, func() { IndirectMergeSort(empty, emptyAux, func(v int64) int64 { return v }) })
}

func TestIndirectMergeSort_AcrossMultiplePages(t *testing.T) {
	const n = 58 // spans 4 pages at pageShift=4, matching Scenario 6's layout.
	a, err := NewHugeLongArray(n, 4)
	require.NoError(t, err)
	aux, err := NewHugeLongArray(n, 4)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		a.Set(i, int64(n-1-i)) // reverse order
	}
	IndirectMergeSort(a, aux, func(v int64) int64 { return v })
	for i := 0; i < n; i++ {
		assert.Equal(t, int64(i), a.Get(i))
	}
}
