package paged

// ValueFunc maps a permutation entry (itself a value stored in the array
// being sorted) to the sort key used to order it.
type ValueFunc func(entry int64) int64

// IndirectMergeSort sorts a (array of length size so that
// (valueFn(a[0]), ..., valueFn(a[size-1])) is non-decreasing, using a
// bottom-up iterative merge sort with the auxiliary buffer aux (also
// length size). Single-threaded: the algorithm is memory-bound, and
// parallelising merges of overlapping paged buffers gains little in
// practice (spec.md §4.6).
//
// Stability: ties break by taking the left run's element first, so
// elements that compare equal keep their relative input order.
func IndirectMergeSort(a, aux *HugeLongArray, valueFn ValueFunc) {
	size := a.Size()
	if size < 2 {
		return
	}
	for run := 1; run < size; run *= 2 {
		for start := 0; start < size; start += 2 * run {
			mid := start + run
			if mid >= size {
				// No right run in this block; it is already sorted by the
				// previous pass (or trivially, at run==1) and left untouched.
				continue
			}
			end := mid + run
			if end > size {
				end = size
			}
			mergeRuns(a, aux, valueFn, start, mid, end)
			copyBack(a, aux, start, end)
		}
	}
}

// mergeRuns merges a[start:mid) and a[mid:end) into aux[start:end) via a
// standard two-finger merge.
func mergeRuns(a, aux *HugeLongArray, valueFn ValueFunc, start, mid, end int) {
	i, j, k := start, mid, start
	for i < mid && j < end {
		left := a.Get(i)
		right := a.Get(j)
		if valueFn(left) <= valueFn(right) {
			aux.Set(k, left)
			i++
		} else {
			aux.Set(k, right)
			j++
		}
		k++
	}
	for i < mid {
		aux.Set(k, a.Get(i))
		i++
		k++
	}
	for j < end {
		aux.Set(k, a.Get(j))
		j++
		k++
	}
}

func copyBack(a, aux *HugeLongArray, start, end int) {
	for i := start; i < end; i++ {
		a.Set(i, aux.Get(i))
	}
}
