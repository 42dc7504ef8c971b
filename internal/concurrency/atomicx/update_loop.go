package atomicx

// UpdateLoop reads cell with acquire semantics, computes updateFn(current),
// and CASes the result in, retrying on contention. It returns the value the
// cell held immediately before the successful CAS (the "previous value").
func UpdateLoop(cell *PaddedCounter, updateFn func(current int64) int64) int64 {
	for {
		current := cell.Load()
		next := updateFn(current)
		if cell.CompareAndSwap(current, next) {
			return current
		}
	}
}

// SpinWait polls cell until it observes expected, returning true, or until
// the number of failed observations exceeds maxAttempts, returning false.
// maxAttempts == -1 means unbounded (spin forever until the value
// matches). Each failed iteration yields the goroutine briefly via a
// runtime.Gosched-equivalent so other goroutines on the same OS thread can
// make progress.
func SpinWait(cell *PaddedCounter, expected int64, maxAttempts int) bool {
	attempts := 0
	for {
		if cell.Load() == expected {
			return true
		}
		if maxAttempts >= 0 {
			attempts++
			if attempts > maxAttempts {
				return false
			}
		}
		yield()
	}
}
