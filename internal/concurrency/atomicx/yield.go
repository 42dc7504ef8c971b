package atomicx

import "runtime"

// yield hands the processor to another goroutine without parking this one,
// used by SpinWait's bounded busy-loop.
func yield() {
	runtime.Gosched()
}
