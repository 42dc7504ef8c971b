// Package atomicx provides the low-level atomic primitives the
// concurrency core's parallel loops and pools are built on: a
// false-sharing-padded counter, CAS-loop update helpers, a spin-wait, and
// an at-most-once latch flag.
package atomicx

import "sync/atomic"

// PaddedCounter is a single int64 isolated within its own cache line. Real
// CPUs fetch cache lines in 64-byte chunks; without padding, a counter that
// sits next to another hot field suffers false sharing — every write to
// either field invalidates the other core's cached line. Seven int64
// padding fields (56 bytes) plus the 8-byte value fill a 64-byte line.
type PaddedCounter struct {
	value atomic.Int64
	_p0   int64
	_p1   int64
	_p2   int64
	_p3   int64
	_p4   int64
	_p5   int64
	_p6   int64
}

// sum references every padding field so the compiler cannot prove they are
// dead and strip them, which would collapse the padding and reintroduce
// false sharing.
func (c *PaddedCounter) sum() int64 {
	return c._p0 + c._p1 + c._p2 + c._p3 + c._p4 + c._p5 + c._p6
}

// Load returns the current value.
func (c *PaddedCounter) Load() int64 { return c.value.Load() }

// Store sets the value unconditionally.
func (c *PaddedCounter) Store(v int64) { c.value.Store(v) }

// CompareAndSwap performs a linearisable CAS.
func (c *PaddedCounter) CompareAndSwap(old, new int64) bool {
	return c.value.CompareAndSwap(old, new)
}

// Add adds delta and returns the new value.
func (c *PaddedCounter) Add(delta int64) int64 { return c.value.Add(delta) }

// Sub subtracts delta and returns the new value.
func (c *PaddedCounter) Sub(delta int64) int64 { return c.value.Add(-delta) }

// GetAndSet stores v and returns the previous value.
func (c *PaddedCounter) GetAndSet(v int64) int64 { return c.value.Swap(v) }

// GetAndAdd adds delta and returns the value prior to the add.
func (c *PaddedCounter) GetAndAdd(delta int64) int64 {
	return c.value.Add(delta) - delta
}

// IncrementAndGet is Add(1).
func (c *PaddedCounter) IncrementAndGet() int64 { return c.Add(1) }

// DecrementAndGet is Sub(1).
func (c *PaddedCounter) DecrementAndGet() int64 { return c.Sub(1) }

// Debug exposes the anti-dead-code-elimination sum for tests that want to
// assert the padding fields remain live without reaching into unexported
// state directly.
func (c *PaddedCounter) Debug() int64 { return c.sum() }
