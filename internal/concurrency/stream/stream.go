// Package stream implements the queue-backed streaming iterator of
// spec.md §4.9 (C11): a tombstone-terminated consumer of a blocking queue
// that polls with a bounded timeout and treats a timed-out poll as
// end-of-stream, bounding how long a misbehaving producer can wedge a
// consumer.
package stream

import (
	"time"

	conc "dev.helix.gds/internal/concurrency"
)

// Tombstone is the sentinel value a producer sends to signal that no more
// elements will arrive. Any value equal to Tombstone ends the stream.
var Tombstone = struct{ tombstone bool }{tombstone: true}

// Entry is one element carried by a QueueIterator: either a value or the
// Tombstone sentinel.
type Entry = interface{}

// QueueIterator consumes a channel-backed queue of Entry until it
// observes Tombstone or a poll times out. It is not safe for concurrent
// use by multiple consumer goroutines (spec.md's "queue-backed iterator
// state": one pre-fetched entry, a termination flag, a per-poll timeout).
type QueueIterator struct {
	queue     <-chan Entry
	flag      conc.TerminationFlag
	timeout   time.Duration
	prefetch  Entry
	hasEntry  bool
	ended     bool
}

// NewQueueIterator constructs a QueueIterator over queue, pre-fetching the
// first element with the given per-poll timeout (spec.md §4.9: "on
// construction, pre-fetches the first element via queue.poll(timeout)").
func NewQueueIterator(queue <-chan Entry, flag conc.TerminationFlag, timeout time.Duration) *QueueIterator {
	if flag == nil {
		flag = conc.RunningTrue
	}
	it := &QueueIterator{queue: queue, flag: flag, timeout: timeout}
	it.prefetch, it.hasEntry = it.poll()
	if !it.hasEntry || it.prefetch == Tombstone {
		it.ended = true
	}
	return it
}

func (it *QueueIterator) poll() (Entry, bool) {
	select {
	case v, ok := <-it.queue:
		if !ok {
			return nil, false
		}
		return v, true
	case <-time.After(it.timeout):
		return nil, false
	}
}

// TryAdvance invokes action with the next entry and advances the stream,
// returning false once the stream has ended (tombstone observed, the
// underlying queue closed, or a poll timed out) — spec.md §4.9's
// tryAdvance contract. Splitting is unsupported (there is no TrySplit);
// size estimate is always "unknown" and the iterator's characteristic is
// "non-null", both implicit in this API's shape rather than modeled as
// explicit methods.
func (it *QueueIterator) TryAdvance(action func(Entry)) bool {
	if it.ended {
		return false
	}
	if err := conc.AssertRunning(it.flag); err != nil {
		it.ended = true
		return false
	}

	entry := it.prefetch
	action(entry)

	next, ok := it.poll()
	if !ok || next == Tombstone {
		it.ended = true
		it.hasEntry = false
		return true
	}
	it.prefetch = next
	return true
}

// Ended reports whether the stream has terminated.
func (it *QueueIterator) Ended() bool { return it.ended }

// Drain consumes the remaining stream, invoking action for each entry.
func Drain(it *QueueIterator, action func(Entry)) {
	for it.TryAdvance(action) {
	}
}
