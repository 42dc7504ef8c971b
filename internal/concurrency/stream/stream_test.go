package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueIterator_PrefetchesFirstElementOnConstruction(t *testing.T) {
	queue := make(chan Entry, 1)
	queue <- "first"
	it := NewQueueIterator(queue, nil, 50*time.Millisecond)
	assert.False(t, it.Ended())

	var got []Entry
	ok := it.TryAdvance(func(e Entry) { got = append(got, e) })
	assert.True(t, ok)
	assert.Equal(t, []Entry{"first"}, got)
}

func TestQueueIterator_TombstoneEndsStreamYieldingItsOwnElementFirst(t *testing.T) {
	queue := make(chan Entry, 2)
	queue <- "only"
	queue <- Tombstone
	it := NewQueueIterator(queue, nil, 50*time.Millisecond)

	var got []Entry
	Drain(it, func(e Entry) { got = append(got, e) })
	assert.Equal(t, []Entry{"only"}, got)
	assert.True(t, it.Ended())
}

func TestQueueIterator_ImmediateTombstoneYieldsNoElements(t *testing.T) {
	queue := make(chan Entry, 1)
	queue <- Tombstone
	it := NewQueueIterator(queue, nil, 50*time.Millisecond)
	assert.True(t, it.Ended())

	var got []Entry
	ok := it.TryAdvance(func(e Entry) { got = append(got, e) })
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestQueueIterator_TimedOutPollIsTreatedAsEndOfStream(t *testing.T) {
	queue := make(chan Entry)
	it := NewQueueIterator(queue, nil, 10*time.Millisecond)
	assert.True(t, it.Ended())
}

func TestQueueIterator_ClosedQueueEndsStream(t *testing.T) {
	queue := make(chan Entry)
	close(queue)
	it := NewQueueIterator(queue, nil, 10*time.Millisecond)
	assert.True(t, it.Ended())
}

func TestQueueIterator_DrainConsumesEveryElementInOrder(t *testing.T) {
	queue := make(chan Entry, 4)
	queue <- 1
	queue <- 2
	queue <- 3
	queue <- Tombstone
	it := NewQueueIterator(queue, nil, 50*time.Millisecond)

	var got []Entry
	Drain(it, func(e Entry) { got = append(got, e) })
	assert.Equal(t, []Entry{1, 2, 3}, got)
}

func TestQueueIterator_TryAdvanceAfterEndReturnsFalse(t *testing.T) {
	queue := make(chan Entry, 1)
	queue <- Tombstone
	it := NewQueueIterator(queue, nil, 10*time.Millisecond)
	require.True(t, it.Ended())
	assert.False(t, it.TryAdvance(func(e Entry) {}))
}
