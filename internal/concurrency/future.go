package concurrency

import (
	"context"
	"sync"
	"time"

	"dev.helix.gds/internal/errs"
)

type futureState int32

const (
	futurePending futureState = iota
	futureFulfilled
	futureRejected
	futureCancelled
)

// Future is a cancellable promise over {PENDING, FULFILLED, REJECTED,
// CANCELLED}. Terminal states are final; Cancel is idempotent and
// transitions PENDING -> CANCELLED exactly once. Completion observers
// registered before or after completion both fire exactly once.
type Future struct {
	mu       sync.Mutex
	state    futureState
	value    interface{}
	err      error
	done     chan struct{}
	watchers []func(interface{}, error, bool /* cancelled */)
}

// NewFuture constructs a pending Future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved returns an already-fulfilled Future.
func Resolved(v interface{}) *Future {
	f := NewFuture()
	f.resolve(v)
	return f
}

// Rejected returns an already-rejected Future.
func Rejected(err error) *Future {
	f := NewFuture()
	f.reject(err)
	return f
}

func (f *Future) resolve(v interface{}) bool {
	f.mu.Lock()
	if f.state != futurePending {
		f.mu.Unlock()
		return false
	}
	f.state = futureFulfilled
	f.value = v
	watchers := f.watchers
	f.watchers = nil
	close(f.done)
	f.mu.Unlock()
	for _, w := range watchers {
		w(v, nil, false)
	}
	return true
}

func (f *Future) reject(err error) bool {
	f.mu.Lock()
	if f.state != futurePending {
		f.mu.Unlock()
		return false
	}
	f.state = futureRejected
	f.err = err
	watchers := f.watchers
	f.watchers = nil
	close(f.done)
	f.mu.Unlock()
	for _, w := range watchers {
		w(nil, err, false)
	}
	return true
}

// Cancel transitions PENDING -> CANCELLED exactly once, returning true iff
// this call performed the transition. No effect on a terminal future.
func (f *Future) Cancel() bool {
	f.mu.Lock()
	if f.state != futurePending {
		f.mu.Unlock()
		return false
	}
	f.state = futureCancelled
	watchers := f.watchers
	f.watchers = nil
	close(f.done)
	f.mu.Unlock()
	for _, w := range watchers {
		w(nil, nil, true)
	}
	return true
}

// OnComplete registers a callback that fires exactly once: immediately (in
// the caller's goroutine) if the future has already settled, or when it
// next settles otherwise.
func (f *Future) OnComplete(cb func(value interface{}, err error, cancelled bool)) {
	f.mu.Lock()
	if f.state == futurePending {
		f.watchers = append(f.watchers, cb)
		f.mu.Unlock()
		return
	}
	value, err, state := f.value, f.err, f.state
	f.mu.Unlock()
	cb(value, err, state == futureCancelled)
}

// Get blocks until the future settles and returns its value, the
// "cancelled" error if Cancel won the race, or the rejection cause.
func (f *Future) Get(ctx context.Context) (interface{}, error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case futureFulfilled:
		return f.value, nil
	case futureRejected:
		return nil, f.err
	case futureCancelled:
		return nil, &errs.CancelledError{}
	default:
		panic("future.Get observed done channel closed while still pending")
	}
}

// IsDone reports whether the future has settled (any terminal state).
func (f *Future) IsDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// All resolves with the values in input order once every future has
// fulfilled, or rejects with the first observed rejection; peers are not
// cancelled on a sibling's failure.
func All(ctx context.Context, futures []*Future) ([]interface{}, error) {
	values := make([]interface{}, len(futures))
	for i, f := range futures {
		v, err := f.Get(ctx)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// Race returns the value/error of whichever future settles first.
func Race(ctx context.Context, futures []*Future) (interface{}, error) {
	type outcome struct {
		value interface{}
		err   error
	}
	out := make(chan outcome, len(futures))
	for _, f := range futures {
		f := f
		f.OnComplete(func(v interface{}, err error, cancelled bool) {
			if cancelled {
				err = &errs.CancelledError{}
			}
			select {
			case out <- outcome{v, err}:
			default:
			}
		})
	}
	select {
	case o := <-out:
		return o.value, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Delay returns a Future that resolves with v after d elapses.
func Delay(v interface{}, d time.Duration) *Future {
	f := NewFuture()
	go func() {
		time.Sleep(d)
		f.resolve(v)
	}()
	return f
}

// FromChan adapts a (value, error) producing channel pair into a Future,
// the Future-from-async-source combinator (fromPromise in spec.md's host
// vocabulary).
func FromChan(valueCh <-chan interface{}, errCh <-chan error) *Future {
	f := NewFuture()
	go func() {
		select {
		case v := <-valueCh:
			f.resolve(v)
		case err := <-errCh:
			f.reject(err)
		}
	}()
	return f
}
