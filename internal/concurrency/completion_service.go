package concurrency

import (
	"sync"
	"time"
)

// completionResult is one settled future observed by a completionService:
// the task ID, its value/error, and whether it settled via cancellation.
type completionResult struct {
	taskID    string
	value     interface{}
	err       error
	cancelled bool
}

// completionService bounds how many of a pool's futures are "ours" at
// once. Its state is exactly spec.md §3's BoundedConcurrencyDriver state:
// `running` = futures dispatched but not yet observed complete;
// `completionQueue` = futures observed complete and not yet collected.
// submit uses the active-count bound (spec.md §9's resolved Open
// Question): len(running) < availableConcurrency, and additionally
// requires pool.CanAcceptWork() (see submit).
type completionService struct {
	pool                 *WorkerPool
	availableConcurrency int

	mu      sync.Mutex
	running map[string]*Future

	completionQueue chan completionResult
}

func newCompletionService(pool *WorkerPool, availableConcurrency int) *completionService {
	return &completionService{
		pool:                 pool,
		availableConcurrency: availableConcurrency,
		running:              make(map[string]*Future),
		// Buffered generously: a settled future must never block trying to
		// publish into the queue, or the driver and the pool's mediator
		// could deadlock on each other.
		completionQueue: make(chan completionResult, availableConcurrency+1),
	}
}

// inFlight returns the number of futures submitted by this service whose
// result has not yet been collected: those still running plus settled
// results waiting in the completion queue.
func (cs *completionService) inFlight() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.running) + len(cs.completionQueue)
}

// trySubmit peeks iter for a task and attempts to submit it. On success it
// consumes the task and returns true. On failure (no capacity) the task,
// if one was peeked, is pushed back onto iter and false is returned.
func (cs *completionService) trySubmit(iter *pushbackIterator) bool {
	task, ok := iter.Next()
	if !ok {
		return false
	}
	if !cs.submit(task) {
		iter.PushBack(task)
		return false
	}
	return true
}

// submit dispatches task to the pool iff inFlight < availableConcurrency
// and the pool itself still has room to accept work, wiring the resulting
// future's completion into the completion queue. The two checks are
// deliberately distinct: the first is this service's own accounting of
// work it has handed out; the second lets a pool that is saturated or
// shutting down reject a submission even when this service still has
// local headroom, which is what lets the driver tell "wait for one of my
// own tasks to finish" apart from "the executor itself is stalled".
// cs.mu is not held while calling into the pool: the pool settles futures
// while holding its own lock, and the completion callback takes cs.mu.
func (cs *completionService) submit(task Task) bool {
	cs.mu.Lock()
	full := len(cs.running) >= cs.availableConcurrency
	cs.mu.Unlock()
	if full || !cs.pool.CanAcceptWork() {
		return false
	}
	future := cs.pool.Submit(task)
	taskID := task.ID()
	cs.mu.Lock()
	cs.running[taskID] = future
	cs.mu.Unlock()

	future.OnComplete(func(value interface{}, err error, cancelled bool) {
		// Publish before leaving running, so inFlight counts the task until
		// the driver has collected its result.
		cs.completionQueue <- completionResult{taskID: taskID, value: value, err: err, cancelled: cancelled}
		cs.mu.Lock()
		delete(cs.running, taskID)
		cs.mu.Unlock()
	})
	return true
}

// awaitOrFail blocks up to timeout for one completed future, returning
// (result, true) if one arrived, or (zero, false) on timeout — "no
// completion" in spec.md §4.4's vocabulary.
func (cs *completionService) awaitOrFail(timeout time.Duration) (completionResult, bool) {
	select {
	case r := <-cs.completionQueue:
		return r, true
	case <-time.After(timeout):
		return completionResult{}, false
	}
}

// cancelAll cancels every future still running (best-effort, non-
// interrupting unless the host threads cancellation into the task body).
// mayInterruptIfRunning is accepted for interface symmetry but is not
// consulted: every future is settled as cancelled the same way, and its
// task is not stopped; the pool discards that task's result.
func (cs *completionService) cancelAll(mayInterruptIfRunning bool) {
	cs.mu.Lock()
	futures := make([]*Future, 0, len(cs.running))
	for _, f := range cs.running {
		futures = append(futures, f)
	}
	cs.mu.Unlock()
	for _, f := range futures {
		f.Cancel()
	}
}
