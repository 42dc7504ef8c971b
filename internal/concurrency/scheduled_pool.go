package concurrency

import (
	"sync"
	"time"
)

// ScheduledFuture is a Future whose dispatch was deferred by a timer. Its
// Cancel additionally stops the pending timer before it ever fires. Values
// is non-nil only for a future returned by ScheduleAtFixedRate, where it
// reports every tick's result observed so far (the periodic variant has no
// single terminal value, unlike a one-shot Schedule).
type ScheduledFuture struct {
	*Future
	Values    func() []interface{}
	stopTimer func() bool
}

// Cancel stops the pending timer (if it has not yet fired) and cancels the
// underlying future.
func (sf *ScheduledFuture) Cancel() bool {
	sf.stopTimer()
	return sf.Future.Cancel()
}

// ScheduledPool extends a WorkerPool with delay and fixed-rate scheduling
// (spec.md §4.10, C12). It owns no workers of its own; every fired timer
// submits its task to the embedded pool.
type ScheduledPool struct {
	*WorkerPool

	mu     sync.Mutex
	timers map[*time.Timer]struct{}
}

// NewScheduledPool wraps pool with scheduling support.
func NewScheduledPool(pool *WorkerPool) *ScheduledPool {
	return &ScheduledPool{WorkerPool: pool, timers: make(map[*time.Timer]struct{})}
}

// Schedule submits task to the underlying pool after delay elapses,
// returning a ScheduledFuture that can cancel the pending timer.
func (sp *ScheduledPool) Schedule(task Task, delay time.Duration) *ScheduledFuture {
	future := NewFuture()
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		sp.forgetTimer(timer)
		if future.IsDone() {
			return
		}
		inner := sp.WorkerPool.Submit(task)
		inner.OnComplete(func(value interface{}, err error, cancelled bool) {
			switch {
			case cancelled:
				future.Cancel()
			case err != nil:
				future.reject(err)
			default:
				future.resolve(value)
			}
		})
	})
	sp.rememberTimer(timer)
	return &ScheduledFuture{Future: future, stopTimer: func() bool {
		stopped := timer.Stop()
		sp.forgetTimer(timer)
		return stopped
	}}
}

// ScheduleAtFixedRate submits task after initialDelay and then again period
// after each tick's task completes, so ticks are spaced by period plus the
// task's running time, not by period alone. It repeats until the task
// errors (which rejects the returned future) or the future is cancelled
// (spec.md §4.10: "the periodic variant terminates and rejects on first
// task error").
func (sp *ScheduledPool) ScheduleAtFixedRate(task Task, initialDelay, period time.Duration) *ScheduledFuture {
	future := NewFuture()

	var mu sync.Mutex
	var values []interface{}

	var fire func()
	var timer *time.Timer
	fire = func() {
		sp.forgetTimer(timer)
		if future.IsDone() {
			return
		}
		inner := sp.WorkerPool.Submit(task)
		inner.OnComplete(func(value interface{}, err error, cancelled bool) {
			if cancelled {
				future.Cancel()
				return
			}
			if err != nil {
				future.reject(err)
				return
			}
			mu.Lock()
			values = append(values, value)
			done := future.IsDone()
			if !done {
				timer = time.AfterFunc(period, fire)
			}
			next := timer
			mu.Unlock()
			if !done {
				sp.rememberTimer(next)
			}
		})
	}
	mu.Lock()
	timer = time.AfterFunc(initialDelay, fire)
	initial := timer
	mu.Unlock()
	sp.rememberTimer(initial)

	return &ScheduledFuture{
		Future: future,
		Values: func() []interface{} {
			mu.Lock()
			defer mu.Unlock()
			return append([]interface{}(nil), values...)
		},
		stopTimer: func() bool {
			mu.Lock()
			t := timer
			mu.Unlock()
			stopped := t.Stop()
			sp.forgetTimer(t)
			return stopped
		},
	}
}

func (sp *ScheduledPool) rememberTimer(t *time.Timer) {
	sp.mu.Lock()
	sp.timers[t] = struct{}{}
	sp.mu.Unlock()
}

func (sp *ScheduledPool) forgetTimer(t *time.Timer) {
	sp.mu.Lock()
	delete(sp.timers, t)
	sp.mu.Unlock()
}

// Shutdown cancels every pending timer before delegating to the embedded
// pool's Shutdown (spec.md §4.10).
func (sp *ScheduledPool) Shutdown() {
	sp.mu.Lock()
	for t := range sp.timers {
		t.Stop()
	}
	sp.timers = make(map[*time.Timer]struct{})
	sp.mu.Unlock()
	sp.WorkerPool.Shutdown()
}
