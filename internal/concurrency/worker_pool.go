package concurrency

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dev.helix.gds/internal/errs"
	"dev.helix.gds/internal/metrics"
)

// worker is a single-task-at-a-time executor: a stable name, a busy flag,
// and a reference to whatever pendingEntry it currently holds. Workers
// have no persistent state beyond these, per spec.md §3. Identity is the
// pointer itself, not a slot index — workers are removed from the middle
// of the pool's slice on crash, so an index captured at spawn time would
// go stale.
type worker struct {
	name  string
	busy  atomic.Bool
	inbox chan *pendingEntry
}

// pendingEntry is one queued-or-in-flight task: {taskId, task, resolve,
// reject, cancelled} in spec.md's vocabulary, realised here as a Future
// the pool resolves/rejects and an atomic cancellation flag checked both
// at dequeue and at settlement time.
type pendingEntry struct {
	taskID    string
	task      Task
	future    *Future
	cancelled atomic.Bool
}

// Cancel marks the entry cancelled and cancels its future. Safe to call
// whether the entry is still queued or already dispatched to a worker.
func (e *pendingEntry) Cancel() bool {
	e.cancelled.Store(true)
	return e.future.Cancel()
}

type workerMsg struct {
	w       *worker
	entry   *pendingEntry
	value   interface{}
	err     error
	crashed bool
}

// WorkerPool owns a list of workers (size in [0, max]), a FIFO queue of
// pending entries, a taskId->entry map, and a shutdown flag. It maintains
// workers <= max, busyWorkers <= workers, and |queue| + |inFlight| ==
// |pendingTasks| at all times (spec.md §3).
type WorkerPool struct {
	name    string
	sizes   PoolSizes
	log     *logrus.Logger
	metrics *metrics.PoolMetrics

	mu       sync.Mutex
	workers  []*worker
	queue    []*pendingEntry
	pending  map[string]*pendingEntry
	shutdown bool

	results   chan workerMsg
	workersWg sync.WaitGroup

	nextWorkerSeq int
}

// WorkerPoolOption customises a WorkerPool at construction time.
type WorkerPoolOption func(*WorkerPool)

// WithLogger injects a structured logger; nil falls back to
// logrus.StandardLogger(), mirroring the teacher's repository constructors.
func WithLogger(log *logrus.Logger) WorkerPoolOption {
	return func(p *WorkerPool) {
		if log != nil {
			p.log = log
		}
	}
}

// WithMetrics injects a metrics sink; nil disables metric emission.
func WithMetrics(m *metrics.PoolMetrics) WorkerPoolOption {
	return func(p *WorkerPool) { p.metrics = m }
}

// NewWorkerPool constructs a pool with the given name and sizing. The pool
// starts with zero workers; workers are created lazily by dispatch up to
// sizes.Max(), and replaced up to sizes.Core() on crash.
func NewWorkerPool(name string, sizes PoolSizes, opts ...WorkerPoolOption) *WorkerPool {
	p := &WorkerPool{
		name:    name,
		sizes:   sizes,
		log:     logrus.StandardLogger(),
		pending: make(map[string]*pendingEntry),
		results: make(chan workerMsg, sizes.Max()),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.mediate()
	return p
}

// mediate is the single goroutine that owns worker-completion handling,
// breaking the pool<->worker reference cycle into unidirectional
// "ask/reply" edges (spec.md §9's cyclic-reference design note): workers
// only ever send into p.results; every state mutation happens here. It
// exits once shutdown has closed p.results after every worker drains.
func (p *WorkerPool) mediate() {
	for msg := range p.results {
		p.onWorkerMessage(msg)
	}
}

func (p *WorkerPool) onWorkerMessage(msg workerMsg) {
	p.mu.Lock()
	msg.w.busy.Store(false)
	delete(p.pending, msg.entry.taskID)

	if msg.crashed {
		p.removeWorkerLocked(msg.w)
		if p.metrics != nil {
			p.metrics.WorkersActive.Dec()
			p.metrics.WorkersTotal.Dec()
		}
		if !msg.entry.cancelled.Load() {
			msg.entry.future.reject(&errs.WorkerCrashError{WorkerName: msg.w.name, Cause: msg.err})
		}
		if p.metrics != nil {
			p.metrics.TasksTotal.WithLabelValues("crashed").Inc()
		}
		if len(p.workers) < p.sizes.Core() && !p.shutdown {
			p.spawnWorkerLocked()
		}
		p.dispatchLocked()
		p.mu.Unlock()
		p.log.WithFields(logrus.Fields{"pool_name": p.name, "worker_id": msg.w.name, "task_id": msg.entry.taskID}).
			Warn("worker crashed, task rejected")
		return
	}

	if p.metrics != nil {
		p.metrics.WorkersActive.Dec()
	}
	if !msg.entry.cancelled.Load() {
		if msg.err != nil {
			msg.entry.future.reject(msg.err)
			if p.metrics != nil {
				p.metrics.TasksTotal.WithLabelValues("failed").Inc()
			}
		} else {
			msg.entry.future.resolve(msg.value)
			if p.metrics != nil {
				p.metrics.TasksTotal.WithLabelValues("completed").Inc()
			}
		}
	} else if p.metrics != nil {
		p.metrics.TasksTotal.WithLabelValues("cancelled").Inc()
	}
	p.dispatchLocked()
	p.mu.Unlock()
}

// dispatchLocked implements spec.md §4.2's dispatch algorithm. Caller must
// hold p.mu.
func (p *WorkerPool) dispatchLocked() {
	for {
		if len(p.queue) == 0 || p.shutdown {
			return
		}
		w := p.findIdleWorkerLocked()
		if w == nil && len(p.workers) < p.sizes.Max() {
			w = p.spawnWorkerLocked()
		}
		if w == nil {
			return
		}
		entry := p.queue[0]
		p.queue = p.queue[1:]
		if entry.cancelled.Load() {
			delete(p.pending, entry.taskID)
			continue
		}
		w.busy.Store(true)
		if p.metrics != nil {
			p.metrics.WorkersActive.Inc()
			p.metrics.TasksInQueue.WithLabelValues(p.name).Set(float64(len(p.queue)))
		}
		w.inbox <- entry
	}
}

func (p *WorkerPool) findIdleWorkerLocked() *worker {
	for _, w := range p.workers {
		if !w.busy.Load() {
			return w
		}
	}
	return nil
}

func (p *WorkerPool) spawnWorkerLocked() *worker {
	w := &worker{
		name:  fmt.Sprintf("%s-worker-%d", p.name, p.nextWorkerSeq),
		inbox: make(chan *pendingEntry, 1),
	}
	p.nextWorkerSeq++
	p.workers = append(p.workers, w)
	if p.metrics != nil {
		p.metrics.WorkersTotal.Inc()
	}
	p.workersWg.Add(1)
	go p.runWorker(w)
	p.log.WithFields(logrus.Fields{"pool_name": p.name, "worker_id": w.name}).Debug("worker started")
	return w
}

func (p *WorkerPool) removeWorkerLocked(target *worker) {
	for i, w := range p.workers {
		if w == target {
			p.workers = append(p.workers[:i], p.workers[i+1:]...)
			return
		}
	}
}

// runWorker processes tasks serially until its inbox closes (graceful
// shutdown) or a task panics. A panic is treated as a worker crash — the
// same failure mode the host runtime (e.g. an OS thread or isolate dying
// mid-task) would produce — so the goroutine reports it and exits rather
// than looping back for more work; the pool replaces it up to core size.
func (p *WorkerPool) runWorker(w *worker) {
	defer p.workersWg.Done()
	for entry := range w.inbox {
		value, err, crashed := p.executeSafely(entry)
		p.results <- workerMsg{w: w, entry: entry, value: value, err: err, crashed: crashed}
		if crashed {
			return
		}
	}
}

func (p *WorkerPool) executeSafely(entry *pendingEntry) (value interface{}, err error, crashed bool) {
	start := time.Now()
	defer func() {
		if p.metrics != nil {
			p.metrics.TaskDuration.WithLabelValues(p.name).Observe(time.Since(start).Seconds())
		}
		if r := recover(); r != nil {
			err = fmt.Errorf("task %q panicked: %v", entry.taskID, r)
			crashed = true
		}
	}()
	value, err = entry.task.Run(context.Background())
	return value, err, false
}

// Submit enqueues task and returns a Future for its eventual result. Fails
// fast with a rejected future if the pool is shut down.
func (p *WorkerPool) Submit(task Task) *Future {
	taskID := task.ID()
	if taskID == "" {
		taskID = uuid.NewString()
	}
	entry := &pendingEntry{taskID: taskID, task: task, future: NewFuture()}

	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		entry.future.reject(&errs.ShutdownError{PoolName: p.name})
		return entry.future
	}
	p.pending[taskID] = entry
	p.queue = append(p.queue, entry)
	if p.metrics != nil {
		p.metrics.TasksInQueue.WithLabelValues(p.name).Set(float64(len(p.queue)))
	}
	p.dispatchLocked()
	p.mu.Unlock()
	return entry.future
}

// InvokeAll submits every task and returns a Future that resolves with
// results in input order once all fulfil, or rejects on the first
// failure — peers are not cancelled; they run to their own completion.
func (p *WorkerPool) InvokeAll(ctx context.Context, tasks []Task) *Future {
	futures := make([]*Future, len(tasks))
	for i, t := range tasks {
		futures[i] = p.Submit(t)
	}
	out := NewFuture()
	go func() {
		values, err := All(ctx, futures)
		if err != nil {
			out.reject(err)
			return
		}
		out.resolve(values)
	}()
	return out
}

// CanAcceptWork reports whether the pool would accept new work right now:
// not shut down, and either an idle worker exists or it can still grow.
func (p *WorkerPool) CanAcceptWork() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.shutdown {
		return false
	}
	return p.findIdleWorkerLocked() != nil || len(p.workers) < p.sizes.Max()
}

// ActiveCount returns the number of workers currently executing a task.
func (p *WorkerPool) ActiveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, w := range p.workers {
		if w.busy.Load() {
			n++
		}
	}
	return n
}

// WorkerCount returns the number of live workers.
func (p *WorkerPool) WorkerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// IsShutdown reports whether Shutdown/ShutdownNow has been called.
func (p *WorkerPool) IsShutdown() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shutdown
}

// IsTerminated additionally requires no workers and no pending tasks.
func (p *WorkerPool) IsTerminated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shutdown && len(p.workers) == 0 && len(p.pending) == 0
}

// Shutdown idempotently marks the pool shut down, rejects every queued
// task with a ShutdownError, and lets in-flight tasks run to completion.
func (p *WorkerPool) Shutdown() {
	p.shutdownInternal()
}

// ShutdownNow is like Shutdown but returns the tasks that were still
// queued (not yet dispatched to a worker).
func (p *WorkerPool) ShutdownNow() []Task {
	return p.shutdownInternal()
}

func (p *WorkerPool) shutdownInternal() []Task {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return nil
	}
	p.shutdown = true
	queued := p.queue
	p.queue = nil
	for _, entry := range queued {
		delete(p.pending, entry.taskID)
	}
	for _, w := range p.workers {
		close(w.inbox)
	}
	p.mu.Unlock()

	remaining := make([]Task, 0, len(queued))
	for _, entry := range queued {
		entry.future.reject(&errs.ShutdownError{PoolName: p.name})
		remaining = append(remaining, entry.task)
	}

	go func() {
		p.workersWg.Wait()
		close(p.results)
	}()

	p.log.WithFields(logrus.Fields{"pool_name": p.name}).Info("worker pool shut down")
	return remaining
}

// Name returns the pool's stable name, used as a worker-name prefix and in
// log fields.
func (p *WorkerPool) Name() string { return p.name }
