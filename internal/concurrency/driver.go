package concurrency

import (
	"context"
	"strconv"
	"time"

	"dev.helix.gds/internal/errs"
	"dev.helix.gds/internal/metrics"
)

// defaultMaxWaitRetries is ~3 days at a 1ms wait, per spec.md §4.4.
const defaultMaxWaitRetries = 250_000_000

const completionPollTimeout = 100 * time.Millisecond

// DriverConfig is the bounded-concurrency driver's frozen configuration
// (spec.md §4.4). The builder validates once; RunWithConcurrency treats it
// as immutable thereafter.
type DriverConfig struct {
	Concurrency Concurrency
	Tasks       TaskIterator

	ForceUsageOfExecutor  bool
	WaitMillis            int64
	MaxWaitRetries        int64
	MayInterruptIfRunning bool
	TerminationFlag       TerminationFlag

	Executor *WorkerPool

	// Name labels this run's metrics and logs; defaults to "driver".
	Name    string
	Metrics *metrics.PoolMetrics
}

// NewDriverConfig validates and returns a DriverConfig, filling in the
// spec's defaults for omitted fields. concurrency and tasks are required.
func NewDriverConfig(concurrency Concurrency, tasks TaskIterator) (*DriverConfig, error) {
	if tasks == nil {
		return nil, &errs.InvalidArgumentError{Field: "tasks", Message: "task iterator is required"}
	}
	return &DriverConfig{
		Concurrency:     concurrency,
		Tasks:           tasks,
		WaitMillis:      100,
		MaxWaitRetries:  defaultMaxWaitRetries,
		TerminationFlag: RunningTrue,
		Name:            "driver",
	}, nil
}

func (c *DriverConfig) validate() error {
	if c.Tasks == nil {
		return &errs.InvalidArgumentError{Field: "tasks", Message: "task iterator is required"}
	}
	if c.WaitMillis < 0 {
		return &errs.InvalidArgumentError{Field: "wait_millis", Message: "must be >= 0"}
	}
	if c.MaxWaitRetries < 0 {
		return &errs.InvalidArgumentError{Field: "max_wait_retries", Message: "must be >= 0"}
	}
	if c.ForceUsageOfExecutor && !executorUsable(c.Executor) {
		return &errs.InvalidArgumentError{Field: "executor", Message: "forceUsageOfExecutor set but executor is unusable"}
	}
	return nil
}

func executorUsable(pool *WorkerPool) bool {
	return pool != nil && !pool.IsShutdown() && !pool.IsTerminated()
}

// RunWithConcurrency streams cfg.Tasks through cfg.Executor keeping at
// most cfg.Concurrency tasks in flight, per spec.md §4.4's algorithm. It
// returns every task's settled value, in completion order (unconstrained
// by spec, but stable within one call), and a composite error chaining
// every task failure observed, or a *errs.TerminatedError /
// *errs.TimeoutError if the run was cut short.
func RunWithConcurrency(cfg *DriverConfig) ([]interface{}, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	flag := cfg.TerminationFlag
	if flag == nil {
		flag = RunningTrue
	}

	// Step 1: sequential fallback when the executor is unusable, or when
	// concurrency is 1 and the caller did not force executor usage.
	if !executorUsable(cfg.Executor) || (cfg.Concurrency.Value() == 1 && !cfg.ForceUsageOfExecutor) {
		return runSequentially(cfg, flag)
	}

	return runViaExecutor(cfg, flag)
}

func runSequentially(cfg *DriverConfig, flag TerminationFlag) ([]interface{}, error) {
	var results []interface{}
	var composite *errs.CompositeError
	for {
		task, ok := cfg.Tasks.Next()
		if !ok {
			break
		}
		if err := flag.AssertRunning(); err != nil {
			return results, err
		}
		value, err := task.Run(context.Background())
		if err != nil {
			composite = errs.AppendError(composite, &errs.TaskError{TaskID: task.ID(), Cause: err})
			continue
		}
		results = append(results, value)
	}
	if composite != nil {
		return results, composite
	}
	return results, nil
}

func runViaExecutor(cfg *DriverConfig, flag TerminationFlag) ([]interface{}, error) {
	availableConcurrency := cfg.Concurrency.Value()
	cs := newCompletionService(cfg.Executor, availableConcurrency)
	iter := newPushbackIterator(cfg.Tasks)

	var results []interface{}
	var composite *errs.CompositeError
	var runErr error

	recordCompletion := func(r completionResult) {
		if r.cancelled {
			return
		}
		if r.err != nil {
			composite = errs.AppendError(composite, &errs.TaskError{TaskID: r.taskID, Cause: r.err})
			return
		}
		results = append(results, r.value)
	}

	reportInFlight := func() {
		if cfg.Metrics != nil {
			cfg.Metrics.DriverInFlight.WithLabelValues(cfg.Name).Set(float64(cs.inFlight()))
		}
	}

	// Step 3: priming — attempt up to availableConcurrency initial
	// submissions, each gated by the termination flag; stop priming as
	// soon as one submission is rejected for lack of capacity or the
	// iterator is exhausted.
	for i := 0; i < availableConcurrency; i++ {
		if err := flag.AssertRunning(); err != nil {
			cs.cancelAll(cfg.MayInterruptIfRunning)
			return results, err
		}
		if !cs.trySubmit(iter) {
			break
		}
	}
	reportInFlight()

	if err := flag.AssertRunning(); err != nil {
		cs.cancelAll(cfg.MayInterruptIfRunning)
		return results, err
	}

	// Step 5: drain loop while the iterator still has a next task.
	stall := int64(0)
	for {
		task, hasNext := iter.Next()
		if !hasNext {
			break
		}
		iter.PushBack(task)

		if cs.inFlight() > 0 {
			if r, ok := cs.awaitOrFail(completionPollTimeout); ok {
				recordCompletion(r)
				reportInFlight()
			}
		}

		if err := flag.AssertRunning(); err != nil {
			cs.cancelAll(cfg.MayInterruptIfRunning)
			return results, err
		}

		if cs.trySubmit(iter) {
			stall = 0
			reportInFlight()
			continue
		}

		if cs.inFlight() == 0 {
			time.Sleep(time.Duration(cfg.WaitMillis) * time.Millisecond)
			stall++
			if cfg.Metrics != nil {
				cfg.Metrics.DriverStallTotal.WithLabelValues(cfg.Name).Inc()
			}
			if stall >= cfg.MaxWaitRetries {
				runErr = &errs.TimeoutError{Attempts: int(stall), WaitMillis: cfg.WaitMillis}
				cs.cancelAll(cfg.MayInterruptIfRunning)
				return results, runErr
			}
		}
	}

	// Step 6: finalisation — drain whatever is still outstanding.
	for cs.inFlight() > 0 {
		if err := flag.AssertRunning(); err != nil {
			cs.cancelAll(cfg.MayInterruptIfRunning)
			return results, err
		}
		if r, ok := cs.awaitOrFail(completionPollTimeout); ok {
			recordCompletion(r)
			reportInFlight()
		}
	}

	// Step 7: finally — cancel whatever remains (normally nothing at this
	// point) and surface the accumulated error, if any.
	cs.cancelAll(cfg.MayInterruptIfRunning)
	reportInFlight()
	if composite != nil {
		return results, composite
	}
	return results, nil
}

// RunFuncsWithConcurrency is the callable-based convenience wrapper
// spec.md's Open Questions ask for: it adapts plain functions into Tasks
// (ignoring cancellation, since a bare func() (interface{}, error) has
// nowhere to receive a context) and delegates to RunWithConcurrency.
func RunFuncsWithConcurrency(cfg *DriverConfig, fns []func() (interface{}, error)) ([]interface{}, error) {
	tasks := make([]Task, len(fns))
	for i, fn := range fns {
		fn := fn
		tasks[i] = NewTaskFunc(taskIDFor(i), func(ctx context.Context) (interface{}, error) {
			return fn()
		})
	}
	cfg.Tasks = NewSliceTaskIterator(tasks)
	return RunWithConcurrency(cfg)
}

func taskIDFor(i int) string {
	return "func-task-" + strconv.Itoa(i)
}
