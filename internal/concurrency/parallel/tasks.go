package parallel

import (
	"context"
	"strconv"

	conc "dev.helix.gds/internal/concurrency"
)

// Tasks builds concurrency.Value() tasks from factory, one per slot,
// ignoring the slot index (spec.md §4.5's `tasks(concurrency, factory)`).
func Tasks(concurrency conc.Concurrency, idPrefix string, factory func() (interface{}, error)) []conc.Task {
	return TasksWithIndex(concurrency, idPrefix, func(int) (interface{}, error) {
		return factory()
	})
}

// TasksWithIndex is Tasks, but factory receives its slot index — the
// `tasksWithIndex(concurrency, factory)` variant spec.md §4.5 names.
func TasksWithIndex(concurrency conc.Concurrency, idPrefix string, factory func(index int) (interface{}, error)) []conc.Task {
	n := concurrency.Value()
	out := make([]conc.Task, n)
	for i := 0; i < n; i++ {
		i := i
		out[i] = conc.NewTaskFunc(taskID(idPrefix, i), func(ctx context.Context) (interface{}, error) {
			return factory(i)
		})
	}
	return out
}

// Run submits every task to pool and awaits them all, returning their
// values in task order. allowSynchronousRun, when true, runs tasks inline
// on the calling goroutine instead of through the pool when there is only
// one task or the pool is unusable — spec.md §4.5's `run(tasks, pool)`
// short-circuit.
func Run(ctx context.Context, tasks []conc.Task, pool *conc.WorkerPool, allowSynchronousRun bool) ([]interface{}, error) {
	if allowSynchronousRun && (len(tasks) <= 1 || !executorUsable(pool)) {
		return runInline(ctx, tasks)
	}

	futures := make([]*conc.Future, len(tasks))
	for i, t := range tasks {
		futures[i] = pool.Submit(t)
	}
	return conc.All(ctx, futures)
}

// RunSingle submits one task and awaits its result, optionally running it
// inline when allowSynchronousRun is set — spec.md §4.5's `runSingle`.
func RunSingle(ctx context.Context, task conc.Task, pool *conc.WorkerPool, allowSynchronousRun bool) (interface{}, error) {
	if allowSynchronousRun || pool == nil {
		return task.Run(ctx)
	}
	return pool.Submit(task).Get(ctx)
}

func runInline(ctx context.Context, tasks []conc.Task) ([]interface{}, error) {
	values := make([]interface{}, len(tasks))
	for i, t := range tasks {
		v, err := t.Run(ctx)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func taskID(prefix string, index int) string {
	if prefix == "" {
		prefix = "parallel-task"
	}
	return prefix + "-" + strconv.Itoa(index)
}
