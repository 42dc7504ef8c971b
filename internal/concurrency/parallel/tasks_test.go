package parallel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	conc "dev.helix.gds/internal/concurrency"
)

func TestTasksWithIndex_BuildsOneTaskPerSlotCarryingItsIndex(t *testing.T) {
	tasks := TasksWithIndex(conc.MustNew(3), "slot", func(index int) (interface{}, error) {
		return index, nil
	})
	require.Len(t, tasks, 3)
	for i, task := range tasks {
		v, err := task.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
}

func TestTasks_IgnoresSlotIndex(t *testing.T) {
	tasks := Tasks(conc.MustNew(4), "flat", func() (interface{}, error) {
		return "same", nil
	})
	require.Len(t, tasks, 4)
	for _, task := range tasks {
		v, err := task.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "same", v)
	}
}

func TestTaskID_DefaultsPrefixWhenEmpty(t *testing.T) {
	assert.Equal(t, "parallel-task-2", taskID("", 2))
	assert.Equal(t, "custom-2", taskID("custom", 2))
}

func TestRun_InlineWhenAllowedAndPoolIsNil(t *testing.T) {
	tasks := []conc.Task{
		conc.NewTaskFunc("a", func(ctx context.Context) (interface{}, error) { return 1, nil }),
		conc.NewTaskFunc("b", func(ctx context.Context) (interface{}, error) { return 2, nil }),
	}
	values, err := Run(context.Background(), tasks, nil, true)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1, 2}, values)
}

func TestRun_ThroughPoolReturnsValuesInTaskOrder(t *testing.T) {
	sizes, err := conc.FixedPoolSizes(4)
	require.NoError(t, err)
	pool := conc.NewWorkerPool("tasks-run", sizes)
	defer pool.Shutdown()

	tasks := TasksWithIndex(conc.MustNew(5), "run", func(index int) (interface{}, error) {
		return index * index, nil
	})
	values, err := Run(context.Background(), tasks, pool, false)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{0, 1, 4, 9, 16}, values)
}

func TestRunSingle_RunsInlineWhenAllowed(t *testing.T) {
	task := conc.NewTaskFunc("single", func(ctx context.Context) (interface{}, error) { return "ran", nil })
	v, err := RunSingle(context.Background(), task, nil, true)
	require.NoError(t, err)
	assert.Equal(t, "ran", v)
}

func TestRunSingle_RunsThroughPoolWhenNotInline(t *testing.T) {
	sizes, err := conc.FixedPoolSizes(1)
	require.NoError(t, err)
	pool := conc.NewWorkerPool("run-single", sizes)
	defer pool.Shutdown()

	task := conc.NewTaskFunc("single", func(ctx context.Context) (interface{}, error) { return "pooled", nil })
	v, err := RunSingle(context.Background(), task, pool, false)
	require.NoError(t, err)
	assert.Equal(t, "pooled", v)
}
