package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeoutError_MessageContainsAttemptsAndWaitMillis(t *testing.T) {
	err := &TimeoutError{Attempts: 5, WaitMillis: 1}
	assert.Contains(t, err.Error(), "5")
	assert.Contains(t, err.Error(), "1")
}

func TestTaskError_UnwrapsToCause(t *testing.T) {
	cause := assert.AnError
	err := &TaskError{TaskID: "t-1", Cause: cause}
	assert.ErrorIs(t, err, cause)
}

func TestTerminatedError_UnwrapsToOptionalCause(t *testing.T) {
	bare := &TerminatedError{}
	assert.Equal(t, "execution terminated", bare.Error())

	wrapped := &TerminatedError{Cause: assert.AnError}
	assert.ErrorIs(t, wrapped, assert.AnError)
}

func TestCompositeError_EmptyWhenNoCausesAdded(t *testing.T) {
	var composite CompositeError
	assert.True(t, composite.Empty())
	composite.Add(assert.AnError)
	assert.False(t, composite.Empty())
}

func TestCompositeError_ErrorAsSeesEveryChainedCause(t *testing.T) {
	c1 := &TaskError{TaskID: "a", Cause: assert.AnError}
	c2 := &WorkerCrashError{WorkerName: "w", Cause: assert.AnError}
	composite := AppendError(AppendError(nil, c1), c2)

	var taskErr *TaskError
	assert.True(t, errors.As(composite, &taskErr))
	assert.Equal(t, "a", taskErr.TaskID)

	var crashErr *WorkerCrashError
	assert.True(t, errors.As(composite, &crashErr))
}

func TestAppendError_NilCauseIsANoOp(t *testing.T) {
	assert.Nil(t, AppendError(nil, nil))
}

func TestAppendError_AllocatesLazilyOnFirstCause(t *testing.T) {
	composite := AppendError(nil, assert.AnError)
	assert.NotNil(t, composite)
	assert.Len(t, composite.Causes, 1)
}

func TestShutdownError_MessageWithAndWithoutPoolName(t *testing.T) {
	assert.Equal(t, "pool is shut down", (&ShutdownError{}).Error())
	assert.Contains(t, (&ShutdownError{PoolName: "p"}).Error(), "p")
}
