package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestPool_ExecuteKeepsInputOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := NewPool[int, int](4, func(ctx context.Context, n int) (int, error) {
		return n * n, nil
	})

	inputs := []int{1, 2, 3, 4, 5, 6, 7, 8, 9}
	tasks := pool.Execute(context.Background(), inputs)

	require.Len(t, tasks, len(inputs))
	for i, task := range tasks {
		assert.True(t, task.Done)
		assert.NoError(t, task.Err)
		assert.Equal(t, inputs[i], task.Input)
		assert.Equal(t, inputs[i]*inputs[i], task.Result)
	}
}

func TestPool_ErrorsDoNotStopOtherTasks(t *testing.T) {
	defer goleak.VerifyNone(t)

	boom := errors.New("boom")
	pool := NewPool[int, int](2, func(ctx context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	})

	tasks := pool.Execute(context.Background(), []int{1, 2, 3})
	assert.NoError(t, tasks[0].Err)
	assert.ErrorIs(t, tasks[1].Err, boom)
	assert.NoError(t, tasks[2].Err)
	assert.Equal(t, 3, tasks[2].Result)
}

func TestPool_CancelledContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	pool := NewPool[int, int](1, func(ctx context.Context, n int) (int, error) {
		calls.Add(1)
		return n, nil
	})

	tasks := pool.Execute(ctx, []int{1, 2, 3})
	require.Len(t, tasks, 3)

	// select may still pick a ready send over the closed Done channel, so
	// only the bookkeeping is asserted.
	done := 0
	for i, task := range tasks {
		assert.Equal(t, i+1, task.Input)
		if task.Done {
			done++
		} else {
			assert.Zero(t, task.Result)
		}
	}
	assert.Equal(t, int(calls.Load()), done)
}

func TestNewPool_MinimumOneWorker(t *testing.T) {
	pool := NewPool[int, int](0, func(ctx context.Context, n int) (int, error) { return n, nil })
	assert.Equal(t, 1, pool.Workers())
}
