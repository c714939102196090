package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettleAll_CollectsSuccessesAndFailures(t *testing.T) {
	errBad := errors.New("bad")
	tasks := []Task[int]{
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (int, error) { return 0, errBad },
		func(context.Context) (int, error) { return 3, nil },
	}

	results := SettleAll(context.Background(), tasks)

	require.Len(t, results, 3)
	assert.Equal(t, 1, results[0].Value)
	assert.ErrorIs(t, results[1].Err, errBad)
	assert.Equal(t, 3, results[2].Value)

	values, errs := Partition(results)
	assert.Equal(t, []int{1, 3}, values)
	assert.Len(t, errs, 1)
}

func TestSettleAll_FailureDoesNotCancelSiblings(t *testing.T) {
	var finished atomic.Bool
	tasks := []Task[string]{
		func(context.Context) (string, error) { return "", errors.New("fast failure") },
		func(ctx context.Context) (string, error) {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(30 * time.Millisecond):
				finished.Store(true)
				return "slow", nil
			}
		},
	}

	results := SettleAll(context.Background(), tasks)

	assert.True(t, finished.Load())
	assert.Equal(t, "slow", results[1].Value)
	assert.NoError(t, results[1].Err)
}

func TestSettleAll_RecoversPanics(t *testing.T) {
	tasks := []Task[int]{
		func(context.Context) (int, error) { panic("collector exploded") },
		func(context.Context) (int, error) { return 2, nil },
	}

	results := SettleAll(context.Background(), tasks)

	require.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "collector exploded")
	assert.Equal(t, 2, results[1].Value)
}

func TestSettleAll_RunsConcurrently(t *testing.T) {
	const n = 5
	tasks := make([]Task[int], n)
	for i := range tasks {
		tasks[i] = func(context.Context) (int, error) {
			time.Sleep(40 * time.Millisecond)
			return i, nil
		}
	}

	start := time.Now()
	results := SettleAll(context.Background(), tasks)

	assert.Less(t, time.Since(start), n*40*time.Millisecond)
	for i, r := range results {
		assert.Equal(t, i, r.Value)
	}
}

func TestSettleAll_Empty(t *testing.T) {
	results := SettleAll[int](context.Background(), nil)
	assert.Empty(t, results)

	values, errs := Partition(results)
	assert.Empty(t, values)
	assert.Empty(t, errs)
}
