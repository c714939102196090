package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Task is one branch of a settle-all fan-out.
type Task[T any] func(ctx context.Context) (T, error)

// Settled is the outcome of one branch.
type Settled[T any] struct {
	Value T
	Err   error
}

// SettleAll runs every task concurrently and waits for all of them.
// Branches do not share a cancellable context: a failing branch never stops
// the others. Panics are recovered and reported as errors. Results are
// returned in task order.
func SettleAll[T any](ctx context.Context, tasks []Task[T]) []Settled[T] {
	results := make([]Settled[T], len(tasks))

	var g errgroup.Group
	for i, task := range tasks {
		g.Go(func() error {
			results[i] = settle(ctx, task)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func settle[T any](ctx context.Context, task Task[T]) (s Settled[T]) {
	defer func() {
		if r := recover(); r != nil {
			s = Settled[T]{Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	v, err := task(ctx)
	return Settled[T]{Value: v, Err: err}
}

// Partition splits settled results into successful values and errors,
// each in task order.
func Partition[T any](results []Settled[T]) ([]T, []error) {
	var values []T
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
			continue
		}
		values = append(values, r.Value)
	}
	return values, errs
}
