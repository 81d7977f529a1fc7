// Package bridge connects a tick-driven host loop to asynchronous chain and
// indexer operations. The host spawns work through the façade, then polls
// once per tick to harvest completions as events; no call ever blocks the
// tick thread.
package bridge

import "context"

type taskResult[T any] struct {
	value T
	err   error
}

// Task is a handle to one spawned asynchronous operation. It is polled
// without blocking and yields its result exactly once. There is no
// cancellation: a spawned operation always runs to completion, whether or
// not anything still holds its handle.
type Task[T any] struct {
	done chan taskResult[T]
}

// Spawn runs op on its own goroutine and returns the handle to poll.
func Spawn[T any](ctx context.Context, op func(context.Context) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan taskResult[T], 1)}
	go func() {
		value, err := op(ctx)
		t.done <- taskResult[T]{value: value, err: err}
	}()
	return t
}

// Poll checks for completion without blocking. While the operation is
// running it reports done=false and the handle stays pollable. Once the
// operation finishes, the first Poll that observes it returns the result
// and consumes the handle; the caller must not poll it again.
func (t *Task[T]) Poll() (value T, err error, done bool) {
	select {
	case r := <-t.done:
		return r.value, r.err, true
	default:
		var zero T
		return zero, nil, false
	}
}
