// Package async provides a minimal typed future used to expose blocking
// operations through awaitable and callback calling conventions.
package async

import (
	"context"
	"fmt"
)

// Future holds the eventual result of a function running on its own goroutine.
// The result is written once before done is closed and only read afterwards.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go starts fn on a new goroutine and returns a Future for its result.
// A panic inside fn settles the future with an error instead of crashing the process.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				var zero T
				f.val, f.err = zero, fmt.Errorf("async: recovered panic: %v", r)
			}
		}()

		f.val, f.err = fn(ctx)
	}()

	return f
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the result is available or ctx is done, whichever comes first.
// Giving up on ctx does not stop the underlying function.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnComplete invokes cb exactly once, on its own goroutine, after the result is available.
func (f *Future[T]) OnComplete(cb func(T, error)) {
	go func() {
		<-f.done
		cb(f.val, f.err)
	}()
}
