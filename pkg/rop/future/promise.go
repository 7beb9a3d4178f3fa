package future

import (
	"context"
	"sync"

	"github.com/ib-77/ctrlc/pkg/rop"
)

// Promise is a future resolved from the outside. The first resolution wins;
// later ones are ignored. All methods are safe for concurrent use.
type Promise[T any] struct {
	mu       sync.Mutex
	resolved bool
	result   rop.Result[T]
	waker    Waker
	done     chan struct{}
	onDrop   func()
}

// NewPromise returns an unresolved promise.
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

// Resolve settles the promise with r and wakes the scheduler that last polled
// it. It reports whether this call was the one that settled the promise.
func (p *Promise[T]) Resolve(r rop.Result[T]) bool {
	p.mu.Lock()
	if p.resolved {
		p.mu.Unlock()
		return false
	}
	p.resolved = true
	p.result = r
	w := p.waker
	p.waker = nil
	close(p.done)
	p.mu.Unlock()

	if w != nil {
		w.Wake()
	}
	return true
}

func (p *Promise[T]) Succeed(v T) bool {
	return p.Resolve(rop.Success(v))
}

func (p *Promise[T]) Fail(err error) bool {
	return p.Resolve(rop.Fail[T](err))
}

func (p *Promise[T]) Poll(w Waker) Poll[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.resolved {
		return Ready(p.result)
	}
	p.waker = w
	return Pending[T]()
}

// Drop runs the release hook, if any. The promise itself stays unresolved
// unless the hook resolves it.
func (p *Promise[T]) Drop() {
	p.mu.Lock()
	fn := p.onDrop
	p.onDrop = nil
	p.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Done returns a channel closed once the promise is resolved.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Await blocks until the promise is resolved or ctx ends.
func (p *Promise[T]) Await(ctx context.Context) rop.Result[T] {
	select {
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.result
	case <-ctx.Done():
		return rop.Cancel[T](ctx.Err())
	}
}

// Go runs fn in its own goroutine and returns a future of its outcome.
// A non-nil error becomes a failure, or a cancellation when it is a context
// or interrupt error. Dropping the future cancels the context passed to fn.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Promise[T] {
	ctx, cancel := context.WithCancel(ctx)
	p := NewPromise[T]()
	p.onDrop = cancel

	go func() {
		defer cancel()

		// Pre-cancelled contexts never reach fn
		if err := ctx.Err(); err != nil {
			p.Resolve(rop.Cancel[T](err))
			return
		}

		res, err := fn(ctx)
		switch {
		case err == nil:
			p.Resolve(rop.Success(res))
		case rop.IsCancellationError(err):
			p.Resolve(rop.Cancel[T](err))
		default:
			p.Resolve(rop.Fail[T](err))
		}
	}()

	return p
}
