package future

import (
	"github.com/ib-77/ctrlc/pkg/rop"
)

// Waker asks the driving scheduler to poll a pending future again.
// Implementations must be safe to call from any goroutine, any number of times.
type Waker interface {
	Wake()
}

// WakerFunc adapts a plain function to Waker.
type WakerFunc func()

func (f WakerFunc) Wake() { f() }

// Noop is a waker that does nothing. Useful for one-off readiness checks.
var Noop Waker = WakerFunc(func() {})

// Poll is the outcome of a single polling step: pending, or ready with a result.
type Poll[T any] struct {
	result rop.Result[T]
	ready  bool
}

func Pending[T any]() Poll[T] {
	return Poll[T]{}
}

func Ready[T any](r rop.Result[T]) Poll[T] {
	return Poll[T]{result: r, ready: true}
}

func (p Poll[T]) IsReady() bool {
	return p.ready
}

func (p Poll[T]) Result() rop.Result[T] {
	return p.result
}

// Future is an asynchronous computation that can be polled to completion.
//
// Poll must not block. When it reports pending it must arrange for w.Wake to
// be called once progress is possible; the scheduler polls again after that.
type Future[T any] interface {
	Poll(w Waker) Poll[T]
}

// Dropper is implemented by futures that hold resources which must be
// released when the future is abandoned before it resolves.
type Dropper interface {
	Drop()
}

// Drop releases f if it implements Dropper.
func Drop(f any) {
	if d, ok := f.(Dropper); ok {
		d.Drop()
	}
}

// Func adapts a polling function to Future.
type Func[T any] func(w Waker) Poll[T]

func (f Func[T]) Poll(w Waker) Poll[T] {
	return f(w)
}

type done[T any] struct {
	r rop.Result[T]
}

func (d done[T]) Poll(Waker) Poll[T] {
	return Ready(d.r)
}

// Done returns a future that is ready immediately with r.
func Done[T any](r rop.Result[T]) Future[T] {
	return done[T]{r: r}
}

type never[T any] struct{}

func (never[T]) Poll(Waker) Poll[T] {
	return Pending[T]()
}

// Never returns a future that never resolves and never wakes its scheduler.
func Never[T any]() Future[T] {
	return never[T]{}
}
