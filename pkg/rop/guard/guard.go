package guard

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ib-77/ctrlc/pkg/interrupt"
	"github.com/ib-77/ctrlc/pkg/rop"
	"github.com/ib-77/ctrlc/pkg/rop/future"
)

// ErrDropped is returned when a race is polled after being dropped unresolved.
var ErrDropped = errors.New("guard: race dropped before resolution")

type Option func(*options)

type options struct {
	mapErr func(error) error
	log    *slog.Logger
}

// WithErrorMapper converts every error the race resolves with (the
// operation's own, ErrInterrupted, or a *SubscriptionError) into the
// caller's error type. The mapped error should wrap its input so errors.Is
// keeps working.
func WithErrorMapper(fn func(error) error) Option {
	return func(o *options) {
		if fn != nil {
			o.mapErr = fn
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// Race is an operation raced against an interrupt source. It is itself a
// future.Future and resolves exactly once.
//
// Poll is not safe for concurrent use; a race belongs to the scheduler that
// drives it.
type Race[T any] struct {
	op       future.Future[T]
	sub      interrupt.Subscription
	subErr   error
	opts     options
	resolved bool
	dropped  bool
	result   rop.Result[T]
}

// Guard takes ownership of op and subscribes to src. It never blocks; a
// failure to subscribe is reported by the first Poll that finds op still
// pending.
func Guard[T any](op future.Future[T], src interrupt.Source, opts ...Option) *Race[T] {
	o := options{mapErr: func(err error) error { return err }, log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Race[T]{op: op, opts: o}
	sub, err := src.Subscribe()
	if err != nil {
		r.subErr = fault("subscribe", err)
		return r
	}
	r.sub = sub
	return r
}

// Poll checks the operation and the interrupt subscription once each, in
// this order of precedence:
//
//  1. operation failed: its failure
//  2. operation succeeded: its value
//  3. subscription faulted: the *SubscriptionError
//  4. interrupt requested: the operation is dropped, ErrInterrupted
//  5. otherwise pending, with w registered on both sides
//
// Once resolved, Poll returns the same result and touches neither side.
func (r *Race[T]) Poll(w future.Waker) future.Poll[T] {
	if r.resolved {
		return future.Ready(r.result)
	}
	if r.dropped {
		return future.Ready(rop.Cancel[T](ErrDropped))
	}

	if p := r.op.Poll(w); p.IsReady() {
		res := p.Result()
		if res.IsSuccess() {
			return r.resolve(res)
		}
		return r.resolve(res.WithErr(r.opts.mapErr(res.Err())))
	}

	if r.subErr != nil {
		return r.resolveFault(r.subErr)
	}

	ready, err := r.sub.Poll(w)
	if err != nil {
		return r.resolveFault(fault("poll", err))
	}
	if ready {
		future.Drop(r.op)
		r.opts.log.Debug("operation interrupted")
		return r.resolve(rop.Cancel[T](r.opts.mapErr(interrupt.ErrInterrupted)))
	}

	return future.Pending[T]()
}

// Drop cancels an unresolved race: the operation is dropped and the
// subscription released. It has no effect on a resolved race.
func (r *Race[T]) Drop() {
	if r.resolved || r.dropped {
		return
	}
	r.dropped = true
	future.Drop(r.op)
	r.release()
	r.opts.log.Debug("race dropped before resolution")
}

// Resolved reports whether the race has produced its result.
func (r *Race[T]) Resolved() bool {
	return r.resolved
}

func (r *Race[T]) resolve(res rop.Result[T]) future.Poll[T] {
	r.resolved = true
	r.result = res
	r.release()
	return future.Ready(res)
}

func (r *Race[T]) resolveFault(err error) future.Poll[T] {
	r.opts.log.Warn("interrupt subscription failed", slog.Any("error", err))
	return r.resolve(rop.Fail[T](r.opts.mapErr(err)))
}

func (r *Race[T]) release() {
	r.op = nil
	if r.sub != nil {
		_ = r.sub.Close()
		r.sub = nil
	}
}

func fault(op string, err error) error {
	var se *interrupt.SubscriptionError
	if errors.As(err, &se) {
		return err
	}
	return &interrupt.SubscriptionError{Op: op, Err: err}
}

// Try runs fn in its own goroutine, races it against src and blocks until
// the race resolves or ctx ends. An interrupt cancels the context given to fn.
func Try[T any](ctx context.Context, src interrupt.Source, fn func(ctx context.Context) (T, error), opts ...Option) rop.Result[T] {
	return future.Block(ctx, Guard[T](future.Go(ctx, fn), src, opts...))
}

// Run is Try unpacked into (value, error).
func Run[T any](ctx context.Context, src interrupt.Source, fn func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	return Try(ctx, src, fn, opts...).Get()
}
