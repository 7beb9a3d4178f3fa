package lite

import (
	"context"
	"sync"

	"github.com/ib-77/ctrlc/pkg/interrupt"
	"github.com/ib-77/ctrlc/pkg/rop"
	"github.com/ib-77/ctrlc/pkg/rop/core"
	"github.com/ib-77/ctrlc/pkg/rop/mass"
)

type Engine[In, Out any] func(ctx context.Context, input rop.Result[In]) <-chan rop.Result[Out]

func Run[T any](ctx context.Context, inputCh <-chan rop.Result[T],
	engine Engine[T, T], lines int) <-chan rop.Result[T] {
	return Turnout(ctx, inputCh, engine, lines)
}

// Turnout runs engine over inputCh on lines parallel locomotives. A zero or
// negative lines falls back to the worker count stored in ctx, then to one.
func Turnout[In, Out any](ctx context.Context, inputCh <-chan rop.Result[In],
	engine Engine[In, Out], lines int) <-chan rop.Result[Out] {

	if lines <= 0 {
		lines = core.GetWorkerMaxCount(ctx, 1)
	}

	out := make(chan rop.Result[Out])
	wg := &sync.WaitGroup{}

	for range lines {
		wg.Add(1)
		go core.Locomotive(ctx, inputCh, out, engine, core.CancellationHandlers[In, Out]{}, nil, wg)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

func Validate[T any](validate func(ctx context.Context, in T) (valid bool, errMsg string)) Engine[T, T] {
	return func(ctx context.Context, input rop.Result[T]) <-chan rop.Result[T] {
		return mass.Validating(ctx, input, validate, nil)
	}
}

func Switch[In, Out any](switchOnSuccess func(ctx context.Context, r In) rop.Result[Out]) Engine[In, Out] {
	return func(ctx context.Context, input rop.Result[In]) <-chan rop.Result[Out] {
		return mass.Switching(ctx, input, switchOnSuccess, nil)
	}
}

func Map[In, Out any](mapOnSuccess func(ctx context.Context, r In) Out) Engine[In, Out] {
	return func(ctx context.Context, input rop.Result[In]) <-chan rop.Result[Out] {
		return mass.Mapping(ctx, input, mapOnSuccess, nil)
	}
}

func DoubleMap[In, Out any](
	mapOnSuccess func(ctx context.Context, r In) Out,
	mapOnError func(ctx context.Context, err error) Out,
	mapOnCancel func(ctx context.Context, err error) Out) Engine[In, Out] {
	return func(ctx context.Context, input rop.Result[In]) <-chan rop.Result[Out] {
		return mass.DoubleMapping(ctx, input, mapOnSuccess, mapOnError, mapOnCancel, nil)
	}
}

func Tee[T any](sideEffect func(ctx context.Context, r rop.Result[T])) Engine[T, T] {
	return func(ctx context.Context, input rop.Result[T]) <-chan rop.Result[T] {
		return mass.Teeing(ctx, input, sideEffect, nil)
	}
}

func DoubleTee[T any](sideEffect func(ctx context.Context, r T),
	sideEffectOnError func(ctx context.Context, err error),
	sideEffectOnCancel func(ctx context.Context, err error)) Engine[T, T] {
	return func(ctx context.Context, input rop.Result[T]) <-chan rop.Result[T] {
		return mass.DoubleTeeing(ctx, input, sideEffect, sideEffectOnError, sideEffectOnCancel, nil)
	}
}

func Try[In, Out any](onTryExecute func(ctx context.Context, r In) (Out, error)) Engine[In, Out] {
	return func(ctx context.Context, input rop.Result[In]) <-chan rop.Result[Out] {
		return mass.Trying(ctx, input, onTryExecute, nil)
	}
}

// Guard is Try raced against src for every item: an interrupt while an item
// is in flight turns that item into a cancel result carrying
// interrupt.ErrInterrupted. Items entering the stage after the request start
// a fresh race.
func Guard[In, Out any](src interrupt.Source, onTryExecute func(ctx context.Context, r In) (Out, error)) Engine[In, Out] {
	return func(ctx context.Context, input rop.Result[In]) <-chan rop.Result[Out] {
		return mass.Guarding(ctx, src, input, onTryExecute, nil)
	}
}

func Finally[In, Out any](ctx context.Context, input <-chan rop.Result[In],
	handlers mass.FinallyHandlers[In, Out]) <-chan Out {
	return mass.Finalizing(ctx, input, handlers, mass.FinallyCancelHandlers[In, Out]{}, nil)
}
