package mass

import (
	"context"

	"github.com/ib-77/ctrlc/pkg/interrupt"
	"github.com/ib-77/ctrlc/pkg/rop"
	"github.com/ib-77/ctrlc/pkg/rop/core"
	"github.com/ib-77/ctrlc/pkg/rop/solo"
)

// lift runs step in its own goroutine and delivers its single result on the
// returned channel. If ctx ends first, onCancel sees the input and the channel
// closes empty.
func lift[In, Out any](ctx context.Context, input rop.Result[In],
	step func() rop.Result[Out],
	onCancel func(ctx context.Context, in rop.Result[In])) <-chan rop.Result[Out] {

	ch := make(chan rop.Result[Out], 1)
	out := make(chan rop.Result[Out])

	go func() {
		defer close(ch)

		if ctx.Err() == nil {
			ch <- step()
		}
	}()

	go func() {
		defer close(out)

		cancelled := func() {
			if onCancel != nil {
				onCancel(ctx, input)
			}
		}

		select {
		case pr, ok := <-ch:
			if !ok {
				cancelled()
				return
			}
			select {
			case out <- pr:
			case <-ctx.Done():
				cancelled()
			}
		case <-ctx.Done():
			cancelled()
		}
	}()

	return out
}

func Validating[T any](ctx context.Context, input rop.Result[T],
	validate func(ctx context.Context, in T) (valid bool, errMsg string),
	onCancel func(ctx context.Context, in rop.Result[T])) <-chan rop.Result[T] {
	return lift(ctx, input, func() rop.Result[T] {
		return solo.AndValidate(ctx, input, validate)
	}, onCancel)
}

func Switching[In, Out any](ctx context.Context, input rop.Result[In],
	switchOnSuccess func(ctx context.Context, r In) rop.Result[Out],
	onCancel func(ctx context.Context, in rop.Result[In])) <-chan rop.Result[Out] {
	return lift(ctx, input, func() rop.Result[Out] {
		return solo.Switch(ctx, input, switchOnSuccess)
	}, onCancel)
}

func Mapping[In, Out any](ctx context.Context, input rop.Result[In],
	mapOnSuccess func(ctx context.Context, r In) Out,
	onCancel func(ctx context.Context, in rop.Result[In])) <-chan rop.Result[Out] {
	return lift(ctx, input, func() rop.Result[Out] {
		return solo.Map(ctx, input, mapOnSuccess)
	}, onCancel)
}

func DoubleMapping[In, Out any](ctx context.Context, input rop.Result[In],
	mapOnSuccess func(ctx context.Context, r In) Out,
	mapOnError func(ctx context.Context, err error) Out,
	mapOnCancel func(ctx context.Context, err error) Out,
	onCancel func(ctx context.Context, in rop.Result[In])) <-chan rop.Result[Out] {
	return lift(ctx, input, func() rop.Result[Out] {
		return solo.DoubleMap(ctx, input, mapOnSuccess, mapOnError, mapOnCancel)
	}, onCancel)
}

func Teeing[T any](ctx context.Context, input rop.Result[T],
	sideEffect func(ctx context.Context, r rop.Result[T]),
	onCancel func(ctx context.Context, in rop.Result[T])) <-chan rop.Result[T] {
	return lift(ctx, input, func() rop.Result[T] {
		return solo.Tee(ctx, input, sideEffect)
	}, onCancel)
}

func DoubleTeeing[T any](ctx context.Context, input rop.Result[T],
	sideEffect func(ctx context.Context, r T),
	sideEffectOnError func(ctx context.Context, err error),
	sideEffectOnCancel func(ctx context.Context, err error),
	onCancel func(ctx context.Context, in rop.Result[T])) <-chan rop.Result[T] {
	return lift(ctx, input, func() rop.Result[T] {
		return solo.DoubleTee(ctx, input, sideEffect, sideEffectOnError, sideEffectOnCancel)
	}, onCancel)
}

func Trying[In, Out any](ctx context.Context, input rop.Result[In],
	onTryExecute func(ctx context.Context, r In) (Out, error),
	onCancel func(ctx context.Context, in rop.Result[In])) <-chan rop.Result[Out] {
	return lift(ctx, input, func() rop.Result[Out] {
		return solo.Try(ctx, input, onTryExecute)
	}, onCancel)
}

// Guarding is Trying with the call raced against src. An interrupt request
// yields a cancel result carrying interrupt.ErrInterrupted instead of ending
// the stage, so downstream stages and Finalizing still see it.
func Guarding[In, Out any](ctx context.Context, src interrupt.Source, input rop.Result[In],
	onTryExecute func(ctx context.Context, r In) (Out, error),
	onCancel func(ctx context.Context, in rop.Result[In])) <-chan rop.Result[Out] {
	return lift(ctx, input, func() rop.Result[Out] {
		res := solo.Guard(ctx, src, input, onTryExecute)
		if res.IsInterrupt() {
			core.LoggerFrom(ctx).DebugContext(ctx, "guarded stage interrupted")
		}
		return res
	}, onCancel)
}

type FinallyHandlers[In, Out any] struct {
	OnSuccess func(ctx context.Context, r In) Out
	OnError   func(ctx context.Context, err error) Out
	OnCancel  func(ctx context.Context, err error) Out
}

// FinallyCancelHandlers decide what Finalizing emits for work it still holds
// when ctx ends. OnBreak finalizes an unfinished input; when nil, Finalizing
// reports it through FinallyHandlers.OnCancel with context.Cause(ctx), so an
// interrupted pipeline yields interrupt.ErrInterrupted for every such item.
type FinallyCancelHandlers[In, Out any] struct {
	OnBreak       func(ctx context.Context, in rop.Result[In]) Out
	OnCancelValue func(ctx context.Context, in rop.Result[In],
		brokenF func(ctx context.Context, in rop.Result[In]) Out, outCh chan<- Out)
	OnCancelValues func(ctx context.Context, inputCh <-chan rop.Result[In],
		brokenF func(ctx context.Context, in rop.Result[In]) Out, outCh chan<- Out)
	OnCancelResult  func(ctx context.Context, out Out, outCh chan<- Out)
	OnCancelResults func(ctx context.Context, inputCh <-chan Out, outCh chan<- Out)
}

// Finalizing collapses every result from inputCh with handlers until inputCh
// closes or ctx ends. Interrupted results reach OnCancel. Once ctx ends, the
// input still queued, the item being finalized and finalized values not yet
// delivered go to cancelHandlers; zero handlers drop them.
func Finalizing[In, Out any](ctx context.Context, inputCh <-chan rop.Result[In],
	handlers FinallyHandlers[In, Out],
	cancelHandlers FinallyCancelHandlers[In, Out],
	onResult func(ctx context.Context, out Out)) <-chan Out {

	brokenF := cancelHandlers.OnBreak
	if brokenF == nil {
		brokenF = func(ctx context.Context, in rop.Result[In]) Out {
			if in.IsCancel() {
				return handlers.OnCancel(ctx, in.Err())
			}
			return handlers.OnCancel(ctx, cause(ctx))
		}
	}

	finalized := make(chan Out)
	out := make(chan Out)

	go func() {
		defer close(finalized)

		stop := func(in *rop.Result[In]) {
			if in != nil && cancelHandlers.OnCancelValue != nil {
				cancelHandlers.OnCancelValue(ctx, *in, brokenF, finalized)
			}
			if cancelHandlers.OnCancelValues != nil {
				cancelHandlers.OnCancelValues(ctx, inputCh, brokenF, finalized)
			}
		}

		for {
			select {
			case <-ctx.Done():
				stop(nil)
				return
			case in, ok := <-inputCh:
				if !ok {
					return
				}

				res := solo.Finally(ctx, in, handlers.OnSuccess, handlers.OnError, handlers.OnCancel)
				if ctx.Err() != nil {
					stop(&in)
					return
				}

				select {
				case <-ctx.Done():
					stop(&in)
					return
				case finalized <- res:
				}
			}
		}
	}()

	go func() {
		defer close(out)

		stop := func(res *Out) {
			if res != nil && cancelHandlers.OnCancelResult != nil {
				cancelHandlers.OnCancelResult(ctx, *res, out)
			}
			if cancelHandlers.OnCancelResults != nil {
				cancelHandlers.OnCancelResults(ctx, finalized, out)
			}
			// unblock the finalizing side whatever the handlers left behind
			for range finalized {
			}
		}

		for {
			select {
			case <-ctx.Done():
				stop(nil)
				return
			case res, ok := <-finalized:
				if !ok {
					return
				}

				select {
				case <-ctx.Done():
					stop(&res)
					return
				case out <- res:
					if onResult != nil {
						onResult(ctx, res)
					}
				}
			}
		}
	}()

	return out
}

func cause(ctx context.Context) error {
	if err := context.Cause(ctx); err != nil {
		return err
	}
	return ctx.Err()
}
