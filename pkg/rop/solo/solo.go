package solo

import (
	"context"
	"errors"

	"github.com/ib-77/ctrlc/pkg/interrupt"
	"github.com/ib-77/ctrlc/pkg/rop"
	"github.com/ib-77/ctrlc/pkg/rop/future"
	"github.com/ib-77/ctrlc/pkg/rop/guard"
)

func Succeed[T any](input T) rop.Result[T] {
	return rop.Success(input)
}

func Fail[T any](err error) rop.Result[T] {
	return rop.Fail[T](err)
}

func Cancel[T any](err error) rop.Result[T] {
	return rop.Cancel[T](err)
}

func Validate[T any](ctx context.Context, input T,
	validate func(ctx context.Context, in T) (isValid bool, errMsg string)) rop.Result[T] {
	return AndValidate(ctx, Succeed(input), validate)
}

func AndValidate[T any](ctx context.Context, input rop.Result[T],
	validate func(ctx context.Context, in T) (valid bool, errMsg string)) rop.Result[T] {

	if !input.IsSuccess() {
		return input
	}
	if valid, errMsg := validate(ctx, input.Result()); !valid {
		return rop.Fail[T](errors.New(errMsg))
	}
	return input
}

// ValidateAll runs every validator against input and joins their failures.
// With breakOnError it stops at the first failure.
func ValidateAll[T any](
	ctx context.Context,
	input rop.Result[T],
	breakOnError bool,
	inputsF ...func(ctx context.Context, in rop.Result[T]) rop.Result[T]) rop.Result[T] {

	var err error
	return Join(
		ctx,
		input,
		breakOnError,
		func(ctx context.Context, current rop.Result[T]) rop.Result[T] {
			if current.IsFailure() {
				err = errors.Join(append(rop.GetErrors(err), current.Err())...)
			}
			if rop.IsNil(err) {
				return current
			}
			return rop.Fail[T](err)
		},
		inputsF...,
	)
}

func Switch[In any, Out any](ctx context.Context,
	input rop.Result[In],
	onSuccess func(ctx context.Context, r In) rop.Result[Out]) rop.Result[Out] {

	if !input.IsSuccess() {
		return rop.CancelFrom[In, Out](input)
	}
	return onSuccess(ctx, input.Result())
}

func Map[In any, Out any](ctx context.Context,
	input rop.Result[In],
	onSuccess func(ctx context.Context, r In) Out) rop.Result[Out] {

	if !input.IsSuccess() {
		return rop.CancelFrom[In, Out](input)
	}
	return rop.Success(onSuccess(ctx, input.Result()))
}

func Tee[T any](ctx context.Context,
	input rop.Result[T],
	onSuccess func(ctx context.Context, r rop.Result[T])) rop.Result[T] {

	if input.IsSuccess() {
		onSuccess(ctx, input)
	}
	return input
}

func TeeIf[T any](ctx context.Context,
	input rop.Result[T],
	condition func(ctx context.Context, r rop.Result[T]) bool,
	onSuccessAndCondition func(ctx context.Context, r rop.Result[T])) rop.Result[T] {

	if input.IsSuccess() && condition(ctx, input) {
		onSuccessAndCondition(ctx, input)
	}
	return input
}

func DoubleTee[T any](ctx context.Context, input rop.Result[T],
	onSuccess func(ctx context.Context, r T),
	onError func(ctx context.Context, err error),
	onCancel func(ctx context.Context, err error)) rop.Result[T] {

	switch {
	case input.IsSuccess():
		onSuccess(ctx, input.Result())
	case input.IsCancel():
		onCancel(ctx, input.Err())
	default:
		onError(ctx, input.Err())
	}
	return input
}

// DoubleMap maps a success like Map and reports the other tracks to onError
// or onCancel before passing them on unchanged.
func DoubleMap[In any, Out any](ctx context.Context, input rop.Result[In],
	onSuccess func(ctx context.Context, r In) Out,
	onError func(ctx context.Context, err error) Out,
	onCancel func(ctx context.Context, err error) Out) rop.Result[Out] {

	switch {
	case input.IsSuccess():
		return rop.Success(onSuccess(ctx, input.Result()))
	case input.IsCancel():
		onCancel(ctx, input.Err())
	default:
		onError(ctx, input.Err())
	}
	return rop.CancelFrom[In, Out](input)
}

func Try[In any, Out any](ctx context.Context, input rop.Result[In],
	onTryExecute func(ctx context.Context, r In) (Out, error)) rop.Result[Out] {

	if !input.IsSuccess() {
		return rop.CancelFrom[In, Out](input)
	}

	out, err := onTryExecute(ctx, input.Result())
	if err != nil {
		return rop.Fail[Out](err)
	}
	return rop.Success(out)
}

func FailOnError[T any](ctx context.Context, input rop.Result[T],
	maybeErr func(ctx context.Context, in T) error) rop.Result[T] {

	if !input.IsSuccess() {
		return input
	}
	if err := maybeErr(ctx, input.Result()); err != nil {
		return rop.Fail[T](err)
	}
	return input
}

// Guard is Try with the call raced against src: an interrupt request while
// onTryExecute runs cancels its context and puts the result on the cancel
// track with interrupt.ErrInterrupted.
func Guard[In any, Out any](ctx context.Context, src interrupt.Source, input rop.Result[In],
	onTryExecute func(ctx context.Context, r In) (Out, error), opts ...guard.Option) rop.Result[Out] {

	if !input.IsSuccess() {
		return rop.CancelFrom[In, Out](input)
	}

	op := future.Go(ctx, func(ctx context.Context) (Out, error) {
		return onTryExecute(ctx, input.Result())
	})
	return future.Block(ctx, guard.Guard[Out](op, src, opts...))
}

func Finally[In, Out any](ctx context.Context, input rop.Result[In],
	onSuccess func(ctx context.Context, r In) Out,
	onError func(ctx context.Context, err error) Out,
	onCancel func(ctx context.Context, err error) Out) Out {

	switch {
	case input.IsSuccess():
		return onSuccess(ctx, input.Result())
	case input.IsCancel():
		return onCancel(ctx, input.Err())
	default:
		return onError(ctx, input.Err())
	}
}

// Join feeds input through inputsF in order, folding each step with concat.
// It returns input untouched when there is nothing to run or ctx has ended,
// and stops early on ctx end or, with breakOnError, on the first failure.
func Join[T any](ctx context.Context,
	input rop.Result[T],
	breakOnError bool,
	concat func(ctx context.Context, current rop.Result[T]) rop.Result[T],
	inputsF ...func(ctx context.Context, in rop.Result[T]) rop.Result[T]) rop.Result[T] {

	if len(inputsF) == 0 || concat == nil || ctx.Err() != nil {
		return input
	}

	final := concat(ctx, inputsF[0](ctx, input))
	if final.IsFailure() && breakOnError {
		return final
	}

	for _, in := range inputsF[1:] {
		if ctx.Err() != nil {
			return final
		}

		next := concat(ctx, in(ctx, final))
		if next.IsFailure() && breakOnError {
			return next
		}
		final = next
	}
	return final
}
