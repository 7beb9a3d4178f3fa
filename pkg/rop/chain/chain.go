package chain

import (
	"context"

	"github.com/ib-77/ctrlc/pkg/interrupt"
	"github.com/ib-77/ctrlc/pkg/rop"
	"github.com/ib-77/ctrlc/pkg/rop/guard"
	"github.com/ib-77/ctrlc/pkg/rop/solo"
)

// Chain wraps a rop.Result with context to enable fluent chaining
type Chain[T any] struct {
	ctx    context.Context
	result rop.Result[T]
}

// Start creates a new chain from a rop.Result
func Start[T any](ctx context.Context, result rop.Result[T]) *Chain[T] {
	return &Chain[T]{
		ctx:    ctx,
		result: result,
	}
}

// FromValue creates a new chain from a successful value
func FromValue[T any](ctx context.Context, value T) *Chain[T] {
	return Start(ctx, rop.Success(value))
}

// Result returns the underlying rop.Result
func (c *Chain[T]) Result() rop.Result[T] {
	return c.result
}

// Interrupted reports whether a guarded step was stopped by an interrupt.
func (c *Chain[T]) Interrupted() bool {
	return c.result.IsInterrupt()
}

// Then chains a function that returns rop.Result[U]
func Then[T, U any](c *Chain[T], onSuccess func(context.Context, T) rop.Result[U]) *Chain[U] {
	return Start(c.ctx, solo.Switch(c.ctx, c.result, onSuccess))
}

// ThenTry chains a function that returns (U, error)
func ThenTry[T, U any](c *Chain[T], tryOnSuccess func(context.Context, T) (U, error)) *Chain[U] {
	return Start(c.ctx, solo.Try(c.ctx, c.result, tryOnSuccess))
}

// ThenGuard is ThenTry raced against src. Only this step listens for the
// interrupt; steps before and after it run unguarded.
func ThenGuard[T, U any](c *Chain[T], src interrupt.Source,
	tryOnSuccess func(context.Context, T) (U, error), opts ...guard.Option) *Chain[U] {
	return Start(c.ctx, solo.Guard(c.ctx, src, c.result, tryOnSuccess, opts...))
}

// Map chains a pure transformation function
func Map[T, U any](c *Chain[T], onSuccess func(context.Context, T) U) *Chain[U] {
	return Start(c.ctx, solo.Map(c.ctx, c.result, onSuccess))
}

// Ensure performs a side effect without changing the result
func (c *Chain[T]) Ensure(onSuccess func(context.Context, T)) *Chain[T] {
	return Start(c.ctx, solo.Tee(c.ctx, c.result,
		func(ctx context.Context, result rop.Result[T]) {
			onSuccess(ctx, result.Result())
		}))
}

// Finally collapses the chain into a final result using solo.Finally
func Finally[T, U any](c *Chain[T], onSuccess func(context.Context, T) U,
	onFailure func(context.Context, error) U, onCancel func(context.Context, error) U) U {
	return solo.Finally(c.ctx, c.result, onSuccess, onFailure, onCancel)
}
