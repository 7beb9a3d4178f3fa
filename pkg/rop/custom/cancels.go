package custom

import (
	"context"
	"errors"

	"github.com/ib-77/ctrlc/pkg/rop"
	"github.com/ib-77/ctrlc/pkg/rop/core"
	"github.com/ib-77/ctrlc/pkg/rop/mass"
)

var ErrCancelled = errors.New("operation cancelled")

// CancelRemaining returns handlers that report every item a locomotive still
// holds when ctx ends as a cancel result. The error is context.Cause(ctx), so
// a context from interrupt.NotifyContext yields interrupt.ErrInterrupted.
// core.WithProcessOptions(ctx, false) turns reporting off.
func CancelRemaining[In, Out any]() core.CancellationHandlers[In, Out] {
	return core.CancellationHandlers[In, Out]{
		OnCancel:            CancelRemainingResults[In, Out],
		OnCancelUnprocessed: CancelRemainingResult[In, Out],
		OnCancelProcessed: func(ctx context.Context, _ rop.Result[In], processed rop.Result[Out], outCh chan<- rop.Result[Out]) {
			CancelResult(ctx, processed, outCh)
		},
	}
}

// FinallyCancelRemaining is CancelRemaining for the finalizing stage: every
// queued or in-flight input is finalized through OnBreak (by default the
// OnCancel handler with context.Cause(ctx)) and every finalized value is
// still delivered.
func FinallyCancelRemaining[In, Out any]() mass.FinallyCancelHandlers[In, Out] {
	return mass.FinallyCancelHandlers[In, Out]{
		OnCancelValue:   CancelRemainingValue[In, Out],
		OnCancelValues:  CancelRemainingValues[In, Out],
		OnCancelResult:  CancelResult[Out],
		OnCancelResults: CancelResults[Out],
	}
}

func CancelRemainingResults[In, Out any](ctx context.Context,
	inputCh <-chan rop.Result[In], outCh chan<- rop.Result[Out]) {

	if !core.IsProcessRemainingEnabled(ctx, true) {
		return
	}
	for in := range inputCh {
		outCh <- cancelled[In, Out](ctx, in)
	}
}

func CancelRemainingResult[In, Out any](ctx context.Context, in rop.Result[In],
	outCh chan<- rop.Result[Out]) {

	if core.IsProcessRemainingEnabled(ctx, true) {
		outCh <- cancelled[In, Out](ctx, in)
	}
}

func CancelResult[T any](ctx context.Context, out T, outCh chan<- T) {
	if core.IsProcessRemainingEnabled(ctx, true) {
		outCh <- out
	}
}

func CancelResults[T any](ctx context.Context, inputCh <-chan T, outCh chan<- T) {
	if !core.IsProcessRemainingEnabled(ctx, true) {
		return
	}
	for in := range inputCh {
		outCh <- in
	}
}

func CancelRemainingValue[In, Out any](ctx context.Context, in rop.Result[In],
	brokenF func(ctx context.Context, in rop.Result[In]) Out, outCh chan<- Out) {

	if core.IsProcessRemainingEnabled(ctx, true) {
		outCh <- brokenF(ctx, in)
	}
}

func CancelRemainingValues[In, Out any](ctx context.Context, inputCh <-chan rop.Result[In],
	brokenF func(ctx context.Context, in rop.Result[In]) Out, outCh chan<- Out) {

	if !core.IsProcessRemainingEnabled(ctx, true) {
		return
	}
	for in := range inputCh {
		outCh <- brokenF(ctx, in)
	}
}

func cancelled[In, Out any](ctx context.Context, in rop.Result[In]) rop.Result[Out] {
	if in.IsCancel() {
		return rop.CancelFrom[In, Out](in)
	}
	if cause := context.Cause(ctx); cause != nil {
		return rop.Cancel[Out](cause)
	}
	return rop.Cancel[Out](ErrCancelled)
}
