package core

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ib-77/ctrlc/pkg/rop"
)

type CancellationHandlers[In, Out any] struct {
	OnCancel            func(ctx context.Context, inputCh <-chan rop.Result[In], outCh chan<- rop.Result[Out])
	OnCancelUnprocessed func(ctx context.Context, unprocessed rop.Result[In], outCh chan<- rop.Result[Out])
	OnCancelProcessed   func(ctx context.Context, in rop.Result[In], processed rop.Result[Out], outCh chan<- rop.Result[Out])
}

// Locomotive pulls results from inputCh, runs engine on each and pushes the
// outcome to outCh until inputCh closes or ctx ends. Results the engine puts
// on the cancel track (an interrupted guarded stage, for instance) are
// forwarded like any other result.
func Locomotive[In, Out any](ctx context.Context, inputCh <-chan rop.Result[In], outCh chan<- rop.Result[Out],
	engine func(ctx context.Context, input rop.Result[In]) <-chan rop.Result[Out],
	handlers CancellationHandlers[In, Out],
	onSuccess func(ctx context.Context, in rop.Result[Out]), wg *sync.WaitGroup) {
	defer wg.Done()

	log := LoggerFrom(ctx)
	stop := func() {
		log.DebugContext(ctx, "locomotive stopped", slog.Any("error", ctx.Err()))
		if handlers.OnCancel != nil {
			handlers.OnCancel(ctx, inputCh, outCh)
		}
	}

	for {
		select {
		case <-ctx.Done():
			stop()
			return
		case in, ok := <-inputCh:
			if !ok {
				return
			}

			select {
			case <-ctx.Done():
				if handlers.OnCancelUnprocessed != nil {
					handlers.OnCancelUnprocessed(ctx, in, outCh)
				}
				stop()
				return
			case pr, running := <-engine(ctx, in):
				if !running {
					// engines close empty only when ctx ended mid-item
					if handlers.OnCancelUnprocessed != nil {
						handlers.OnCancelUnprocessed(ctx, in, outCh)
					}
					stop()
					return
				}

				select {
				case <-ctx.Done():
					if handlers.OnCancelProcessed != nil {
						handlers.OnCancelProcessed(ctx, in, pr, outCh)
					}
					stop()
					return
				case outCh <- pr:
					if pr.IsInterrupt() {
						log.DebugContext(ctx, "stage interrupted", slog.String("result_id", pr.Id().String()))
					}
					if onSuccess != nil {
						onSuccess(ctx, pr)
					}
				}
			}
		}
	}
}
