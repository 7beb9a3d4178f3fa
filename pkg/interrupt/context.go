package interrupt

import (
	"context"
	"errors"

	"github.com/ib-77/ctrlc/pkg/rop/future"
)

// Wait blocks until sub observes an interrupt request, sub faults, or ctx
// ends. It returns ErrInterrupted, the subscription fault, or ctx.Err().
func Wait(ctx context.Context, sub Subscription) error {
	wake := make(chan struct{}, 1)
	w := future.WakerFunc(func() {
		select {
		case wake <- struct{}{}:
		default:
		}
	})

	for {
		ready, err := sub.Poll(w)
		if err != nil {
			return asFault("poll", err)
		}
		if ready {
			return ErrInterrupted
		}

		select {
		case <-wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// NotifyContext returns a copy of parent that is cancelled with cause
// ErrInterrupted when src delivers an interrupt request, or with the
// subscription fault when the mechanism fails. The returned stop function
// releases the subscription and should be deferred.
func NotifyContext(parent context.Context, src Source) (context.Context, context.CancelFunc, error) {
	sub, err := src.Subscribe()
	if err != nil {
		return parent, func() {}, asFault("subscribe", err)
	}

	ctx, cancel := context.WithCancelCause(parent)
	go func() {
		defer sub.Close()
		if err := Wait(ctx, sub); ctx.Err() == nil {
			cancel(err)
		}
	}()

	return ctx, func() { cancel(context.Canceled) }, nil
}

func asFault(op string, err error) error {
	var se *SubscriptionError
	if errors.As(err, &se) {
		return err
	}
	return &SubscriptionError{Op: op, Err: err}
}
