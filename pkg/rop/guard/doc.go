// Package guard races an asynchronous operation against an interrupt source
// so that Ctrl+C becomes an ordinary failure of the operation instead of a
// process-level event.
//
// Guard wraps any future.Future and returns a Race, which is a future too.
// Each Poll looks at the operation first and the interrupt second: an
// operation that has already concluded, successfully or not, always wins
// over an interrupt observed in the same step. An interrupt abandons only
// work that is still pending, and the race resolves to a cancel result
// carrying interrupt.ErrInterrupted. A broken subscription resolves to a
// failure carrying *interrupt.SubscriptionError rather than being ignored.
//
// Guarding is per stage: a continuation run after a race has resolved is not
// covered unless it is guarded itself.
//
//	res := guard.Try(ctx, interrupt.Default(), func(ctx context.Context) (Report, error) {
//		return build(ctx)
//	})
//	switch {
//	case res.IsInterrupt():
//		fmt.Println("stopped by user")
//	case rop.IsSubscriptionFault(res.Err()):
//		log.Fatal(res.Err())
//	case res.IsFailure():
//		return res.Err()
//	}
package guard
