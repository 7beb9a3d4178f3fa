// Package interrupt turns the process interrupt signal into a broadcast
// stream that any number of independent listeners can poll without blocking.
//
// A Source hands out Subscriptions. Every subscription open when an interrupt
// is requested observes that request exactly once, so unrelated listeners
// never compete for a single notification. Hub is the in-memory Source used
// directly by tests and embedders; SignalSource feeds a Hub from os.Interrupt
// and Default returns the process-wide instance.
//
// Two error kinds leave this package. ErrInterrupted (type Error) means an
// interrupt was requested. *SubscriptionError means the mechanism itself
// failed (subscribing to a closed source, polling a closed or faulted
// subscription) and must not be mistaken for "no interrupt happened".
//
// Basic usage:
//
//	ctx, stop, err := interrupt.NotifyContext(context.Background(), interrupt.Default())
//	if err != nil {
//		return err
//	}
//	defer stop()
package interrupt
