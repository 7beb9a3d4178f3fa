package interrupt

import (
	"errors"
	"fmt"
)

// Error marks an operation abandoned because an interrupt was requested.
// It carries no data; compare with errors.Is(err, ErrInterrupted).
type Error struct{}

func (Error) Error() string {
	return "keyboard interrupt"
}

// Interrupted lets packages that cannot import interrupt recognise the error.
func (Error) Interrupted() bool {
	return true
}

// ErrInterrupted is the value every interrupted race resolves with.
var ErrInterrupted error = Error{}

var (
	ErrSourceClosed       = errors.New("interrupt: source closed")
	ErrSubscriptionClosed = errors.New("interrupt: subscription closed")
)

// SubscriptionError reports that the interrupt mechanism itself failed, as
// opposed to an interrupt having been requested.
type SubscriptionError struct {
	Op  string
	Err error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("interrupt: %s failed: %v", e.Op, e.Err)
}

func (e *SubscriptionError) Unwrap() error {
	return e.Err
}

func (e *SubscriptionError) SubscriptionFault() bool {
	return true
}
