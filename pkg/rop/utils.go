package rop

import (
	"context"
	"errors"
	"reflect"
)

func IsNil(i interface{}) bool {
	if i == nil || (reflect.ValueOf(i).Kind() == reflect.Ptr && reflect.ValueOf(i).IsNil()) {
		return true
	}
	return false
}

func GetErrors(err error) []error {
	if IsNil(err) {
		return []error{}
	}

	e, ok := err.(interface{ Unwrap() []error })
	if ok {
		return e.Unwrap()
	}

	return []error{err}
}

func IsCancellationError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || IsInterrupt(err)
}

// IsInterrupt reports whether err (or anything it wraps) marks an operation
// abandoned because an interrupt was requested.
func IsInterrupt(err error) bool {
	var m interface{ Interrupted() bool }
	return errors.As(err, &m) && m.Interrupted()
}

// IsSubscriptionFault reports whether err (or anything it wraps) is a failure
// of the interrupt mechanism itself rather than an interrupt.
func IsSubscriptionFault(err error) bool {
	var m interface{ SubscriptionFault() bool }
	return errors.As(err, &m) && m.SubscriptionFault()
}
