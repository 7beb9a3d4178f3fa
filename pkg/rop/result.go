package rop

import (
	"time"

	"github.com/google/uuid"
)

type track uint8

const (
	trackEmpty track = iota
	trackSuccess
	trackFailure
	trackCancel
)

// Result is a single railway value: a success carrying T, a failure, or a
// cancellation (interrupts and context ends travel on the cancel track).
type Result[T any] struct {
	id        uuid.UUID
	createdAt time.Time
	result    T
	err       error
	track     track
}

func newResult[T any](t track, r T, err error) Result[T] {
	return Result[T]{
		id:        uuid.New(),
		createdAt: time.Now().UTC(),
		result:    r,
		err:       err,
		track:     t,
	}
}

func Success[T any](r T) Result[T] {
	return newResult(trackSuccess, r, nil)
}

func Fail[T any](err error) Result[T] {
	var zero T
	return newResult(trackFailure, zero, err)
}

func Cancel[T any](err error) Result[T] {
	var zero T
	return newResult(trackCancel, zero, err)
}

// CancelFrom moves a non-successful result onto another value type keeping
// its identity, track and error.
func CancelFrom[In, Out any](from Result[In]) Result[Out] {
	return Result[Out]{
		id:        from.id,
		createdAt: from.createdAt,
		err:       from.err,
		track:     from.track,
	}
}

// WithErr returns a copy of a failed or cancelled result carrying err.
// Successful results are returned unchanged.
func (r Result[T]) WithErr(err error) Result[T] {
	if r.track == trackSuccess {
		return r
	}
	r.err = err
	return r
}

func (r Result[T]) Result() T {
	return r.result
}

func (r Result[T]) Err() error {
	return r.err
}

func (r Result[T]) IsSuccess() bool {
	return r.track == trackSuccess
}

func (r Result[T]) IsFailure() bool {
	return r.track == trackFailure || r.track == trackCancel
}

func (r Result[T]) IsCancel() bool {
	return r.track == trackCancel
}

// IsInterrupt reports whether the result was cancelled by an interrupt request.
func (r Result[T]) IsInterrupt() bool {
	return r.track == trackCancel && IsInterrupt(r.err)
}

func (r Result[T]) HasResult() bool {
	return r.track == trackSuccess
}

func (r Result[T]) CreatedAt() time.Time {
	return r.createdAt
}

func (r Result[T]) IsEmpty() bool {
	return r.track == trackEmpty
}

func (r Result[T]) Id() uuid.UUID {
	return r.id
}

// Get unpacks the result into the conventional (value, error) pair.
func (r Result[T]) Get() (T, error) {
	return r.result, r.err
}
