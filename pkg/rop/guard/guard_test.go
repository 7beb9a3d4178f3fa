package guard_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ib-77/ctrlc/pkg/interrupt"
	"github.com/ib-77/ctrlc/pkg/rop"
	"github.com/ib-77/ctrlc/pkg/rop/future"
	"github.com/ib-77/ctrlc/pkg/rop/guard"
	"github.com/ib-77/ctrlc/pkg/rop/solo"
)

// countingFuture records how often the wrapped future is polled and dropped.
type countingFuture[T any] struct {
	inner   future.Future[T]
	polls   atomic.Int32
	dropped atomic.Bool
}

func (c *countingFuture[T]) Poll(w future.Waker) future.Poll[T] {
	c.polls.Add(1)
	return c.inner.Poll(w)
}

func (c *countingFuture[T]) Drop() {
	c.dropped.Store(true)
	future.Drop(c.inner)
}

// countingSource wraps a hub and counts subscription polls.
type countingSource struct {
	hub   *interrupt.Hub
	polls atomic.Int32
}

func (s *countingSource) Subscribe() (interrupt.Subscription, error) {
	sub, err := s.hub.Subscribe()
	if err != nil {
		return nil, err
	}
	return &countingSubscription{Subscription: sub, src: s}, nil
}

type countingSubscription struct {
	interrupt.Subscription
	src *countingSource
}

func (s *countingSubscription) Poll(w future.Waker) (bool, error) {
	s.src.polls.Add(1)
	return s.Subscription.Poll(w)
}

type brokenSource struct{ err error }

func (b brokenSource) Subscribe() (interrupt.Subscription, error) { return nil, b.err }

func TestGuard_SuccessDominance(t *testing.T) {
	t.Run("completes before any interrupt", func(t *testing.T) {
		hub := interrupt.NewHub()
		defer hub.Close()

		op := future.NewPromise[string]()
		race := guard.Guard[string](op, hub)
		assert.False(t, race.Poll(future.Noop).IsReady())

		op.Succeed("report")
		p := race.Poll(future.Noop)
		require.True(t, p.IsReady())
		assert.True(t, p.Result().IsSuccess())
		assert.Equal(t, "report", p.Result().Result())
	})

	t.Run("success and interrupt in the same step", func(t *testing.T) {
		hub := interrupt.NewHub()
		defer hub.Close()

		op := future.NewPromise[int]()
		race := guard.Guard[int](op, hub)

		op.Succeed(42)
		hub.Notify()

		res := race.Poll(future.Noop).Result()
		assert.True(t, res.IsSuccess())
		assert.Equal(t, 42, res.Result())
	})
}

func TestGuard_FailureDominance(t *testing.T) {
	diskFull := errors.New("disk full")

	hub := interrupt.NewHub()
	defer hub.Close()

	op := future.NewPromise[int]()
	race := guard.Guard[int](op, hub)

	op.Fail(diskFull)
	hub.Notify()

	res := race.Poll(future.Noop).Result()
	assert.True(t, res.IsFailure())
	assert.False(t, res.IsInterrupt())
	assert.ErrorIs(t, res.Err(), diskFull)
	assert.NotErrorIs(t, res.Err(), interrupt.ErrInterrupted)
}

func TestGuard_InterruptCapture(t *testing.T) {
	hub := interrupt.NewHub()
	defer hub.Close()

	op := &countingFuture[int]{inner: future.Never[int]()}
	race := guard.Guard[int](op, hub)

	var woken atomic.Int32
	w := future.WakerFunc(func() { woken.Add(1) })
	require.False(t, race.Poll(w).IsReady())

	hub.Notify()
	assert.Equal(t, int32(1), woken.Load(), "interrupt must wake the race")

	p := race.Poll(w)
	require.True(t, p.IsReady(), "resolves on the first poll after the request")
	res := p.Result()
	assert.True(t, res.IsCancel())
	assert.True(t, res.IsInterrupt())
	assert.ErrorIs(t, res.Err(), interrupt.ErrInterrupted)
	assert.True(t, op.dropped.Load())
	assert.Equal(t, 0, hub.Len(), "subscription released on resolution")
}

func TestGuard_SingleResolution(t *testing.T) {
	src := &countingSource{hub: interrupt.NewHub()}
	defer src.hub.Close()

	op := &countingFuture[int]{inner: future.NewPromise[int]()}
	race := guard.Guard[int](op, src)

	require.False(t, race.Poll(future.Noop).IsReady())
	src.hub.Notify()
	first := race.Poll(future.Noop)
	require.True(t, first.IsReady())
	require.True(t, race.Resolved())

	opPolls, subPolls := op.polls.Load(), src.polls.Load()
	for range 3 {
		again := race.Poll(future.Noop)
		require.True(t, again.IsReady())
		assert.Equal(t, first.Result().Id(), again.Result().Id())
	}
	assert.Equal(t, opPolls, op.polls.Load())
	assert.Equal(t, subPolls, src.polls.Load())
}

func TestGuard_Scoping(t *testing.T) {
	ctx := context.Background()
	hub := interrupt.NewHub()
	defer hub.Close()

	first := guard.Try(ctx, hub, func(context.Context) (int, error) { return 20, nil })
	require.True(t, first.IsSuccess())

	// The request lands after the guarded stage resolved.
	assert.Equal(t, 0, hub.Notify())
	assert.True(t, first.IsSuccess())

	next := solo.Try(ctx, first, func(_ context.Context, n int) (int, error) {
		time.Sleep(5 * time.Millisecond)
		return n + 1, nil
	})
	require.True(t, next.IsSuccess())
	assert.Equal(t, 21, next.Result())
}

func TestGuard_SubscriptionFault(t *testing.T) {
	t.Run("subscribe failure surfaces while pending", func(t *testing.T) {
		cause := errors.New("cannot register handler")
		race := guard.Guard[int](future.Never[int](), brokenSource{err: cause})

		res := race.Poll(future.Noop).Result()
		require.True(t, res.IsFailure())
		assert.False(t, res.IsCancel())
		var se *interrupt.SubscriptionError
		require.ErrorAs(t, res.Err(), &se)
		assert.Equal(t, "subscribe", se.Op)
		assert.ErrorIs(t, res.Err(), cause)
		assert.True(t, rop.IsSubscriptionFault(res.Err()))
	})

	t.Run("finished operation still wins over a broken source", func(t *testing.T) {
		race := guard.Guard[int](future.Done(rop.Success(1)), brokenSource{err: errors.New("x")})
		res := race.Poll(future.Noop).Result()
		assert.True(t, res.IsSuccess())
	})

	t.Run("source closed mid-race", func(t *testing.T) {
		hub := interrupt.NewHub()
		race := guard.Guard[int](future.Never[int](), hub)
		require.False(t, race.Poll(future.Noop).IsReady())

		require.NoError(t, hub.Close())
		res := race.Poll(future.Noop).Result()
		var se *interrupt.SubscriptionError
		require.ErrorAs(t, res.Err(), &se)
		assert.Equal(t, "poll", se.Op)
		assert.ErrorIs(t, res.Err(), interrupt.ErrSourceClosed)
		assert.False(t, res.IsInterrupt())
	})
}

func TestGuard_Drop(t *testing.T) {
	hub := interrupt.NewHub()
	defer hub.Close()

	op := &countingFuture[int]{inner: future.Never[int]()}
	race := guard.Guard[int](op, hub)
	require.Equal(t, 1, hub.Len())

	race.Drop()
	assert.True(t, op.dropped.Load())
	assert.Equal(t, 0, hub.Len())

	res := race.Poll(future.Noop).Result()
	assert.True(t, res.IsCancel())
	assert.ErrorIs(t, res.Err(), guard.ErrDropped)
	assert.False(t, race.Resolved())
}

type appError struct {
	kind string
	err  error
}

func (e *appError) Error() string { return e.kind + ": " + e.err.Error() }
func (e *appError) Unwrap() error { return e.err }

func TestGuard_ErrorMapper(t *testing.T) {
	toApp := guard.WithErrorMapper(func(err error) error {
		switch {
		case rop.IsInterrupt(err):
			return &appError{kind: "stopped", err: err}
		case rop.IsSubscriptionFault(err):
			return &appError{kind: "broken", err: err}
		default:
			return &appError{kind: "failed", err: err}
		}
	})

	hub := interrupt.NewHub()
	defer hub.Close()

	cases := []struct {
		name string
		op   future.Future[int]
		src  interrupt.Source
		kind string
	}{
		{"native failure", future.Done(rop.Fail[int](errors.New("disk full"))), hub, "failed"},
		{"interrupt", future.Never[int](), hub, "stopped"},
		{"fault", future.Never[int](), brokenSource{err: errors.New("x")}, "broken"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			race := guard.Guard(tc.op, tc.src, toApp)
			if tc.kind == "stopped" {
				require.False(t, race.Poll(future.Noop).IsReady())
				hub.Notify()
			}
			res := race.Poll(future.Noop).Result()

			var ae *appError
			require.ErrorAs(t, res.Err(), &ae)
			assert.Equal(t, tc.kind, ae.kind)
		})
	}

	t.Run("interrupt identity survives mapping", func(t *testing.T) {
		race := guard.Guard(future.Never[int](), hub, toApp)
		race.Poll(future.Noop)
		hub.Notify()
		res := race.Poll(future.Noop).Result()
		assert.True(t, res.IsInterrupt())
	})
}

func TestTry(t *testing.T) {
	ctx := context.Background()

	t.Run("scenario A: short task, no interrupt", func(t *testing.T) {
		hub := interrupt.NewHub()
		defer hub.Close()

		v, err := guard.Run(ctx, hub, func(context.Context) (string, error) {
			time.Sleep(20 * time.Millisecond)
			return "done", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "done", v)
	})

	t.Run("scenario B: endless task, immediate interrupt", func(t *testing.T) {
		hub := interrupt.NewHub()
		defer hub.Close()

		stopped := make(chan struct{})
		go func() {
			assert.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, time.Millisecond)
			hub.Notify()
		}()

		_, err := guard.Run(ctx, hub, func(ctx context.Context) (int, error) {
			<-ctx.Done()
			close(stopped)
			return 0, ctx.Err()
		})
		assert.ErrorIs(t, err, interrupt.ErrInterrupted)

		select {
		case <-stopped:
		case <-time.After(time.Second):
			t.Fatal("interrupted task was not cancelled")
		}
	})

	t.Run("scenario D: native failure beats interrupt", func(t *testing.T) {
		hub := interrupt.NewHub()
		defer hub.Close()

		diskFull := errors.New("disk full")
		op := future.NewPromise[int]()
		op.Fail(diskFull)
		hub.Notify()

		res := future.Block(ctx, guard.Guard[int](op, hub))
		assert.ErrorIs(t, res.Err(), diskFull)
		assert.False(t, res.IsInterrupt())
	})

	t.Run("context end drops the race", func(t *testing.T) {
		hub := interrupt.NewHub()
		defer hub.Close()

		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		res := guard.Try(cctx, hub, func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		})
		assert.True(t, res.IsCancel())
		assert.ErrorIs(t, res.Err(), context.DeadlineExceeded)
		assert.Equal(t, 0, hub.Len())
	})
}

func TestGuard_FanOut(t *testing.T) {
	ctx := context.Background()

	t.Run("scenario C: one request stops both races on one executor", func(t *testing.T) {
		hub := interrupt.NewHub()
		defer hub.Close()

		e := future.NewExecutor()
		a := future.Spawn(e, guard.Guard[int](future.Never[int](), hub))
		b := future.Spawn(e, guard.Guard[string](future.Never[string](), hub))

		go func() {
			assert.Eventually(t, func() bool { return hub.Len() == 2 }, time.Second, time.Millisecond)
			hub.Notify()
		}()

		runCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		require.NoError(t, e.Run(runCtx))

		assert.True(t, a.Await(ctx).IsInterrupt())
		assert.True(t, b.Await(ctx).IsInterrupt())
	})

	t.Run("scenario C: one request stops races on separate goroutines", func(t *testing.T) {
		hub := interrupt.NewHub()
		defer hub.Close()

		const n = 4
		var g errgroup.Group
		errs := make([]error, n)
		for i := range n {
			g.Go(func() error {
				_, errs[i] = guard.Run(ctx, hub, func(ctx context.Context) (int, error) {
					<-ctx.Done()
					return 0, ctx.Err()
				})
				return nil
			})
		}

		require.Eventually(t, func() bool { return hub.Len() == n }, time.Second, time.Millisecond)
		assert.Equal(t, n, hub.Notify())
		require.NoError(t, g.Wait())

		for i, err := range errs {
			assert.ErrorIs(t, err, interrupt.ErrInterrupted, fmt.Sprintf("race %d", i))
		}
	})
}
