package core

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/ctrlc/pkg/rop"
)

func TestOptions(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, 3, GetWorkerMaxCount(ctx, 3))
	assert.Equal(t, 8, GetWorkerMaxCount(WithWorkerOptions(ctx, 8), 3))
	assert.Equal(t, 3, GetWorkerMaxCount(WithWorkerOptions(ctx, 0), 3))

	assert.True(t, IsProcessRemainingEnabled(ctx, true))
	assert.False(t, IsProcessRemainingEnabled(WithProcessOptions(ctx, false), true))

	assert.Same(t, slog.Default(), LoggerFrom(ctx))
	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, l, LoggerFrom(WithLogger(ctx, l)))
	assert.Same(t, slog.Default(), LoggerFrom(WithLogger(ctx, nil)))
}

func TestToChanAndBack(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, []int{1, 2, 3}, FromChanMany(ctx, ToChanMany(ctx, []int{1, 2, 3})))
	assert.Equal(t, 5, FromChanFirstOrDefault(ctx, ToChan(ctx, 5), -1))

	empty := make(chan int)
	close(empty)
	assert.Equal(t, -1, FromChanFirstOrDefault(ctx, empty, -1))

	results := FromChanMany(ctx, ToChanManyResults(ctx, []string{"a", "b"}))
	require.Len(t, results, 2)
	assert.True(t, results[0].IsSuccess())
	assert.Equal(t, "b", results[1].Result())
}

func TestToChanHandlers(t *testing.T) {
	t.Run("start fail", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var skipped []int
		ch := ToChanManyResultsWithHandlers(ctx, ToChanHandlers[int]{
			OnStartFail: func(_ context.Context, in []int) { skipped = in },
		}, []int{1, 2})

		for range ch {
			t.Fatal("nothing should be sent")
		}
		assert.Equal(t, []int{1, 2}, skipped)
	})

	t.Run("break", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		var rest []int
		done := make(chan struct{})
		ch := ToChanManyResultsWithHandlers(ctx, ToChanHandlers[int]{
			OnBreak: func(_ context.Context, r []int) {
				rest = r
				close(done)
			},
		}, []int{1, 2, 3})

		first := <-ch
		assert.Equal(t, 1, first.Result())
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("OnBreak was not called")
		}
		assert.Equal(t, []int{2, 3}, rest)
	})
}

func TestLocomotive(t *testing.T) {
	double := func(_ context.Context, in rop.Result[int]) <-chan rop.Result[int] {
		ch := make(chan rop.Result[int], 1)
		ch <- rop.Success(in.Result() * 2)
		close(ch)
		return ch
	}

	t.Run("forwards every result", func(t *testing.T) {
		ctx := context.Background()
		out := make(chan rop.Result[int], 3)
		var forwarded int
		wg := &sync.WaitGroup{}
		wg.Add(1)

		Locomotive(ctx, ToChanManyResults(ctx, []int{1, 2, 3}), out, double,
			CancellationHandlers[int, int]{},
			func(context.Context, rop.Result[int]) { forwarded++ }, wg)
		wg.Wait()
		close(out)

		var got []int
		for r := range out {
			got = append(got, r.Result())
		}
		assert.Equal(t, []int{2, 4, 6}, got)
		assert.Equal(t, 3, forwarded)
	})

	t.Run("engine closing empty hands the item to the handlers", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		in := make(chan rop.Result[int], 1)
		in <- rop.Success(7)

		abandon := func(ctx context.Context, _ rop.Result[int]) <-chan rop.Result[int] {
			ch := make(chan rop.Result[int])
			cancel()
			close(ch)
			return ch
		}

		out := make(chan rop.Result[int], 2)
		var unprocessed []int
		stopped := false
		wg := &sync.WaitGroup{}
		wg.Add(1)

		Locomotive(ctx, in, out, abandon, CancellationHandlers[int, int]{
			OnCancel: func(context.Context, <-chan rop.Result[int], chan<- rop.Result[int]) {
				stopped = true
			},
			OnCancelUnprocessed: func(_ context.Context, r rop.Result[int], o chan<- rop.Result[int]) {
				unprocessed = append(unprocessed, r.Result())
				o <- rop.Cancel[int](errors.New("skipped"))
			},
		}, nil, wg)
		wg.Wait()

		assert.Equal(t, []int{7}, unprocessed)
		assert.True(t, stopped)
		require.Len(t, out, 1)
		assert.True(t, (<-out).IsCancel())
	})
}
