package future

import (
	"context"
	"log/slog"
	"sync"

	"github.com/eapache/queue"

	"github.com/ib-77/ctrlc/pkg/rop"
)

// Block drives f on the calling goroutine until it resolves or ctx ends.
// Between polls it sleeps until f wakes it; it never spins. When ctx ends
// first, f is dropped and the result is a cancellation carrying ctx.Err().
func Block[T any](ctx context.Context, f Future[T]) rop.Result[T] {
	wake := make(chan struct{}, 1)
	w := WakerFunc(func() {
		select {
		case wake <- struct{}{}:
		default:
		}
	})

	for {
		if p := f.Poll(w); p.IsReady() {
			return p.Result()
		}

		select {
		case <-wake:
		case <-ctx.Done():
			Drop(f)
			return rop.Cancel[T](ctx.Err())
		}
	}
}

type task struct {
	exec   *Executor
	poll   func(w Waker) bool
	drop   func(err error)
	queued bool
	done   bool
}

func (t *task) Wake() {
	t.exec.schedule(t)
}

// Executor is a single-goroutine cooperative scheduler. Spawned futures are
// polled one at a time from a FIFO ready queue; a future is only re-polled
// after it wakes its task.
type Executor struct {
	mu     sync.Mutex
	ready  *queue.Queue
	live   map[*task]struct{}
	signal chan struct{}
	log    *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExecutorLogger sets the logger used for task lifecycle events.
func WithExecutorLogger(l *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		if l != nil {
			e.log = l
		}
	}
}

// NewExecutor returns an idle Executor; nothing runs until Run is called.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		ready:  queue.New(),
		live:   make(map[*task]struct{}),
		signal: make(chan struct{}, 1),
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Spawn hands f to e and returns a promise resolved with f's result once e
// has driven it to completion. Spawn never blocks; tasks run inside Run.
func Spawn[T any](e *Executor, f Future[T]) *Promise[T] {
	p := NewPromise[T]()
	t := &task{exec: e}
	t.poll = func(w Waker) bool {
		if r := f.Poll(w); r.IsReady() {
			p.Resolve(r.Result())
			return true
		}
		return false
	}
	t.drop = func(err error) {
		Drop(f)
		p.Resolve(rop.Cancel[T](err))
	}

	e.mu.Lock()
	e.live[t] = struct{}{}
	t.queued = true
	e.ready.Add(t)
	e.mu.Unlock()
	e.notify()

	return p
}

// Len returns the number of spawned tasks that have not resolved yet.
func (e *Executor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.live)
}

// Run polls spawned tasks until none is left or ctx ends. On ctx end every
// unresolved task is dropped, its promise resolves to a cancellation and Run
// returns ctx.Err().
func (e *Executor) Run(ctx context.Context) error {
	for {
		e.mu.Lock()
		if len(e.live) == 0 {
			e.mu.Unlock()
			return nil
		}

		if e.ready.Length() == 0 {
			e.mu.Unlock()
			select {
			case <-e.signal:
				continue
			case <-ctx.Done():
				e.dropAll(ctx.Err())
				return ctx.Err()
			}
		}

		t := e.ready.Remove().(*task)
		t.queued = false
		if t.done {
			// woken during the poll that resolved it
			e.mu.Unlock()
			continue
		}
		e.mu.Unlock()

		if t.poll(t) {
			e.mu.Lock()
			t.done = true
			delete(e.live, t)
			e.mu.Unlock()
		}

		if err := ctx.Err(); err != nil {
			e.dropAll(err)
			return err
		}
	}
}

func (e *Executor) schedule(t *task) {
	e.mu.Lock()
	if t.done || t.queued {
		e.mu.Unlock()
		return
	}
	t.queued = true
	e.ready.Add(t)
	e.mu.Unlock()
	e.notify()
}

func (e *Executor) notify() {
	select {
	case e.signal <- struct{}{}:
	default:
	}
}

func (e *Executor) dropAll(err error) {
	e.mu.Lock()
	tasks := make([]*task, 0, len(e.live))
	for t := range e.live {
		t.done = true
		tasks = append(tasks, t)
	}
	clear(e.live)
	for e.ready.Length() > 0 {
		e.ready.Remove()
	}
	e.mu.Unlock()

	if len(tasks) > 0 {
		e.log.Debug("executor stopped with unresolved tasks",
			slog.Int("dropped", len(tasks)), slog.Any("error", err))
	}
	for _, t := range tasks {
		t.drop(err)
	}
}
