package interrupt

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/ib-77/ctrlc/pkg/rop/future"
)

// Subscription is one listener's handle on a Source.
type Subscription interface {
	// Poll reports whether an interrupt was requested since the previous
	// true result, consuming that request. When it reports false with a nil
	// error, w is woken on the next request. Poll never blocks.
	Poll(w future.Waker) (bool, error)

	// Close releases the subscription. It is idempotent.
	Close() error
}

// Source hands out independent subscriptions to one interrupt event stream.
type Source interface {
	Subscribe() (Subscription, error)
}

// Hub is an in-memory Source. Every subscription registered when Notify is
// called observes that request; delivery never drops or starves a listener.
// All methods are safe for concurrent use.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]*subscription
	closed bool
	log    *slog.Logger
}

// Option configures a Hub or SignalSource.
type Option func(*options)

type options struct {
	log *slog.Logger
}

// WithLogger sets the logger used for delivery and lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewHub returns an open Hub with no subscriptions.
func NewHub(opts ...Option) *Hub {
	o := buildOptions(opts)
	return &Hub{
		subs: make(map[uuid.UUID]*subscription),
		log:  o.log,
	}
}

// Subscribe registers a new listener. It fails with a *SubscriptionError
// wrapping ErrSourceClosed once the hub is closed.
func (h *Hub) Subscribe() (Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, &SubscriptionError{Op: "subscribe", Err: ErrSourceClosed}
	}

	sub := &subscription{id: uuid.New(), hub: h}
	h.subs[sub.id] = sub
	return sub, nil
}

// Notify delivers one interrupt request to every registered subscription and
// returns how many were notified.
func (h *Hub) Notify() int {
	h.mu.RLock()
	subs := make([]*subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		sub.notify()
	}

	h.log.Debug("interrupt requested", slog.Int("listeners", len(subs)))
	return len(subs)
}

// Len returns the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close rejects new subscriptions and faults the open ones: their next Poll
// returns a *SubscriptionError wrapping ErrSourceClosed.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	subs := make([]*subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	clear(h.subs)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.fail(&SubscriptionError{Op: "poll", Err: ErrSourceClosed})
	}
	return nil
}

func (h *Hub) unsubscribe(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

type subscription struct {
	id      uuid.UUID
	hub     *Hub
	mu      sync.Mutex
	pending int
	fault   error
	closed  bool
	waker   future.Waker
}

func (s *subscription) Poll(w future.Waker) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closed:
		return false, &SubscriptionError{Op: "poll", Err: ErrSubscriptionClosed}
	case s.fault != nil:
		return false, s.fault
	case s.pending > 0:
		s.pending--
		return true, nil
	}

	s.waker = w
	return false, nil
}

func (s *subscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.waker = nil
	s.mu.Unlock()

	s.hub.unsubscribe(s.id)
	return nil
}

func (s *subscription) notify() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.pending++
	w := s.waker
	s.waker = nil
	s.mu.Unlock()

	if w != nil {
		w.Wake()
	}
}

func (s *subscription) fail(err error) {
	s.mu.Lock()
	if s.closed || s.fault != nil {
		s.mu.Unlock()
		return
	}
	s.fault = err
	w := s.waker
	s.waker = nil
	s.mu.Unlock()

	if w != nil {
		w.Wake()
	}
}
