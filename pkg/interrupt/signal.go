package interrupt

import (
	"log/slog"
	"os"
	"os/signal"
	"sync"
)

// SignalSource is a Source fed by the process interrupt signal (Ctrl+C).
// Signal delivery is registered lazily on the first Subscribe, so building
// one has no process-wide effect until it is used.
type SignalSource struct {
	hub   *Hub
	log   *slog.Logger
	start sync.Once
	stop  sync.Once
	ch    chan os.Signal
	quit  chan struct{}
	done  chan struct{}
}

// NewSignalSource returns a source that starts listening for os.Interrupt on
// its first Subscribe.
func NewSignalSource(opts ...Option) *SignalSource {
	o := buildOptions(opts)
	return &SignalSource{
		hub:  NewHub(opts...),
		log:  o.log,
		ch:   make(chan os.Signal, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

var defaultSource = sync.OnceValue(func() *SignalSource {
	return NewSignalSource()
})

// Default returns the process-wide Ctrl+C source shared by every caller.
func Default() *SignalSource {
	return defaultSource()
}

func (s *SignalSource) Subscribe() (Subscription, error) {
	s.start.Do(s.listen)
	return s.hub.Subscribe()
}

// Len returns the number of open subscriptions.
func (s *SignalSource) Len() int {
	return s.hub.Len()
}

// Close stops signal delivery and faults the open subscriptions.
func (s *SignalSource) Close() error {
	s.stop.Do(func() {
		close(s.quit)
		// listen never ran: nothing to wait for
		s.start.Do(func() { close(s.done) })
		<-s.done
	})
	return s.hub.Close()
}

func (s *SignalSource) listen() {
	signal.Notify(s.ch, os.Interrupt)
	s.log.Debug("interrupt signal handler registered")

	go func() {
		defer close(s.done)
		defer signal.Stop(s.ch)

		for {
			select {
			case sig := <-s.ch:
				s.log.Debug("interrupt signal received", slog.String("signal", sig.String()))
				s.hub.Notify()
			case <-s.quit:
				return
			}
		}
	}()
}
