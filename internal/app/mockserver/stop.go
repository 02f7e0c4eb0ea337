package mockserver

import (
	"sync"
)

// stopSignal is closed at most once. The first caller decides whether the
// serving loop should be restarted afterwards.
type stopSignal struct {
	done   chan struct{}
	mu     sync.Mutex
	closed bool
	reload bool
}

func newStopSignal() *stopSignal {
	return &stopSignal{
		done: make(chan struct{}),
	}
}

func (s *stopSignal) Reload() {
	s.stop(true)
}

func (s *stopSignal) Stop() {
	s.stop(false)
}

func (s *stopSignal) Done() <-chan struct{} {
	return s.done
}

func (s *stopSignal) Reloading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload
}

func (s *stopSignal) stop(reload bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.reload = reload
	close(s.done)
}
