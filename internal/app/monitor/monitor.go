package monitor

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const DefaultInterval = time.Second

// Lister enumerates the fixture files to watch.
type Lister interface {
	List() ([]string, error)
}

type Option func(*Monitor)

func WithInterval(interval time.Duration) Option {
	return func(m *Monitor) {
		if interval > 0 {
			m.interval = interval
		}
	}
}

// Monitor polls a fixture directory and calls signal once when a file is
// added, removed or modified. It keeps polling until its context ends but never
// calls signal again.
type Monitor struct {
	lister   Lister
	signal   func()
	interval time.Duration

	mu       sync.Mutex
	states   map[string]time.Time
	signaled bool
}

func New(lister Lister, signal func(), opts ...Option) *Monitor {
	m := &Monitor{
		lister:   lister,
		signal:   signal,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start takes the baseline snapshot and starts polling in the background.
// The snapshot is never refreshed afterwards.
func (m *Monitor) Start(ctx context.Context) error {
	states, err := m.scan()
	if err != nil {
		return errors.Wrap(err, "initial fixture scan")
	}

	m.mu.Lock()
	m.states = states
	m.signaled = false
	m.mu.Unlock()

	log.WithFields(log.Fields{
		"files":    len(states),
		"interval": m.interval,
	}).Debug("watching fixtures")

	go m.watch(ctx)
	return nil
}

func (m *Monitor) Signaled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signaled
}

func (m *Monitor) watch(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

func (m *Monitor) poll() {
	m.mu.Lock()
	if m.signaled {
		m.mu.Unlock()
		return
	}
	reason, changed := m.changed()
	if changed {
		m.signaled = true
	}
	m.mu.Unlock()

	if changed {
		log.WithField("reason", reason).Info("fixture directory changed")
		m.signal()
	}
}

// changed compares the directory against the baseline. Callers hold m.mu.
func (m *Monitor) changed() (string, bool) {
	files, err := m.lister.List()
	if err != nil {
		log.Warnf("unable to list fixtures. %s", err.Error())
		return "listing failed", true
	}

	if len(files) != len(m.states) {
		return "files added or removed", true
	}
	for _, file := range files {
		if _, ok := m.states[file]; !ok {
			return "files added or removed", true
		}
	}

	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			return "file vanished: " + file, true
		}
		if !info.ModTime().Equal(m.states[file]) {
			return "file modified: " + file, true
		}
	}

	return "", false
}

func (m *Monitor) scan() (map[string]time.Time, error) {
	files, err := m.lister.List()
	if err != nil {
		return nil, err
	}

	states := make(map[string]time.Time, len(files))
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			// gone since listing; the first poll reports it as removed
			continue
		}
		states[file] = info.ModTime()
	}
	return states, nil
}
