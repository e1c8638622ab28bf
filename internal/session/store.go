package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/ribbonbot/core/logger"
)

// Store holds one State per identity. Each entry carries its own mutex so
// updates for a single identity are processed one at a time, in arrival
// order, while unrelated identities proceed concurrently.
type Store struct {
	mu      sync.Mutex
	entries map[int64]*entry
	ttl     time.Duration

	stopOnce sync.Once
	stop     chan struct{}
}

type entry struct {
	mu      sync.Mutex
	state   State
	touched time.Time
}

// NewStore creates a Store. A positive ttl starts a janitor that reclaims
// states untouched longer than ttl; zero disables expiry.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		entries: make(map[int64]*entry),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	if ttl > 0 {
		go s.janitor()
	}
	return s
}

// Update runs fn on the identity's state under its per-identity lock.
// All dialog transitions go through here, which is what serializes
// concurrent events for the same identity.
func (s *Store) Update(id int64, fn func(*State)) {
	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.state)
	e.touched = time.Now()
}

// Peek returns a deep copy of the identity's current state.
func (s *Store) Peek(id int64) State {
	s.mu.Lock()
	e, ok := s.entries[id]
	s.mu.Unlock()
	if !ok {
		return State{Flow: FlowIdle}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// ActiveFlow reports which flow currently owns the identity's input.
func (s *Store) ActiveFlow(id int64) Flow {
	return s.Peek(id).Flow
}

// Clear removes the identity's state entirely.
func (s *Store) Clear(id int64) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Close stops the expiry janitor.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Store) entry(id int64) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		e = &entry{state: State{Flow: FlowIdle}, touched: time.Now()}
		s.entries[id] = e
	}
	return e
}

// janitor reclaims abandoned drafts so an identity cannot hold state forever.
func (s *Store) janitor() {
	interval := s.ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

func (s *Store) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if !e.mu.TryLock() {
			continue
		}
		expired := now.Sub(e.touched) > s.ttl
		flow := e.state.Flow
		e.mu.Unlock()
		if expired {
			delete(s.entries, id)
			logger.Debug(logger.Background(), "session", "session.expired",
				slog.Int64("user_id", id),
				slog.String("flow", flow.String()),
			)
		}
	}
}
