package state

import (
	"sync"
	"sync/atomic"

	"github.com/riskibarqy/socli/internal/domain/player"
)

// Store guards the single State with one lock. Callers must not perform I/O
// or script evaluation inside Update or View.
type Store struct {
	mu    sync.RWMutex
	state State
	busy  atomic.Int64
}

func NewStore() *Store {
	return &Store{state: Uninitialized{}}
}

// Initialize moves Uninitialized to Ready. It reports false for any other phase.
func (s *Store) Initialize(players []player.Player) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.(Uninitialized); !ok {
		return false
	}
	s.state = NewReady(players)
	return true
}

// Fail supersedes whatever phase is current.
func (s *Store) Fail(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Failed{Message: message}
}

// Update applies fn to the Ready phase and reports whether it ran.
func (s *Store) Update(fn func(*Ready)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ready, ok := s.state.(*Ready)
	if !ok {
		return false
	}
	fn(ready)
	return true
}

// View reads the Ready phase under the shared lock. fn must not retain ready.
func (s *Store) View(fn func(ready *Ready)) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ready, ok := s.state.(*Ready)
	if !ok {
		return false
	}
	fn(ready)
	return true
}

// Snapshot returns a deep copy that is safe to read without the lock.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if ready, ok := s.state.(*Ready); ok {
		return ready.clone()
	}
	return s.state
}

// Player returns a copy of the player with slug.
func (s *Store) Player(slug string) (player.Player, bool) {
	var (
		out   player.Player
		found bool
	)
	s.View(func(ready *Ready) {
		var p player.Player
		p, found = ready.Get(slug)
		if found {
			out = p.Clone()
		}
	})
	return out, found
}

// Roster returns copies of every player, in display order.
func (s *Store) Roster() []player.Player {
	var out []player.Player
	s.View(func(ready *Ready) {
		out = make([]player.Player, 0, len(ready.Players))
		for _, p := range ready.Players {
			out = append(out, p.Clone())
		}
	})
	return out
}

// SlugAt returns the slug at index modulo the roster size, with that size.
func (s *Store) SlugAt(index int) (string, int) {
	var (
		slug string
		size int
	)
	s.View(func(ready *Ready) {
		size = len(ready.Players)
		if size == 0 {
			return
		}
		i := index % size
		if i < 0 {
			i += size
		}
		slug = ready.Players[i].Slug
	})
	return slug, size
}

// BeginWork raises the busy indicator for one in-flight intent.
func (s *Store) BeginWork() {
	s.busy.Add(1)
}

func (s *Store) EndWork() {
	if s.busy.Add(-1) < 0 {
		s.busy.Store(0)
	}
}

func (s *Store) Busy() bool {
	return s.busy.Load() > 0
}
