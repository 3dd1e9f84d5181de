package session

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-bbanim/internal/log"
	"github.com/teslashibe/go-bbanim/pkg/anim"
	"github.com/teslashibe/go-bbanim/pkg/player"
)

// Manager creates and tracks sessions over one shared animation set.
type Manager struct {
	set    *anim.Set
	sink   EventSink
	base   []player.Option
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a manager. sink may be nil. The options apply to every
// session created by the manager.
func NewManager(set *anim.Set, sink EventSink, opts ...player.Option) *Manager {
	return &Manager{
		set:      set,
		sink:     sink,
		base:     opts,
		logger:   log.Component("session"),
		sessions: make(map[string]*Session),
	}
}

// Set returns the shared animation set.
func (m *Manager) Set() *anim.Set {
	return m.set
}

// Create starts a new session on the named animation, or the set's first
// animation when name is empty.
func (m *Manager) Create(name string, opts ...player.Option) (*Session, error) {
	s := &Session{
		id:      uuid.NewString(),
		created: time.Now(),
	}

	all := make([]player.Option, 0, len(m.base)+len(opts)+1)
	all = append(all, m.base...)
	all = append(all, opts...)
	all = append(all, player.WithListener(m.listenerFor(s.id)))

	p, err := player.New(m.set, name, all...)
	if err != nil {
		return nil, err
	}
	s.player = p

	m.mu.Lock()
	m.sessions[s.id] = s
	count := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info("session created", "session", s.id, "animation", p.AnimationName(), "sessions", count)
	return s, nil
}

func (m *Manager) listenerFor(id string) player.Listener {
	if m.sink == nil {
		return nil
	}
	return player.ListenerFuncs{
		LoopEnd: func(animation string, iteration int) {
			m.sink.LoopEnd(id, animation, iteration)
		},
		Finish: func(animation string) {
			m.sink.Finish(id, animation)
		},
	}
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// List returns every session, oldest first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].created.Equal(out[j].created) {
			return out[i].id < out[j].id
		}
		return out[i].created.Before(out[j].created)
	})
	return out
}

// Remove deletes a session.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	count := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	m.logger.Info("session removed", "session", id, "sessions", count)
	return nil
}

// Len returns the number of sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Switch restarts session id on another animation.
func (m *Manager) Switch(id, name string, opts ...player.Option) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	return s.Switch(name, opts...)
}

// Pause pauses session id. It reports whether the state changed.
func (m *Manager) Pause(id string) (bool, error) {
	s, err := m.Get(id)
	if err != nil {
		return false, err
	}
	return s.Pause(), nil
}

// Resume resumes session id. It reports whether the state changed.
func (m *Manager) Resume(id string) (bool, error) {
	s, err := m.Get(id)
	if err != nil {
		return false, err
	}
	return s.Resume(), nil
}

// Tick advances session id by delta seconds.
func (m *Manager) Tick(id string, delta float64) (player.Frame, bool, error) {
	s, err := m.Get(id)
	if err != nil {
		return player.Frame{}, false, err
	}
	frame, ok := s.Tick(delta)
	return frame, ok, nil
}
