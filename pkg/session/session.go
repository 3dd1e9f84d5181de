// Package session keeps the set of live playback sessions served by the
// host process. Each session owns one player.Player and serializes access
// to it.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/teslashibe/go-bbanim/pkg/player"
	"github.com/teslashibe/go-bbanim/pkg/protocol"
)

// ErrNotFound is returned for an unknown session ID.
var ErrNotFound = errors.New("session: not found")

// EventSink receives lifecycle events for every session.
// Calls happen inside Tick while the session lock is held; implementations
// must not call back into the same session.
type EventSink interface {
	LoopEnd(session, animation string, iteration int)
	Finish(session, animation string)
}

// Session is one independently playing animation.
type Session struct {
	id      string
	created time.Time

	mu     sync.Mutex
	player *player.Player
	ticks  uint64
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Created returns the creation time.
func (s *Session) Created() time.Time {
	return s.created
}

// Tick advances the session by delta seconds.
func (s *Session) Tick(delta float64) (player.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	frame, ok := s.player.Tick(delta)
	if ok {
		s.ticks++
	}
	return frame, ok
}

// Current samples the session without advancing it.
func (s *Session) Current() player.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player.Current()
}

// Switch restarts the session on another animation.
func (s *Session) Switch(name string, opts ...player.Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player.Switch(name, opts...)
}

// Pause stops the session. It reports whether the state changed.
func (s *Session) Pause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player.Pause()
}

// Resume continues a paused session. It reports whether the state changed.
func (s *Session) Resume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player.Resume()
}

// Ticks returns how many ticks advanced the session.
func (s *Session) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Snapshot describes the session's playback state.
func (s *Session) Snapshot() protocol.StateData {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.player
	return protocol.StateData{
		Session:     s.id,
		Animation:   p.AnimationName(),
		State:       p.State().String(),
		Progress:    p.Progress(),
		LoopedTime:  p.LoopedTime(),
		Iteration:   p.Iteration(),
		Looping:     p.Looping(),
		Reversed:    p.Reversed(),
		ConnectCape: p.ConnectCape(),
		Speed:       p.Speed(),
		Animations:  p.AnimationNames(),
	}
}
