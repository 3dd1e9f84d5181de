// Package player advances playback of an animation set and samples every
// animated bone channel on each tick.
//
// A Player is a small state machine (playing, paused, finished) that owns
// its progress and fires loop-end and finish notifications at most once per
// condition. It is not safe for concurrent use; callers serialize Tick,
// Switch and Pause on the same Player.
package player

import (
	"github.com/teslashibe/go-bbanim/pkg/bones"
	"github.com/teslashibe/go-bbanim/pkg/curve"
)

// State is the playback state of a Player.
type State int

const (
	// StatePlaying means Tick advances progress.
	StatePlaying State = iota

	// StatePaused means Tick is a no-op until Resume.
	StatePaused

	// StateFinished means a non-looping animation ran past its end.
	StateFinished
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Sample is the value of one bone channel at the sampled time.
// Rotations are Euler degrees, positions are model-unit offsets from the
// bone's rest position.
type Sample struct {
	Bone    bones.Bone    `json:"bone"`
	Channel bones.Channel `json:"channel"`
	Value   curve.Vec3    `json:"value"`
}

// Frame is the result of one tick.
type Frame struct {
	Animation   string   `json:"animation"`
	Progress    float64  `json:"progress"`
	LoopedTime  float64  `json:"looped_time"`
	Looping     bool     `json:"looping"`
	Iteration   int      `json:"iteration"`
	State       State    `json:"state"`
	ConnectCape bool     `json:"connect_cape"`
	Samples     []Sample `json:"samples"`
}

// Listener receives lifecycle notifications from a Player.
// Callbacks run synchronously inside Tick.
type Listener interface {
	// OnLoopEnd is called once each time a looping animation completes an
	// iteration.
	OnLoopEnd(animation string, iteration int)

	// OnFinish is called once when a non-looping animation ends.
	OnFinish(animation string)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	LoopEnd func(animation string, iteration int)
	Finish  func(animation string)
}

// OnLoopEnd implements Listener.
func (l ListenerFuncs) OnLoopEnd(animation string, iteration int) {
	if l.LoopEnd != nil {
		l.LoopEnd(animation, iteration)
	}
}

// OnFinish implements Listener.
func (l ListenerFuncs) OnFinish(animation string) {
	if l.Finish != nil {
		l.Finish(animation)
	}
}
