package player

import (
	"math"

	"github.com/teslashibe/go-bbanim/pkg/anim"
)

// Player plays animations from a shared Set.
type Player struct {
	set      *anim.Set
	base     options
	opts     options
	listener Listener

	current       *anim.Animation
	state         State
	progress      float64
	iteration     int
	finishedFired bool
}

// New creates a player positioned at the start of the named animation, or
// of the set's first animation when name is empty. The options become the
// player's defaults for every later Switch.
func New(set *anim.Set, name string, opts ...Option) (*Player, error) {
	base := defaultOptions()
	for _, opt := range opts {
		opt(&base)
	}

	p := &Player{
		set:      set,
		base:     base,
		listener: base.listener,
	}
	if err := p.Switch(name); err != nil {
		return nil, err
	}
	return p, nil
}

// Switch restarts playback on another animation. Options given here apply
// on top of the player's defaults for this animation only; WithListener is
// ignored.
func (p *Player) Switch(name string, opts ...Option) error {
	a, err := p.set.Resolve(name)
	if err != nil {
		return err
	}

	o := p.base
	for _, opt := range opts {
		opt(&o)
	}

	p.opts = o
	p.current = a
	p.progress = 0
	p.iteration = 0
	p.finishedFired = false
	p.state = StatePlaying
	return nil
}

// Tick advances playback by delta seconds and samples every animated bone
// channel. It reports false, and does nothing, while paused or finished.
func (p *Player) Tick(delta float64) (Frame, bool) {
	if p.state != StatePlaying {
		return Frame{}, false
	}
	if delta < 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
		delta = 0
	}

	a := p.current
	old := p.progress
	p.progress += delta * p.opts.speed

	looping := p.Looping()
	looped := p.LoopedTime()
	samples := Evaluate(a, looped, looping)

	iteration := completedLoops(old, a.Duration)
	if looping && iteration > p.iteration {
		p.iteration = iteration
		if p.listener != nil {
			p.listener.OnLoopEnd(a.Name, iteration)
		}
	}

	if !looping && old >= a.Duration && !p.finishedFired {
		p.state = StateFinished
		p.finishedFired = true
		if p.listener != nil {
			p.listener.OnFinish(a.Name)
		}
	}

	return Frame{
		Animation:   a.Name,
		Progress:    p.progress,
		LoopedTime:  looped,
		Looping:     looping,
		Iteration:   p.iteration,
		State:       p.state,
		ConnectCape: p.opts.connectCape,
		Samples:     samples,
	}, true
}

// Current samples the pose at the current progress without advancing.
func (p *Player) Current() Frame {
	looping := p.Looping()
	looped := p.LoopedTime()
	return Frame{
		Animation:   p.current.Name,
		Progress:    p.progress,
		LoopedTime:  looped,
		Looping:     looping,
		Iteration:   p.iteration,
		State:       p.state,
		ConnectCape: p.opts.connectCape,
		Samples:     Evaluate(p.current, looped, looping),
	}
}

// Pause stops progress. It reports whether the state changed.
func (p *Player) Pause() bool {
	if p.state != StatePlaying {
		return false
	}
	p.state = StatePaused
	return true
}

// Resume continues paused playback. It reports whether the state changed.
func (p *Player) Resume() bool {
	if p.state != StatePaused {
		return false
	}
	p.state = StatePlaying
	return true
}

// SetListener replaces the lifecycle listener.
func (p *Player) SetListener(l Listener) {
	p.listener = l
}

// State returns the current playback state.
func (p *Player) State() State {
	return p.state
}

// Animation returns the current animation.
func (p *Player) Animation() *anim.Animation {
	return p.current
}

// AnimationName returns the name of the current animation.
func (p *Player) AnimationName() string {
	return p.current.Name
}

// AnimationNames returns every animation the player can switch to.
func (p *Player) AnimationNames() []string {
	return p.set.Names()
}

// Progress returns the raw playback time in seconds since the last switch.
func (p *Player) Progress() float64 {
	return p.progress
}

// LoopedTime returns the progress folded into the animation's time domain,
// mirrored when playing in reverse.
func (p *Player) LoopedTime() float64 {
	t := LoopedTime(p.progress, p.current.Duration, p.Looping())
	if p.opts.reversed {
		t = p.current.Duration - t
	}
	return t
}

// Iteration returns the number of completed loops.
func (p *Player) Iteration() int {
	return p.iteration
}

// Looping reports whether the current animation loops, honouring the
// loop override.
func (p *Player) Looping() bool {
	if p.opts.loop != nil {
		return *p.opts.loop
	}
	return p.current.Loop
}

// ConnectCape reports whether the cape should follow the body.
func (p *Player) ConnectCape() bool {
	return p.opts.connectCape
}

// Reversed reports whether playback runs backwards.
func (p *Player) Reversed() bool {
	return p.opts.reversed
}

// Speed returns the tick delta multiplier.
func (p *Player) Speed() float64 {
	return p.opts.speed
}

// maxIteration bounds the loop counter for very long playback.
const maxIteration = math.MaxInt32

// completedLoops returns floor(progress/duration), saturated at maxIteration.
func completedLoops(progress, duration float64) int {
	n := math.Floor(progress / duration)
	if n >= maxIteration {
		return maxIteration
	}
	if n < 0 || math.IsNaN(n) {
		return 0
	}
	return int(n)
}
