package player

import "math"

type options struct {
	loop        *bool
	connectCape bool
	reversed    bool
	speed       float64
	listener    Listener
}

func defaultOptions() options {
	return options{speed: 1}
}

// Option configures a Player or a single animation switch.
type Option func(*options)

// WithLoop overrides the animation's own loop flag.
func WithLoop(loop bool) Option {
	return func(o *options) {
		o.loop = &loop
	}
}

// WithConnectCape asks the rig to attach the cape to the body when the cape
// is not animated itself. The Player only carries the flag.
func WithConnectCape(connect bool) Option {
	return func(o *options) {
		o.connectCape = connect
	}
}

// WithReversed plays the animation backwards.
func WithReversed(reversed bool) Option {
	return func(o *options) {
		o.reversed = reversed
	}
}

// WithSpeed scales every tick delta. Non-positive values are ignored.
func WithSpeed(speed float64) Option {
	return func(o *options) {
		if speed > 0 && !math.IsInf(speed, 0) {
			o.speed = speed
		}
	}
}

// WithListener sets the lifecycle listener.
func WithListener(l Listener) Option {
	return func(o *options) {
		o.listener = l
	}
}
