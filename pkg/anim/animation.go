// Package anim builds immutable animation track sets from Bedrock
// .animation.json documents and keeps them addressable by name.
package anim

import (
	"github.com/teslashibe/go-bbanim/pkg/bones"
	"github.com/teslashibe/go-bbanim/pkg/curve"
)

// channels lists the channels in the order they are sampled.
var channels = [...]bones.Channel{bones.Rotation, bones.Position}

// Animation is one named animation: per-bone tracks, a duration and the
// default loop flag. It is never mutated after Build.
type Animation struct {
	Name     string
	Duration float64
	Loop     bool

	tracks [bones.Count][2]*curve.Track
}

// Track returns the track for a bone channel, or nil when it is not animated.
func (a *Animation) Track(b bones.Bone, c bones.Channel) *curve.Track {
	if !b.Valid() || c < 0 || int(c) >= len(channels) {
		return nil
	}
	return a.tracks[b][c]
}

// Bones returns the animated bones in rig order.
func (a *Animation) Bones() []bones.Bone {
	var out []bones.Bone
	for _, b := range bones.Bones() {
		if a.tracks[b][bones.Rotation] != nil || a.tracks[b][bones.Position] != nil {
			out = append(out, b)
		}
	}
	return out
}

// Animates reports whether any channel of b is animated.
func (a *Animation) Animates(b bones.Bone) bool {
	return a.Track(b, bones.Rotation) != nil || a.Track(b, bones.Position) != nil
}

// Each calls fn for every animated bone channel in rig order, rotation first.
func (a *Animation) Each(fn func(b bones.Bone, c bones.Channel, t *curve.Track)) {
	for _, b := range bones.Bones() {
		for _, c := range channels {
			if t := a.tracks[b][c]; t != nil {
				fn(b, c, t)
			}
		}
	}
}

// TrackCount returns the number of animated bone channels.
func (a *Animation) TrackCount() int {
	n := 0
	a.Each(func(bones.Bone, bones.Channel, *curve.Track) { n++ })
	return n
}
