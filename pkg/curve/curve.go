// Package curve holds keyframe tracks and the two interpolation laws used to
// sample them: linear and uniform Catmull-Rom.
//
// Tracks are immutable once built and may be shared between any number of
// players without locking.
package curve

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a three component sample value: a position offset in model units
// or an Euler rotation in degrees.
type Vec3 = mgl64.Vec3

var (
	// ErrDegenerateTrack is returned when a track has fewer than two keyframes.
	ErrDegenerateTrack = errors.New("track needs at least two keyframes")

	// ErrDuplicateTime is returned when two keyframes share the same time.
	ErrDuplicateTime = errors.New("duplicate keyframe time")
)
