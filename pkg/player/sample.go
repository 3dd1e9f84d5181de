package player

import (
	"math"

	"github.com/teslashibe/go-bbanim/pkg/anim"
	"github.com/teslashibe/go-bbanim/pkg/bones"
	"github.com/teslashibe/go-bbanim/pkg/curve"
)

// LoopedTime folds raw progress into the animation's time domain: modulo the
// duration while looping, clamped to [0, duration] otherwise.
func LoopedTime(progress, duration float64, looping bool) float64 {
	if duration <= 0 {
		return 0
	}
	if looping {
		t := math.Mod(progress, duration)
		if t < 0 {
			t += duration
		}
		return t
	}
	return math.Max(0, math.Min(progress, duration))
}

// Evaluate samples every animated bone channel of a at loopedTime.
// It has no side effects and never fails.
func Evaluate(a *anim.Animation, loopedTime float64, looping bool) []Sample {
	samples := make([]Sample, 0, a.TrackCount())
	a.Each(func(b bones.Bone, c bones.Channel, t *curve.Track) {
		samples = append(samples, Sample{
			Bone:    b,
			Channel: c,
			Value:   t.At(loopedTime, looping),
		})
	})
	return samples
}
