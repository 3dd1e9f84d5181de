package curve

import (
	"fmt"
	"sort"
)

// Keyframe is a single control point. Mode governs the segment that ends at
// this keyframe.
type Keyframe struct {
	Time  float64 `json:"time"`
	Value Vec3    `json:"value"`
	Mode  Mode    `json:"mode"`
}

// Track is an ordered, immutable set of keyframes for one channel of one bone.
type Track struct {
	times []float64
	keys  []Keyframe
}

// NewTrack builds a track from keyframes in any order.
// The input slice is not retained.
func NewTrack(keys []Keyframe) (*Track, error) {
	if len(keys) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrDegenerateTrack, len(keys))
	}

	sorted := make([]Keyframe, len(keys))
	copy(sorted, keys)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time < sorted[j].Time
	})

	times := make([]float64, len(sorted))
	for i, k := range sorted {
		if i > 0 && k.Time == sorted[i-1].Time {
			return nil, fmt.Errorf("%w: %g", ErrDuplicateTime, k.Time)
		}
		times[i] = k.Time
	}

	return &Track{times: times, keys: sorted}, nil
}

// Len returns the number of keyframes.
func (t *Track) Len() int {
	return len(t.keys)
}

// Times returns a copy of the sorted keyframe times.
func (t *Track) Times() []float64 {
	out := make([]float64, len(t.times))
	copy(out, t.times)
	return out
}

// Keyframe returns the i-th keyframe in time order.
func (t *Track) Keyframe(i int) Keyframe {
	return t.keys[i]
}

// Keyframes returns a copy of all keyframes in time order.
func (t *Track) Keyframes() []Keyframe {
	out := make([]Keyframe, len(t.keys))
	copy(out, t.keys)
	return out
}

// Start returns the time of the first keyframe.
func (t *Track) Start() float64 {
	return t.times[0]
}

// End returns the time of the last keyframe.
func (t *Track) End() float64 {
	return t.times[len(t.times)-1]
}

// Span returns the time covered by the track.
func (t *Track) Span() float64 {
	return t.End() - t.Start()
}

// Segment returns the segment index to sample at the given time.
//
// Inside the track domain this is the Locate result. Past the last keyframe,
// and before the first one while looping, the last index is used, which
// holds the final value through the loop seam. Before the first keyframe of
// a clamped track segment 0 is used.
func (t *Track) Segment(time float64, looping bool) int {
	if i, ok := Locate(t.times, time); ok {
		return i
	}
	if !looping && time < t.times[0] {
		return 0
	}
	return len(t.times) - 1
}

// At samples the track at the given looped time.
func (t *Track) At(time float64, looping bool) Vec3 {
	return Sample(t, t.Segment(time, looping), time, looping)
}
