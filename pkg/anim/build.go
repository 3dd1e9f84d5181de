package anim

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/teslashibe/go-bbanim/pkg/bones"
	"github.com/teslashibe/go-bbanim/pkg/curve"
)

// Build turns a raw animation into an immutable Animation.
// Every error wraps ErrConfiguration.
func Build(name string, raw RawAnimation, r *bones.Resolver) (*Animation, error) {
	if math.IsNaN(raw.AnimationLength) || raw.AnimationLength <= 0 {
		return nil, fmt.Errorf("%w: %w: animation %q has length %g",
			ErrConfiguration, ErrInvalidAnimation, name, raw.AnimationLength)
	}

	a := &Animation{
		Name:     name,
		Duration: raw.AnimationLength,
		Loop:     bool(raw.Loop),
	}

	// Sorted so errors are reported deterministically.
	rawNames := make([]string, 0, len(raw.Bones))
	for n := range raw.Bones {
		rawNames = append(rawNames, n)
	}
	sort.Strings(rawNames)

	owner := make(map[bones.Bone]string, len(rawNames))
	for _, rawName := range rawNames {
		b, err := r.Resolve(rawName)
		if err != nil {
			return nil, fmt.Errorf("%w: animation %q: %w", ErrConfiguration, name, err)
		}
		if prev, dup := owner[b]; dup {
			return nil, fmt.Errorf("%w: %w: animation %q maps %q and %q to %s",
				ErrConfiguration, ErrInvalidAnimation, name, prev, rawName, b)
		}
		owner[b] = rawName

		rb := raw.Bones[rawName]
		for _, c := range channels {
			keys := rb.Rotation
			if c == bones.Position {
				keys = rb.Position
			}
			if keys == nil {
				continue
			}
			t, err := buildTrack(keys)
			if err != nil {
				return nil, fmt.Errorf("%w: animation %q bone %q %s: %w",
					ErrConfiguration, name, rawName, c, err)
			}
			a.tracks[b][c] = t
		}
	}

	return a, nil
}

// buildTrack parses time keys numerically and normalizes keyframe values.
func buildTrack(raw map[string]RawKeyframe) (*curve.Track, error) {
	keys := make([]curve.Keyframe, 0, len(raw))
	for label, k := range raw {
		t, err := strconv.ParseFloat(strings.TrimSpace(label), 64)
		if err != nil || math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
			return nil, fmt.Errorf("%w: bad keyframe time %q", ErrInvalidAnimation, label)
		}
		keys = append(keys, curve.Keyframe{
			Time:  t,
			Value: k.Value(),
			Mode:  k.Mode(),
		})
	}
	// NewTrack sorts by numeric time; map order is never relied on.
	return curve.NewTrack(keys)
}
