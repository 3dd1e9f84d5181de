package anim

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/teslashibe/go-bbanim/pkg/curve"
)

// File is the decoded form of a Bedrock .animation.json document.
type File struct {
	FormatVersion string     `json:"format_version"`
	Animations    Animations `json:"animations"`
}

// Animations keeps animations in the order they appear in the document.
// The first entry is the default animation of a set.
type Animations []NamedAnimation

// NamedAnimation pairs an animation with its key in the document.
type NamedAnimation struct {
	Name      string
	Animation RawAnimation
}

// UnmarshalJSON decodes the animations object preserving key order.
func (a *Animations) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: animations must be an object", ErrInvalidAnimation)
	}

	seen := make(map[string]bool)
	var out Animations
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name := tok.(string)
		if seen[name] {
			return fmt.Errorf("%w: duplicate animation %q", ErrInvalidAnimation, name)
		}
		seen[name] = true

		var raw RawAnimation
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("animation %q: %w", name, err)
		}
		out = append(out, NamedAnimation{Name: name, Animation: raw})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*a = out
	return nil
}

// RawAnimation is a single animation as it appears in the source file.
type RawAnimation struct {
	Loop            LoopFlag           `json:"loop"`
	AnimationLength float64            `json:"animation_length"`
	Bones           map[string]RawBone `json:"bones"`
}

// LoopFlag decodes the loop field. Only a literal true enables looping;
// strings such as "hold_on_last_frame" and absent values mean false.
type LoopFlag bool

// UnmarshalJSON implements json.Unmarshaler.
func (l *LoopFlag) UnmarshalJSON(data []byte) error {
	*l = LoopFlag(bytes.Equal(bytes.TrimSpace(data), []byte("true")))
	return nil
}

// RawBone holds the keyframe maps of one bone, keyed by time strings.
type RawBone struct {
	Rotation map[string]RawKeyframe `json:"rotation,omitempty"`
	Position map[string]RawKeyframe `json:"position,omitempty"`
}

// RawKeyframe is either a bare vector or an object with pre/post values and
// an interpolation mode.
type RawKeyframe struct {
	Pre      *curve.Vec3
	Post     *curve.Vec3
	LerpMode string
}

type rawKeyframeObject struct {
	Pre      json.RawMessage `json:"pre"`
	Post     json.RawMessage `json:"post"`
	LerpMode string          `json:"lerp_mode"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (k *RawKeyframe) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		v, err := parseVec(data)
		if err != nil {
			return err
		}
		*k = RawKeyframe{Post: &v, LerpMode: curve.Linear.String()}
		return nil
	}

	var obj rawKeyframeObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	out := RawKeyframe{LerpMode: obj.LerpMode}
	if len(obj.Pre) > 0 && string(obj.Pre) != "null" {
		v, err := parseVec(obj.Pre)
		if err != nil {
			return fmt.Errorf("pre: %w", err)
		}
		out.Pre = &v
	}
	if len(obj.Post) > 0 && string(obj.Post) != "null" {
		v, err := parseVec(obj.Post)
		if err != nil {
			return fmt.Errorf("post: %w", err)
		}
		out.Post = &v
	}
	*k = out
	return nil
}

// Value returns the sampled value of the keyframe: post when present, pre as
// a fallback, zero otherwise.
func (k RawKeyframe) Value() curve.Vec3 {
	switch {
	case k.Post != nil:
		return *k.Post
	case k.Pre != nil:
		return *k.Pre
	default:
		return curve.Vec3{}
	}
}

// Mode returns the parsed interpolation mode.
func (k RawKeyframe) Mode() curve.Mode {
	return curve.ParseMode(k.LerpMode)
}

// parseVec accepts [x, y, z] where each component is a number or a numeric
// string, or a single number applied to all three components.
func parseVec(data []byte) (curve.Vec3, error) {
	var scalar json.Number
	if err := json.Unmarshal(data, &scalar); err == nil {
		f, err := scalar.Float64()
		if err != nil {
			return curve.Vec3{}, fmt.Errorf("%w: %s", ErrInvalidAnimation, data)
		}
		return curve.Vec3{f, f, f}, nil
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return curve.Vec3{}, fmt.Errorf("%w: keyframe value %s", ErrInvalidAnimation, data)
	}
	if len(parts) != 3 {
		return curve.Vec3{}, fmt.Errorf("%w: keyframe value needs 3 components, got %d", ErrInvalidAnimation, len(parts))
	}

	var v curve.Vec3
	for i, p := range parts {
		f, err := parseComponent(p)
		if err != nil {
			return curve.Vec3{}, err
		}
		v[i] = f
	}
	return v, nil
}

func parseComponent(data json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		}
		return 0, fmt.Errorf("%w: unsupported expression %q", ErrInvalidAnimation, s)
	}
	return 0, fmt.Errorf("%w: keyframe component %s", ErrInvalidAnimation, data)
}
