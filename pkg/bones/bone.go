// Package bones defines the canonical skeleton of the player model and maps
// bone names found in animation files onto it.
package bones

import (
	"fmt"
	"strings"
)

// Bone identifies a canonical bone of the player rig.
type Bone int

const (
	Head Bone = iota
	Body
	RightArm
	LeftArm
	RightLeg
	LeftLeg
	// All moves the whole model.
	All
	// Torso groups head, body and both arms.
	Torso
	Cape

	// Count is the number of canonical bones.
	Count = int(Cape) + 1
)

var boneNames = [Count]string{
	Head:     "head",
	Body:     "body",
	RightArm: "rightArm",
	LeftArm:  "leftArm",
	RightLeg: "rightLeg",
	LeftLeg:  "leftLeg",
	All:      "all",
	Torso:    "torso",
	Cape:     "cape",
}

// String returns the canonical name of the bone.
func (b Bone) String() string {
	if b.Valid() {
		return boneNames[b]
	}
	return fmt.Sprintf("bone(%d)", int(b))
}

// Valid reports whether b is one of the canonical bones.
func (b Bone) Valid() bool {
	return b >= 0 && int(b) < Count
}

// ParseBone looks up a bone by canonical name, ignoring case.
func ParseBone(name string) (Bone, bool) {
	for i, n := range boneNames {
		if strings.EqualFold(n, name) {
			return Bone(i), true
		}
	}
	return 0, false
}

// Bones returns every canonical bone in rig order.
func Bones() []Bone {
	out := make([]Bone, Count)
	for i := range out {
		out[i] = Bone(i)
	}
	return out
}

// MarshalText implements encoding.TextMarshaler.
func (b Bone) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Bone) UnmarshalText(text []byte) error {
	v, ok := ParseBone(string(text))
	if !ok {
		return fmt.Errorf("unknown bone %q", string(text))
	}
	*b = v
	return nil
}

// Channel is the animated property of a bone.
type Channel int

const (
	Rotation Channel = iota
	Position
)

// String returns the source-file key of the channel.
func (c Channel) String() string {
	switch c {
	case Rotation:
		return "rotation"
	case Position:
		return "position"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Channel) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Channel) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "rotation":
		*c = Rotation
	case "position":
		*c = Position
	default:
		return fmt.Errorf("unknown channel %q", string(text))
	}
	return nil
}
