// Package rig converts sampled bone channels into scene-ready transforms for
// the player model. It never holds scene objects; callers apply the returned
// Pose to whatever scene graph they use.
package rig

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-bbanim/pkg/bones"
	"github.com/teslashibe/go-bbanim/pkg/player"
)

// Group offsets used when bones are re-parented.
var (
	// TorsoOffset lifts the torso group so it pivots at the hips.
	TorsoOffset = mgl64.Vec3{0, 8, 0}

	// CapeOffset places the cape group under the body.
	CapeOffset = mgl64.Vec3{0, -1, 0}
)

// Quat is a rotation quaternion in x, y, z, w order.
type Quat [4]float64

// Transform is the local transform of one bone.
type Transform struct {
	Bone bones.Bone `json:"bone"`

	// Parent is the bone this one is grouped under, if any.
	Parent *bones.Bone `json:"parent,omitempty"`

	// GroupOffset is the translation of the group that holds this bone.
	GroupOffset mgl64.Vec3 `json:"group_offset"`

	Position mgl64.Vec3 `json:"position"`
	Rotation Quat       `json:"rotation"`
	Animated bool       `json:"animated"`
}

// Quat returns the rotation as an mgl64 quaternion.
func (t Transform) Quat() mgl64.Quat {
	return mgl64.Quat{W: t.Rotation[3], V: mgl64.Vec3{t.Rotation[0], t.Rotation[1], t.Rotation[2]}}
}

// Matrix returns the local transform matrix including the group offset.
func (t Transform) Matrix() mgl64.Mat4 {
	pos := t.Position.Add(t.GroupOffset)
	return mgl64.Translate3D(pos[0], pos[1], pos[2]).Mul4(t.Quat().Mat4())
}

// Pose is the transform of every bone in rig order.
type Pose struct {
	Animation  string                 `json:"animation,omitempty"`
	LoopedTime float64                `json:"looped_time"`
	TorsoGroup bool                   `json:"torso_group"`
	CapeOnBody bool                   `json:"cape_on_body"`
	Bones      [bones.Count]Transform `json:"bones"`
}

// Bone returns the transform of b.
func (p *Pose) Bone(b bones.Bone) Transform {
	return p.Bones[b]
}

// Rest returns the rest pose: default offsets and no rotation.
func Rest() Pose {
	var p Pose
	identity := fromQuat(mgl64.QuatIdent())
	for _, b := range bones.Bones() {
		p.Bones[b] = Transform{
			Bone:     b,
			Position: bones.DefaultOffset(b),
			Rotation: identity,
		}
	}
	return p
}

// Apply converts a sampled frame into a pose.
//
// Rotations are Euler degrees applied in ZYX order with the y and z axes
// flipped. Positions are added to the bone's rest offset with z flipped.
// When the torso is animated, head, body and arms are grouped under it.
// When the frame asks for a connected cape and the cape is not animated,
// the cape is grouped under the body.
func Apply(frame player.Frame) Pose {
	p := Rest()
	p.Animation = frame.Animation
	p.LoopedTime = frame.LoopedTime

	for _, s := range frame.Samples {
		if !s.Bone.Valid() {
			continue
		}
		t := &p.Bones[s.Bone]
		t.Animated = true
		switch s.Channel {
		case bones.Rotation:
			t.Rotation = fromQuat(EulerToQuat(s.Value))
		case bones.Position:
			t.Position = PositionFor(s.Bone, s.Value)
		}
	}

	if p.Bones[bones.Torso].Animated {
		p.TorsoGroup = true
		for _, b := range []bones.Bone{bones.Head, bones.LeftArm, bones.RightArm, bones.Body} {
			p.Bones[b].Parent = bonePtr(bones.Torso)
			p.Bones[b].GroupOffset = TorsoOffset
		}
	}

	if frame.ConnectCape && !p.Bones[bones.Cape].Animated {
		p.CapeOnBody = true
		p.Bones[bones.Cape].Parent = bonePtr(bones.Body)
		p.Bones[bones.Cape].GroupOffset = CapeOffset
	}

	return p
}

// EulerToQuat converts a sampled rotation in degrees to a quaternion.
func EulerToQuat(deg mgl64.Vec3) mgl64.Quat {
	x := mgl64.DegToRad(deg[0])
	y := -mgl64.DegToRad(deg[1])
	z := -mgl64.DegToRad(deg[2])
	return mgl64.AnglesToQuat(z, y, x, mgl64.ZYX)
}

// PositionFor converts a sampled position offset into a bone position.
func PositionFor(b bones.Bone, v mgl64.Vec3) mgl64.Vec3 {
	d := bones.DefaultOffset(b)
	return mgl64.Vec3{d[0] + v[0], d[1] + v[1], d[2] - v[2]}
}

func fromQuat(q mgl64.Quat) Quat {
	return Quat{q.V[0], q.V[1], q.V[2], q.W}
}

func bonePtr(b bones.Bone) *bones.Bone {
	return &b
}
