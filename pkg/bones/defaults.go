package bones

import "github.com/go-gl/mathgl/mgl64"

// DefaultOffsets is the rest position of every bone in model units.
// Position samples are applied relative to these offsets.
var DefaultOffsets = [Count]mgl64.Vec3{
	Head:     {0, 0, 0},
	Body:     {0, -6, 0},
	RightArm: {-5, -2, 0},
	LeftArm:  {5, -2, 0},
	RightLeg: {-1.9, -12, -0.1},
	LeftLeg:  {1.9, -12, -0.1},
	All:      {0, 0, 0},
	Torso:    {0, 0, 0},
	Cape:     {0, 8, -2},
}

// DefaultOffset returns the rest position of b.
func DefaultOffset(b Bone) mgl64.Vec3 {
	return DefaultOffsets[b]
}
