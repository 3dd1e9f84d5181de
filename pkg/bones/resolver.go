package bones

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrUnknownBone is returned when a raw bone name cannot be mapped.
var ErrUnknownBone = errors.New("unknown bone")

// builtin maps the default Blockbench bone names onto canonical bones.
var builtin = map[string]Bone{
	"Head":     Head,
	"Body":     Body,
	"RightArm": RightArm,
	"LeftArm":  LeftArm,
	"RightLeg": RightLeg,
	"LeftLeg":  LeftLeg,
	"All":      All,
	"Torso":    Torso,
	"Cape":     Cape,
}

// Overrides maps canonical bones to the raw names used by a particular model.
type Overrides map[Bone]string

// Resolver turns raw bone names into canonical bones.
// Overrides take precedence over the built-in table.
type Resolver struct {
	byName map[string]Bone
}

// NewResolver creates a resolver with the built-in table and the given
// overrides applied on top.
func NewResolver(overrides Overrides) *Resolver {
	r := &Resolver{byName: make(map[string]Bone, len(builtin)+len(overrides))}
	for name, b := range builtin {
		r.byName[name] = b
	}
	// Overrides are applied in bone order so a raw name listed twice
	// resolves deterministically to the later bone.
	for _, b := range Bones() {
		if name, ok := overrides[b]; ok && name != "" {
			r.byName[name] = b
		}
	}
	return r
}

// Resolve maps a raw bone name to its canonical bone.
func (r *Resolver) Resolve(raw string) (Bone, error) {
	if b, ok := r.byName[raw]; ok {
		return b, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownBone, raw)
}

// overridesFile is the on-disk form of Overrides.
type overridesFile struct {
	Bones map[string]string `yaml:"bones"`
}

// ParseOverrides decodes an overrides document:
//
//	bones:
//	  head: "bone_head"
//	  leftArm: "arm.l"
func ParseOverrides(data []byte) (Overrides, error) {
	var f overridesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse bone overrides: %w", err)
	}

	out := make(Overrides, len(f.Bones))
	for canonical, raw := range f.Bones {
		b, ok := ParseBone(canonical)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownBone, canonical)
		}
		out[b] = raw
	}
	return out, nil
}

// LoadOverrides reads an overrides document from disk.
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bone overrides: %w", err)
	}
	return ParseOverrides(data)
}
