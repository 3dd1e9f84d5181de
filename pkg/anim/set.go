package anim

import (
	"fmt"

	"github.com/teslashibe/go-bbanim/pkg/bones"
)

// Set holds built animations by name, preserving source order.
// A Set is read-only after construction and safe for concurrent use.
type Set struct {
	names  []string
	byName map[string]*Animation
}

// NewSet builds every animation in the file.
func NewSet(f *File, r *bones.Resolver) (*Set, error) {
	if f == nil || len(f.Animations) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, ErrEmptySet)
	}

	s := &Set{byName: make(map[string]*Animation, len(f.Animations))}
	for _, na := range f.Animations {
		a, err := Build(na.Name, na.Animation, r)
		if err != nil {
			return nil, err
		}
		if err := s.add(a); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Merge combines sets. Animation names must be unique across all of them.
func Merge(sets ...*Set) (*Set, error) {
	out := &Set{byName: make(map[string]*Animation)}
	for _, s := range sets {
		for _, name := range s.names {
			if err := out.add(s.byName[name]); err != nil {
				return nil, err
			}
		}
	}
	if len(out.names) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, ErrEmptySet)
	}
	return out, nil
}

func (s *Set) add(a *Animation) error {
	if _, dup := s.byName[a.Name]; dup {
		return fmt.Errorf("%w: %w: duplicate animation %q", ErrConfiguration, ErrInvalidAnimation, a.Name)
	}
	s.names = append(s.names, a.Name)
	s.byName[a.Name] = a
	return nil
}

// Get retrieves an animation by name.
func (s *Set) Get(name string) (*Animation, error) {
	a, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %s", ErrConfiguration, ErrUnknownAnimation, name)
	}
	return a, nil
}

// Resolve returns the named animation, or the first one when name is empty.
func (s *Set) Resolve(name string) (*Animation, error) {
	if name == "" {
		return s.First(), nil
	}
	return s.Get(name)
}

// First returns the first animation in source order.
func (s *Set) First() *Animation {
	return s.byName[s.names[0]]
}

// Names returns animation names in source order.
func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of animations.
func (s *Set) Len() int {
	return len(s.names)
}
