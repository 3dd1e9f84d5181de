package anim

import "errors"

var (
	// ErrConfiguration wraps every error produced while building animations.
	ErrConfiguration = errors.New("animation configuration error")

	// ErrUnknownAnimation is returned when an animation name is not in the set.
	ErrUnknownAnimation = errors.New("animation not found")

	// ErrEmptySet is returned when a source file contains no animations.
	ErrEmptySet = errors.New("no animations")

	// ErrInvalidAnimation is returned when animation data is malformed.
	ErrInvalidAnimation = errors.New("invalid animation data")
)
