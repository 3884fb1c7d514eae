package rules

import "errors"

var (
	// ErrInvalidRule indicates a malformed rule line.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrInvalidPattern indicates a rule pattern that cannot be compiled.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrFrozen indicates an attempt to add a rule to a graph that is already in use.
	ErrFrozen = errors.New("decision graph is frozen")
)
