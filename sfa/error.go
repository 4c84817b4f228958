// Package sfa implements symbolic finite automata: finite automata whose
// transitions are guarded by predicates of an effective Boolean algebra
// rather than concrete symbols.
//
// An SFA represents a regular language over a possibly infinite alphabet.
// The package provides the full closure toolkit — intersection, union,
// complement, difference, concatenation, Kleene star, epsilon elimination,
// determinization via minterms, totalization, Hopcroft–Karp equivalence,
// minimization, and ambiguity detection. Every operation is parameterized
// by a ba.Algebra and returns a fresh automaton; inputs are never mutated.
package sfa

import (
	"errors"
	"fmt"
)

// Common SFA errors.
var (
	// ErrBadState indicates a move or final-state set references a state
	// outside the automaton.
	ErrBadState = errors.New("state not in automaton")
)

// BuildError reports why construction of an automaton was rejected.
type BuildError struct {
	Message string
	State   int
	Cause   error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sfa build: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("sfa build: %s (state %d)", e.Message, e.State)
}

// Unwrap returns the underlying error.
func (e *BuildError) Unwrap() error {
	return e.Cause
}
