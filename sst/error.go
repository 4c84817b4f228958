// Package sst implements symbolic streaming string transducers: symbolic
// finite automata extended with a finite set of string-valued registers
// updated on every transition, computing string-to-string functions.
//
// An SST reads a word over the alphabet S and, on acceptance, produces an
// output word assembled from its registers. Transitions are guarded by
// predicates of an effective Boolean algebra; input moves may write the
// current symbol (or a deferred function of it) into registers, epsilon
// moves may only rearrange constants and register contents. The package
// provides construction, epsilon elimination with register-update
// composition, the combine/union/concatenate/star/shuffle constructions,
// simulation on an input word, and projection to the domain SFA.
package sst

import (
	"errors"
	"fmt"
)

// ErrMalformed indicates a transducer was constructed with inconsistent
// update arities, undeclared variable references, or an epsilon graph
// violating the tree invariant.
var ErrMalformed = errors.New("malformed transducer")

// MalformedKind classifies construction and structure errors.
type MalformedKind uint8

const (
	// ArityMismatch indicates an update vector whose length differs from
	// the number of declared registers. New also reports a negative
	// initial state with this kind.
	ArityMismatch MalformedKind = iota

	// UndeclaredVariable indicates a variable reference with no declared
	// register.
	UndeclaredVariable

	// DuplicateVariable indicates the same register name declared twice.
	DuplicateVariable

	// FunctionToken indicates a function token where only constants and
	// variable references are allowed (epsilon moves, output functions).
	FunctionToken

	// EpsilonTree indicates two distinct epsilon paths from one state
	// reaching the same target.
	EpsilonTree

	// EpsilonFinalConflict indicates two distinct final states inside one
	// epsilon closure.
	EpsilonFinalConflict
)

// String returns a human-readable kind name.
func (k MalformedKind) String() string {
	switch k {
	case ArityMismatch:
		return "ArityMismatch"
	case UndeclaredVariable:
		return "UndeclaredVariable"
	case DuplicateVariable:
		return "DuplicateVariable"
	case FunctionToken:
		return "FunctionToken"
	case EpsilonTree:
		return "EpsilonTree"
	case EpsilonFinalConflict:
		return "EpsilonFinalConflict"
	default:
		return fmt.Sprintf("UnknownKind(%d)", k)
	}
}

// MalformedError reports why a transducer (or an operation's view of it)
// is structurally invalid.
type MalformedError struct {
	Kind    MalformedKind
	Message string
}

// Error implements the error interface.
func (e *MalformedError) Error() string {
	return fmt.Sprintf("sst: %s: %s", e.Kind, e.Message)
}

// Unwrap returns ErrMalformed so errors.Is(err, ErrMalformed) holds.
func (e *MalformedError) Unwrap() error {
	return ErrMalformed
}

// Is reports whether target is a MalformedError of the same kind.
func (e *MalformedError) Is(target error) bool {
	t, ok := target.(*MalformedError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}
