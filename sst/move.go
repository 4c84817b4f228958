package sst

import "fmt"

// MoveKind identifies the type of a move.
type MoveKind uint8

const (
	// MoveInput consumes one symbol satisfying the move's guard and
	// applies a functional register update.
	MoveInput MoveKind = iota

	// MoveEpsilon changes state without consuming input, applying a
	// simple register update.
	MoveEpsilon
)

// Move is a transition of a transducer. Input moves carry a guard and a
// functional update; epsilon moves carry a simple update.
type Move[P, F, S any] struct {
	kind   MoveKind
	from   int
	to     int
	guard  P
	update FunctionalUpdate[F, S]
	simple SimpleUpdate[F, S]
}

// Input returns an input move with the given guard and register update.
func Input[P, F, S any](from, to int, guard P, update FunctionalUpdate[F, S]) Move[P, F, S] {
	return Move[P, F, S]{kind: MoveInput, from: from, to: to, guard: guard, update: update}
}

// Epsilon returns an epsilon move with the given simple register update.
func Epsilon[P, F, S any](from, to int, update SimpleUpdate[F, S]) Move[P, F, S] {
	return Move[P, F, S]{kind: MoveEpsilon, from: from, to: to, simple: update}
}

// Kind returns the move's kind.
func (m Move[P, F, S]) Kind() MoveKind { return m.kind }

// From returns the source state.
func (m Move[P, F, S]) From() int { return m.from }

// To returns the target state.
func (m Move[P, F, S]) To() int { return m.to }

// IsEpsilon reports whether the move consumes no input.
func (m Move[P, F, S]) IsEpsilon() bool { return m.kind == MoveEpsilon }

// Guard returns the move's predicate; the zero value for epsilon moves.
func (m Move[P, F, S]) Guard() P { return m.guard }

// Update returns the functional update of an input move.
func (m Move[P, F, S]) Update() FunctionalUpdate[F, S] { return m.update }

// EpsilonUpdate returns the simple update of an epsilon move.
func (m Move[P, F, S]) EpsilonUpdate() SimpleUpdate[F, S] { return m.simple }

// String returns a human-readable representation of the move.
func (m Move[P, F, S]) String() string {
	if m.kind == MoveEpsilon {
		return fmt.Sprintf("%d --ε--> %d", m.from, m.to)
	}
	return fmt.Sprintf("%d --%v--> %d", m.from, m.guard, m.to)
}

// retarget returns a copy of the move with renumbered endpoints.
func (m Move[P, F, S]) retarget(from, to int) Move[P, F, S] {
	m.from, m.to = from, to
	return m
}

// mapUpdate returns a copy of the move with its update transformed.
func (m Move[P, F, S]) mapUpdate(f func([][]Token[F, S]) [][]Token[F, S]) Move[P, F, S] {
	if m.kind == MoveEpsilon {
		m.simple = SimpleUpdate[F, S](f(m.simple))
	} else {
		m.update = FunctionalUpdate[F, S](f(m.update))
	}
	return m
}
