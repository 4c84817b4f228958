package sfa

import (
	"sort"

	"github.com/coregx/symbolic/ba"
)

// BuildConfig controls the construction passes applied by New.
type BuildConfig struct {
	// TrimUnreachable drops states that are not both reachable from the
	// initial state and able to reach a final state. When no final state
	// survives, construction yields the canonical empty automaton.
	TrimUnreachable bool

	// Normalize collapses parallel input moves between the same pair of
	// states into a single move guarded by their disjunction, and keeps
	// at most one epsilon move per ordered state pair.
	Normalize bool
}

// DefaultBuildConfig returns the configuration used by the algorithms in
// this package: trim and normalize.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{TrimUnreachable: true, Normalize: true}
}

// New constructs an SFA from a collection of moves, an initial state and a
// final-state set.
//
// Input moves with unsatisfiable guards are dropped, as are epsilon
// self-loops. States are the union of move endpoints, the initial state,
// and the final states. The structural flags are computed here and
// memoized on the result.
func New[P, S any](alg ba.Algebra[P, S], moves []Move[P], initial int, finals []int, cfg BuildConfig) (*SFA[P, S], error) {
	if initial < 0 {
		return nil, &BuildError{Message: "initial state must be nonnegative", State: initial, Cause: ErrBadState}
	}

	stateSet := map[int]struct{}{initial: {}}
	finalSet := make(map[int]struct{}, len(finals))
	for _, q := range finals {
		if q < 0 {
			return nil, &BuildError{Message: "final state must be nonnegative", State: q, Cause: ErrBadState}
		}
		finalSet[q] = struct{}{}
		stateSet[q] = struct{}{}
	}

	inputFrom := make(map[int][]Move[P])
	epsFrom := make(map[int][]Move[P])
	for _, m := range moves {
		if m.from < 0 || m.to < 0 {
			return nil, &BuildError{Message: "move endpoint must be nonnegative", State: m.from, Cause: ErrBadState}
		}
		stateSet[m.from] = struct{}{}
		stateSet[m.to] = struct{}{}
		switch m.kind {
		case MoveEpsilon:
			if m.from == m.to {
				continue // self-epsilon is a no-op
			}
			epsFrom[m.from] = append(epsFrom[m.from], m)
		default:
			sat, err := alg.Satisfiable(m.guard)
			if err != nil {
				return nil, err
			}
			if !sat {
				continue
			}
			inputFrom[m.from] = append(inputFrom[m.from], m)
		}
	}

	if cfg.Normalize {
		var err error
		inputFrom, err = normalizeInput(alg, inputFrom)
		if err != nil {
			return nil, err
		}
		epsFrom = dedupeEpsilons(epsFrom)
	}

	a := assemble[P, S](stateSet, initial, finalSet, inputFrom, epsFrom)

	if cfg.TrimUnreachable {
		trimmed, ok := a.trim()
		if !ok {
			return NewEmpty[P, S](), nil
		}
		a = trimmed
	}

	if err := a.computeFlags(alg); err != nil {
		return nil, err
	}
	return a, nil
}

// NewEmpty returns the canonical empty automaton: one non-final state and
// no moves.
func NewEmpty[P, S any]() *SFA[P, S] {
	return &SFA[P, S]{
		states:        []int{0},
		stateSet:      map[int]struct{}{0: {}},
		initial:       0,
		finals:        map[int]struct{}{},
		inputFrom:     map[int][]Move[P]{},
		epsFrom:       map[int][]Move[P]{},
		deterministic: true,
		epsilonFree:   true,
		total:         false,
		empty:         true,
		maxState:      0,
	}
}

// NewFull returns the automaton accepting every word: one final state with
// a True self-loop.
func NewFull[P, S any](alg ba.Algebra[P, S]) *SFA[P, S] {
	return &SFA[P, S]{
		states:   []int{0},
		stateSet: map[int]struct{}{0: {}},
		initial:  0,
		finals:   map[int]struct{}{0: {}},
		inputFrom: map[int][]Move[P]{
			0: {Input(0, 0, alg.True())},
		},
		epsFrom:       map[int][]Move[P]{},
		deterministic: true,
		epsilonFree:   true,
		total:         true,
		empty:         false,
		maxState:      0,
	}
}

// NewEpsilon returns the automaton accepting only the empty word.
func NewEpsilon[P, S any]() *SFA[P, S] {
	return &SFA[P, S]{
		states:        []int{0},
		stateSet:      map[int]struct{}{0: {}},
		initial:       0,
		finals:        map[int]struct{}{0: {}},
		inputFrom:     map[int][]Move[P]{},
		epsFrom:       map[int][]Move[P]{},
		deterministic: true,
		epsilonFree:   true,
		total:         false,
		empty:         false,
		maxState:      0,
	}
}

// NewPred returns the automaton accepting exactly the single-symbol words
// satisfying guard.
func NewPred[P, S any](alg ba.Algebra[P, S], guard P) (*SFA[P, S], error) {
	return New(alg, []Move[P]{Input(0, 1, guard)}, 0, []int{1}, DefaultBuildConfig())
}

// assemble builds the container without computing flags.
func assemble[P, S any](stateSet map[int]struct{}, initial int, finals map[int]struct{}, inputFrom, epsFrom map[int][]Move[P]) *SFA[P, S] {
	states := make([]int, 0, len(stateSet))
	maxState := 0
	for q := range stateSet {
		states = append(states, q)
		if q > maxState {
			maxState = q
		}
	}
	sort.Ints(states)
	return &SFA[P, S]{
		states:    states,
		stateSet:  stateSet,
		initial:   initial,
		finals:    finals,
		inputFrom: inputFrom,
		epsFrom:   epsFrom,
		maxState:  maxState,
	}
}

// normalizeInput collapses parallel input moves into one move per ordered
// state pair, guarded by the disjunction of the originals.
func normalizeInput[P, S any](alg ba.Algebra[P, S], inputFrom map[int][]Move[P]) (map[int][]Move[P], error) {
	out := make(map[int][]Move[P], len(inputFrom))
	for from, ms := range inputFrom {
		merged := make([]Move[P], 0, len(ms))
		index := make(map[int]int) // target -> position in merged
		for _, m := range ms {
			if i, ok := index[m.to]; ok {
				merged[i].guard = alg.Or(merged[i].guard, m.guard)
				continue
			}
			index[m.to] = len(merged)
			merged = append(merged, m)
		}
		out[from] = merged
	}
	return out, nil
}

// dedupeEpsilons keeps at most one epsilon move per ordered state pair.
func dedupeEpsilons[P any](epsFrom map[int][]Move[P]) map[int][]Move[P] {
	out := make(map[int][]Move[P], len(epsFrom))
	for from, ms := range epsFrom {
		seen := make(map[int]struct{})
		kept := make([]Move[P], 0, len(ms))
		for _, m := range ms {
			if _, ok := seen[m.to]; ok {
				continue
			}
			seen[m.to] = struct{}{}
			kept = append(kept, m)
		}
		out[from] = kept
	}
	return out
}

// trim keeps only alive states. The second result is false when the
// trimmed automaton has no final state (empty language).
func (a *SFA[P, S]) trim() (*SFA[P, S], bool) {
	fwd := a.forwardReachable()
	bwd := a.backwardReachable()

	alive := make(map[int]struct{})
	for q := range fwd {
		if _, ok := bwd[q]; ok {
			alive[q] = struct{}{}
		}
	}
	if _, ok := alive[a.initial]; !ok {
		return nil, false
	}

	finals := make(map[int]struct{})
	for q := range a.finals {
		if _, ok := alive[q]; ok {
			finals[q] = struct{}{}
		}
	}
	if len(finals) == 0 {
		return nil, false
	}

	inputFrom := make(map[int][]Move[P])
	epsFrom := make(map[int][]Move[P])
	for q := range alive {
		for _, m := range a.inputFrom[q] {
			if _, ok := alive[m.to]; ok {
				inputFrom[q] = append(inputFrom[q], m)
			}
		}
		for _, m := range a.epsFrom[q] {
			if _, ok := alive[m.to]; ok {
				epsFrom[q] = append(epsFrom[q], m)
			}
		}
	}
	return assemble[P, S](alive, a.initial, finals, inputFrom, epsFrom), true
}

// computeFlags memoizes the structural flags.
func (a *SFA[P, S]) computeFlags(alg ba.Algebra[P, S]) error {
	a.epsilonFree = true
	for _, ms := range a.epsFrom {
		if len(ms) > 0 {
			a.epsilonFree = false
			break
		}
	}

	// Language emptiness: some final state forward-reachable.
	a.empty = true
	for q := range a.forwardReachable() {
		if a.IsFinal(q) {
			a.empty = false
			break
		}
	}

	// Determinism: epsilon-free with pairwise unsatisfiable guards.
	a.deterministic = a.epsilonFree
	if a.deterministic {
	outer:
		for _, q := range a.states {
			ms := a.inputFrom[q]
			for i := 0; i < len(ms); i++ {
				for j := i + 1; j < len(ms); j++ {
					sat, err := alg.Satisfiable(alg.And(ms[i].guard, ms[j].guard))
					if err != nil {
						return err
					}
					if sat {
						a.deterministic = false
						break outer
					}
				}
			}
		}
	}

	// Totality: the outgoing guards of every state cover the alphabet.
	a.total = a.epsilonFree
	if a.total {
		for _, q := range a.states {
			ms := a.inputFrom[q]
			cover := alg.False()
			for _, m := range ms {
				cover = alg.Or(cover, m.guard)
			}
			sat, err := alg.Satisfiable(alg.Not(cover))
			if err != nil {
				return err
			}
			if sat {
				a.total = false
				break
			}
		}
	}
	return nil
}
