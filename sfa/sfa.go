package sfa

import (
	"fmt"
	"sort"

	"github.com/coregx/symbolic/internal/sparse"
)

// SFA is a symbolic finite automaton over predicates P whose models are
// symbols S.
//
// States are nonnegative integer ids, unique within one automaton but not
// semantically tied across automata; product constructions renumber freely.
// An SFA is immutable after construction: every algorithm returns a fresh
// value, and the structural flags (deterministic, epsilon-free, total,
// empty) are computed once at build time and never change.
type SFA[P, S any] struct {
	states   []int // ascending
	stateSet map[int]struct{}
	initial  int
	finals   map[int]struct{}

	inputFrom map[int][]Move[P] // input moves keyed by source, insertion order
	epsFrom   map[int][]Move[P] // epsilon moves keyed by source, insertion order

	deterministic bool
	epsilonFree   bool
	total         bool
	empty         bool
	maxState      int
}

// Initial returns the initial state.
func (a *SFA[P, S]) Initial() int {
	return a.initial
}

// States returns all state ids in ascending order.
func (a *SFA[P, S]) States() []int {
	out := make([]int, len(a.states))
	copy(out, a.states)
	return out
}

// StateCount returns the number of states.
func (a *SFA[P, S]) StateCount() int {
	return len(a.states)
}

// HasState reports whether the id names a state of the automaton.
func (a *SFA[P, S]) HasState(q int) bool {
	_, ok := a.stateSet[q]
	return ok
}

// Finals returns the final states in ascending order.
func (a *SFA[P, S]) Finals() []int {
	out := make([]int, 0, len(a.finals))
	for q := range a.finals {
		out = append(out, q)
	}
	sort.Ints(out)
	return out
}

// IsFinal reports whether q is a final state.
func (a *SFA[P, S]) IsFinal(q int) bool {
	_, ok := a.finals[q]
	return ok
}

// TransitionCount returns the total number of moves.
func (a *SFA[P, S]) TransitionCount() int {
	n := 0
	for _, ms := range a.inputFrom {
		n += len(ms)
	}
	for _, ms := range a.epsFrom {
		n += len(ms)
	}
	return n
}

// InputMovesFrom returns the input moves out of q in insertion order.
func (a *SFA[P, S]) InputMovesFrom(q int) []Move[P] {
	return copyMoves(a.inputFrom[q])
}

// EpsilonMovesFrom returns the epsilon moves out of q in insertion order.
func (a *SFA[P, S]) EpsilonMovesFrom(q int) []Move[P] {
	return copyMoves(a.epsFrom[q])
}

// MovesFrom returns all moves out of q, input moves first.
func (a *SFA[P, S]) MovesFrom(q int) []Move[P] {
	out := make([]Move[P], 0, len(a.inputFrom[q])+len(a.epsFrom[q]))
	out = append(out, a.inputFrom[q]...)
	out = append(out, a.epsFrom[q]...)
	return out
}

// InputMovesTo returns the input moves entering q, scanning states in
// ascending order.
func (a *SFA[P, S]) InputMovesTo(q int) []Move[P] {
	var out []Move[P]
	for _, s := range a.states {
		for _, m := range a.inputFrom[s] {
			if m.to == q {
				out = append(out, m)
			}
		}
	}
	return out
}

// EpsilonMovesTo returns the epsilon moves entering q.
func (a *SFA[P, S]) EpsilonMovesTo(q int) []Move[P] {
	var out []Move[P]
	for _, s := range a.states {
		for _, m := range a.epsFrom[s] {
			if m.to == q {
				out = append(out, m)
			}
		}
	}
	return out
}

// MovesTo returns all moves entering q, input moves first.
func (a *SFA[P, S]) MovesTo(q int) []Move[P] {
	out := a.InputMovesTo(q)
	return append(out, a.EpsilonMovesTo(q)...)
}

// Moves returns every move of the automaton, grouped by source state in
// ascending order.
func (a *SFA[P, S]) Moves() []Move[P] {
	var out []Move[P]
	for _, q := range a.states {
		out = append(out, a.inputFrom[q]...)
		out = append(out, a.epsFrom[q]...)
	}
	return out
}

// Deterministic reports whether the automaton has no epsilon moves and
// pairwise unsatisfiable guard conjunctions out of every state.
func (a *SFA[P, S]) Deterministic() bool {
	return a.deterministic
}

// EpsilonFree reports whether the automaton has no epsilon moves.
func (a *SFA[P, S]) EpsilonFree() bool {
	return a.epsilonFree
}

// Total reports whether the guards out of every state cover the whole
// alphabet.
func (a *SFA[P, S]) Total() bool {
	return a.total
}

// Empty reports whether the automaton's language is empty.
func (a *SFA[P, S]) Empty() bool {
	return a.empty
}

// MaxStateID returns the largest state id in use.
func (a *SFA[P, S]) MaxStateID() int {
	return a.maxState
}

// Clone returns a deep copy of the automaton.
func (a *SFA[P, S]) Clone() *SFA[P, S] {
	c := &SFA[P, S]{
		states:        append([]int(nil), a.states...),
		stateSet:      make(map[int]struct{}, len(a.stateSet)),
		initial:       a.initial,
		finals:        make(map[int]struct{}, len(a.finals)),
		inputFrom:     make(map[int][]Move[P], len(a.inputFrom)),
		epsFrom:       make(map[int][]Move[P], len(a.epsFrom)),
		deterministic: a.deterministic,
		epsilonFree:   a.epsilonFree,
		total:         a.total,
		empty:         a.empty,
		maxState:      a.maxState,
	}
	for q := range a.stateSet {
		c.stateSet[q] = struct{}{}
	}
	for q := range a.finals {
		c.finals[q] = struct{}{}
	}
	for q, ms := range a.inputFrom {
		c.inputFrom[q] = copyMoves(ms)
	}
	for q, ms := range a.epsFrom {
		c.epsFrom[q] = copyMoves(ms)
	}
	return c
}

// String returns a short diagnostic summary.
func (a *SFA[P, S]) String() string {
	return fmt.Sprintf("SFA{states: %d, initial: %d, finals: %d, moves: %d, det: %v, total: %v}",
		len(a.states), a.initial, len(a.finals), a.TransitionCount(), a.deterministic, a.total)
}

func copyMoves[P any](ms []Move[P]) []Move[P] {
	if ms == nil {
		return nil
	}
	out := make([]Move[P], len(ms))
	copy(out, ms)
	return out
}

// epsilonClosure returns the states reachable from q by epsilon moves,
// including q itself, in discovery order.
func (a *SFA[P, S]) epsilonClosure(q int) []int {
	closure := sparse.NewSet(a.maxState + 1)
	closure.Insert(q)
	for i := 0; i < closure.Len(); i++ {
		for _, m := range a.epsFrom[closure.Values()[i]] {
			closure.Insert(m.to)
		}
	}
	return append([]int(nil), closure.Values()...)
}

// anyFinal reports whether any of the given states is final.
func (a *SFA[P, S]) anyFinal(qs []int) bool {
	for _, q := range qs {
		if a.IsFinal(q) {
			return true
		}
	}
	return false
}

// forwardReachable returns the set of states reachable from the initial
// state along any move.
func (a *SFA[P, S]) forwardReachable() map[int]struct{} {
	reach := map[int]struct{}{a.initial: {}}
	work := []int{a.initial}
	for len(work) > 0 {
		q := work[0]
		work = work[1:]
		for _, m := range a.MovesFrom(q) {
			if _, ok := reach[m.to]; !ok {
				reach[m.to] = struct{}{}
				work = append(work, m.to)
			}
		}
	}
	return reach
}

// backwardReachable returns the set of states from which a final state is
// reachable along any move.
func (a *SFA[P, S]) backwardReachable() map[int]struct{} {
	pred := make(map[int][]int)
	for _, q := range a.states {
		for _, m := range a.MovesFrom(q) {
			pred[m.to] = append(pred[m.to], q)
		}
	}
	reach := make(map[int]struct{}, len(a.finals))
	var work []int
	for _, q := range a.Finals() {
		reach[q] = struct{}{}
		work = append(work, q)
	}
	for len(work) > 0 {
		q := work[0]
		work = work[1:]
		for _, p := range pred[q] {
			if _, ok := reach[p]; !ok {
				reach[p] = struct{}{}
				work = append(work, p)
			}
		}
	}
	return reach
}
