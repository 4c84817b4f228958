package sst

import (
	"fmt"
	"sort"
)

// SST is a symbolic streaming string transducer over predicates P,
// deferred symbol functions F, and alphabet symbols S.
//
// States are nonnegative integer ids. The final states are exactly the
// states bound in the output function; applying a final state's output
// update and reading register 0 yields the transducer's output word.
// An SST is immutable after construction; every algorithm returns a
// fresh value.
type SST[P, F, S any] struct {
	states   []int // ascending
	stateSet map[int]struct{}
	initial  int
	regs     Registers
	output   map[int]SimpleUpdate[F, S]

	inputFrom map[int][]Move[P, F, S]
	epsFrom   map[int][]Move[P, F, S]

	epsilonFree bool
	empty       bool
	maxState    int
}

// Initial returns the initial state.
func (t *SST[P, F, S]) Initial() int { return t.initial }

// States returns all state ids in ascending order.
func (t *SST[P, F, S]) States() []int {
	out := make([]int, len(t.states))
	copy(out, t.states)
	return out
}

// StateCount returns the number of states.
func (t *SST[P, F, S]) StateCount() int { return len(t.states) }

// Variables returns the register names in index order.
func (t *SST[P, F, S]) Variables() []string { return t.regs.Names() }

// Registers returns the register space of the transducer.
func (t *SST[P, F, S]) Registers() Registers { return t.regs }

// Output returns the output update bound to q, if q is final.
func (t *SST[P, F, S]) Output(q int) (SimpleUpdate[F, S], bool) {
	u, ok := t.output[q]
	if !ok {
		return nil, false
	}
	return u.Clone(), true
}

// Finals returns the final states (the output function's keys) in
// ascending order.
func (t *SST[P, F, S]) Finals() []int {
	out := make([]int, 0, len(t.output))
	for q := range t.output {
		out = append(out, q)
	}
	sort.Ints(out)
	return out
}

// IsFinal reports whether q has an output binding.
func (t *SST[P, F, S]) IsFinal(q int) bool {
	_, ok := t.output[q]
	return ok
}

// TransitionCount returns the total number of moves.
func (t *SST[P, F, S]) TransitionCount() int {
	n := 0
	for _, ms := range t.inputFrom {
		n += len(ms)
	}
	for _, ms := range t.epsFrom {
		n += len(ms)
	}
	return n
}

// InputMovesFrom returns the input moves out of q in insertion order.
func (t *SST[P, F, S]) InputMovesFrom(q int) []Move[P, F, S] {
	return copyMoves(t.inputFrom[q])
}

// EpsilonMovesFrom returns the epsilon moves out of q in insertion order.
func (t *SST[P, F, S]) EpsilonMovesFrom(q int) []Move[P, F, S] {
	return copyMoves(t.epsFrom[q])
}

// MovesFrom returns all moves out of q, input moves first.
func (t *SST[P, F, S]) MovesFrom(q int) []Move[P, F, S] {
	out := make([]Move[P, F, S], 0, len(t.inputFrom[q])+len(t.epsFrom[q]))
	out = append(out, t.inputFrom[q]...)
	out = append(out, t.epsFrom[q]...)
	return out
}

// InputMovesTo returns the input moves entering q.
func (t *SST[P, F, S]) InputMovesTo(q int) []Move[P, F, S] {
	var out []Move[P, F, S]
	for _, s := range t.states {
		for _, m := range t.inputFrom[s] {
			if m.to == q {
				out = append(out, m)
			}
		}
	}
	return out
}

// EpsilonMovesTo returns the epsilon moves entering q.
func (t *SST[P, F, S]) EpsilonMovesTo(q int) []Move[P, F, S] {
	var out []Move[P, F, S]
	for _, s := range t.states {
		for _, m := range t.epsFrom[s] {
			if m.to == q {
				out = append(out, m)
			}
		}
	}
	return out
}

// Moves returns every move, grouped by source state in ascending order.
func (t *SST[P, F, S]) Moves() []Move[P, F, S] {
	var out []Move[P, F, S]
	for _, q := range t.states {
		out = append(out, t.inputFrom[q]...)
		out = append(out, t.epsFrom[q]...)
	}
	return out
}

// EpsilonFree reports whether the transducer has no epsilon moves.
func (t *SST[P, F, S]) EpsilonFree() bool { return t.epsilonFree }

// Empty reports whether no input reaches a final state.
func (t *SST[P, F, S]) Empty() bool { return t.empty }

// MaxStateID returns the largest state id in use.
func (t *SST[P, F, S]) MaxStateID() int { return t.maxState }

// Clone returns a deep copy of the transducer.
func (t *SST[P, F, S]) Clone() *SST[P, F, S] {
	c := &SST[P, F, S]{
		states:      append([]int(nil), t.states...),
		stateSet:    make(map[int]struct{}, len(t.stateSet)),
		initial:     t.initial,
		regs:        t.regs,
		output:      make(map[int]SimpleUpdate[F, S], len(t.output)),
		inputFrom:   make(map[int][]Move[P, F, S], len(t.inputFrom)),
		epsFrom:     make(map[int][]Move[P, F, S], len(t.epsFrom)),
		epsilonFree: t.epsilonFree,
		empty:       t.empty,
		maxState:    t.maxState,
	}
	for q := range t.stateSet {
		c.stateSet[q] = struct{}{}
	}
	for q, u := range t.output {
		c.output[q] = u.Clone()
	}
	for q, ms := range t.inputFrom {
		c.inputFrom[q] = copyMoves(ms)
	}
	for q, ms := range t.epsFrom {
		c.epsFrom[q] = copyMoves(ms)
	}
	return c
}

// String returns a short diagnostic summary.
func (t *SST[P, F, S]) String() string {
	return fmt.Sprintf("SST{states: %d, initial: %d, registers: %d, finals: %d, moves: %d}",
		len(t.states), t.initial, t.regs.Len(), len(t.output), t.TransitionCount())
}

func copyMoves[P, F, S any](ms []Move[P, F, S]) []Move[P, F, S] {
	if ms == nil {
		return nil
	}
	out := make([]Move[P, F, S], len(ms))
	copy(out, ms)
	return out
}

// forwardReachable returns the states reachable from the initial state.
func (t *SST[P, F, S]) forwardReachable() map[int]struct{} {
	reach := map[int]struct{}{t.initial: {}}
	work := []int{t.initial}
	for len(work) > 0 {
		q := work[0]
		work = work[1:]
		for _, m := range t.MovesFrom(q) {
			if _, ok := reach[m.to]; !ok {
				reach[m.to] = struct{}{}
				work = append(work, m.to)
			}
		}
	}
	return reach
}

// backwardReachable returns the states from which a final state is
// reachable.
func (t *SST[P, F, S]) backwardReachable() map[int]struct{} {
	pred := make(map[int][]int)
	for _, q := range t.states {
		for _, m := range t.MovesFrom(q) {
			pred[m.to] = append(pred[m.to], q)
		}
	}
	reach := make(map[int]struct{}, len(t.output))
	var work []int
	for _, q := range t.Finals() {
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
