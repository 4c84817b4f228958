package sfa

import (
	"strconv"
	"strings"

	"github.com/coregx/symbolic/ba"
)

// subsetKey returns a canonical key for a set of states.
func subsetKey(sorted []int) string {
	var sb strings.Builder
	for i, q := range sorted {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(q))
	}
	return sb.String()
}

func sortedCopy(qs []int) []int {
	out := make([]int, len(qs))
	copy(out, qs)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// RemoveEpsilons returns an equivalent epsilon-free automaton.
//
// It runs the subset construction over epsilon closures: each new state is
// the epsilon closure of a set of original states, ids are assigned in
// discovery order, and a subset is final iff any member is final.
func (a *SFA[P, S]) RemoveEpsilons(alg ba.Algebra[P, S]) (*SFA[P, S], error) {
	if a.epsilonFree {
		return a.Clone(), nil
	}

	reached := make(map[string]int)
	var subsets [][]int // by id
	var worklist []int  // FIFO of subset ids

	admit := func(members []int) int {
		sorted := sortedCopy(members)
		key := subsetKey(sorted)
		if id, ok := reached[key]; ok {
			return id
		}
		id := len(subsets)
		reached[key] = id
		subsets = append(subsets, sorted)
		worklist = append(worklist, id)
		return id
	}

	initial := admit(a.epsilonClosure(a.initial))

	var moves []Move[P]
	var finals []int
	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]
		members := subsets[id]

		if a.anyFinal(members) {
			finals = append(finals, id)
		}
		for _, q := range members {
			for _, m := range a.inputFrom[q] {
				target := admit(a.epsilonClosure(m.to))
				moves = append(moves, Input(id, target, m.guard))
			}
		}
	}

	return New(alg, moves, initial, finals, BuildConfig{TrimUnreachable: true})
}

// Normalize returns an equivalent automaton with at most one input move
// per ordered state pair (guards ORed together) and deduplicated epsilon
// moves.
func (a *SFA[P, S]) Normalize(alg ba.Algebra[P, S]) (*SFA[P, S], error) {
	return New(alg, a.Moves(), a.initial, a.Finals(), BuildConfig{Normalize: true})
}
