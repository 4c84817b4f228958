package sfa

import (
	"github.com/coregx/symbolic/ba"
)

// Determinize returns an equivalent deterministic automaton.
//
// Epsilon moves are eliminated first if present. The subset construction
// is symbolic: at each subset state the outgoing guards are partitioned
// into minterms by the algebra, and each minterm becomes one move to the
// union of the targets whose guard it entails. Guards out of each
// determinized state are pairwise disjoint by construction.
func (a *SFA[P, S]) Determinize(alg ba.Algebra[P, S], budget ba.Budget) (*SFA[P, S], error) {
	src := a
	if !src.epsilonFree {
		var err error
		src, err = src.RemoveEpsilons(alg)
		if err != nil {
			return nil, err
		}
	}
	if src.deterministic {
		return src.Clone(), nil
	}
	if src.empty {
		return NewEmpty[P, S](), nil
	}

	reached := make(map[string]int)
	var subsets [][]int
	var worklist []int

	admit := func(sorted []int) int {
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

	initial := admit([]int{src.initial})

	var moves []Move[P]
	var finals []int
	for len(worklist) > 0 {
		if err := budget.Check("determinize"); err != nil {
			return nil, err
		}
		id := worklist[0]
		worklist = worklist[1:]
		members := subsets[id]

		if src.anyFinal(members) {
			finals = append(finals, id)
		}

		// Gather the outgoing moves of the subset in state order.
		var outgoing []Move[P]
		for _, q := range members {
			outgoing = append(outgoing, src.inputFrom[q]...)
		}
		if len(outgoing) == 0 {
			continue
		}
		guards := make([]P, len(outgoing))
		for i, m := range outgoing {
			guards[i] = m.guard
		}

		minterms, err := alg.Minterms(guards, budget)
		if err != nil {
			return nil, err
		}
		for _, mt := range minterms {
			targetSet := make(map[int]struct{})
			for i, m := range outgoing {
				if mt.Tags.Test(uint(i)) {
					targetSet[m.to] = struct{}{}
				}
			}
			if len(targetSet) == 0 {
				continue
			}
			target := make([]int, 0, len(targetSet))
			for q := range targetSet {
				target = append(target, q)
			}
			moves = append(moves, Input(id, admit(sortedCopy(target)), mt.Predicate))
		}
	}

	return New(alg, moves, initial, finals, BuildConfig{TrimUnreachable: true})
}
