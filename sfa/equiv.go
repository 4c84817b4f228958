package sfa

import (
	"github.com/coregx/symbolic/ba"
	"github.com/coregx/symbolic/internal/unionfind"
)

// Equivalent reports whether a and b accept the same language, decided by
// checking that both differences are empty.
func (a *SFA[P, S]) Equivalent(alg ba.Algebra[P, S], b *SFA[P, S], budget ba.Budget) (bool, error) {
	d, err := a.Difference(alg, b, budget)
	if err != nil {
		return false, err
	}
	if !d.Empty() {
		return false, nil
	}
	d, err = b.Difference(alg, a, budget)
	if err != nil {
		return false, err
	}
	return d.Empty(), nil
}

// HopcroftKarpEquivalent reports whether a and b accept the same language
// using the Hopcroft–Karp union-find procedure, and returns a
// counterexample word when they do not.
//
// Both automata are determinized, totalized and normalized first. States
// of the two automata share one union-find id space; each explored pair
// carries the word that reaches it, and the first pair whose two sides
// disagree on finality yields the counterexample. On success the
// counterexample is nil.
func (a *SFA[P, S]) HopcroftKarpEquivalent(alg ba.Algebra[P, S], b *SFA[P, S], budget ba.Budget) (bool, []S, error) {
	left, err := prepare(a, alg, budget)
	if err != nil {
		return false, nil, err
	}
	right, err := prepare(b, alg, budget)
	if err != nil {
		return false, nil, err
	}

	// Dense shared id space: left states first, then right states.
	idxL := make(map[int]int, left.StateCount())
	for i, q := range left.states {
		idxL[q] = i
	}
	idxR := make(map[int]int, right.StateCount())
	for i, q := range right.states {
		idxR[q] = left.StateCount() + i
	}

	if left.IsFinal(left.initial) != right.IsFinal(right.initial) {
		return false, []S{}, nil
	}

	forest := unionfind.NewForest[S](left.StateCount() + right.StateCount())
	forest.Add(idxL[left.initial], nil)
	forest.Add(idxR[right.initial], nil)
	forest.Union(idxL[left.initial], idxR[right.initial])

	type pair struct {
		p, q int
		word []S
	}
	worklist := []pair{{left.initial, right.initial, nil}}

	for len(worklist) > 0 {
		if err := budget.Check("hopcroftKarp"); err != nil {
			return false, nil, err
		}
		pr := worklist[0]
		worklist = worklist[1:]

		for _, t1 := range left.inputFrom[pr.p] {
			for _, t2 := range right.inputFrom[pr.q] {
				guard := alg.And(t1.guard, t2.guard)
				sat, err := alg.Satisfiable(guard)
				if err != nil {
					return false, nil, err
				}
				if !sat {
					continue
				}
				sym, err := alg.Witness(guard)
				if err != nil {
					return false, nil, err
				}
				word := append(append([]S(nil), pr.word...), sym)

				p2, q2 := t1.to, t2.to
				if left.IsFinal(p2) != right.IsFinal(q2) {
					return false, word, nil
				}
				i2, j2 := idxL[p2], idxR[q2]
				forest.Add(i2, word)
				forest.Add(j2, word)
				if forest.Find(i2) != forest.Find(j2) {
					forest.Union(i2, j2)
					worklist = append(worklist, pair{p2, q2, word})
				}
			}
		}
	}
	return true, nil, nil
}

// prepare determinizes, totalizes and normalizes an automaton for the
// pairwise equivalence walk.
func prepare[P, S any](a *SFA[P, S], alg ba.Algebra[P, S], budget ba.Budget) (*SFA[P, S], error) {
	total, err := a.MkTotal(alg, budget)
	if err != nil {
		return nil, err
	}
	return total.Normalize(alg)
}
