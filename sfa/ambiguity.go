package sfa

import (
	"fmt"

	"github.com/coregx/symbolic/ba"
)

// AmbiguousInput searches for a word accepted along two distinct runs.
// It returns such a word and true when the automaton is ambiguous, or
// nil and false when every accepted word has exactly one accepting run.
//
// Epsilon moves are eliminated first, then a self-product walk tracks
// pairs of runs plus a divergence bit: the bit is set as soon as the two
// runs take different moves. Reaching a pair of final states with the bit
// set certifies ambiguity, and the accumulated witness symbols form the
// ambiguous input.
func (a *SFA[P, S]) AmbiguousInput(alg ba.Algebra[P, S], budget ba.Budget) ([]S, bool, error) {
	src := a
	if !src.epsilonFree {
		var err error
		src, err = src.RemoveEpsilons(alg)
		if err != nil {
			return nil, false, err
		}
	}
	if src.empty {
		return nil, false, nil
	}

	type node struct {
		p, q     int
		diverged bool
		word     []S
	}
	key := func(n node) string {
		return fmt.Sprintf("%d|%d|%v", n.p, n.q, n.diverged)
	}

	start := node{p: src.initial, q: src.initial}
	seen := map[string]struct{}{key(start): {}}
	worklist := []node{start}

	for len(worklist) > 0 {
		if err := budget.Check("ambiguousInput"); err != nil {
			return nil, false, err
		}
		n := worklist[0]
		worklist = worklist[1:]

		if n.diverged && src.IsFinal(n.p) && src.IsFinal(n.q) {
			return n.word, true, nil
		}

		ms1 := src.inputFrom[n.p]
		ms2 := src.inputFrom[n.q]
		for i1, t1 := range ms1 {
			for i2, t2 := range ms2 {
				guard := alg.And(t1.guard, t2.guard)
				sat, err := alg.Satisfiable(guard)
				if err != nil {
					return nil, false, err
				}
				if !sat {
					continue
				}
				diverged := n.diverged
				if n.p == n.q && i1 != i2 {
					diverged = true
				} else if n.p != n.q {
					diverged = true
				}

				next := node{p: t1.to, q: t2.to, diverged: diverged}
				k := key(next)
				if _, ok := seen[k]; ok {
					continue
				}
				sym, err := alg.Witness(guard)
				if err != nil {
					return nil, false, err
				}
				next.word = append(append([]S(nil), n.word...), sym)
				seen[k] = struct{}{}
				worklist = append(worklist, next)
			}
		}
	}
	return nil, false, nil
}
