package intervals

import (
	"errors"
	"sort"

	"github.com/bits-and-blooms/bitset"

	"github.com/coregx/symbolic/ba"
)

// ErrNoWitness indicates a witness was requested for an unsatisfiable
// predicate. The engines only ask for witnesses of predicates reported
// satisfiable, so seeing this error means the caller skipped that check.
var ErrNoWitness = errors.New("predicate has no witness")

// Algebra implements the effective Boolean algebra contract over rune
// intervals. The zero value is ready to use and stateless; one Algebra
// can be shared by any number of automata.
type Algebra struct{}

// NewAlgebra returns the rune-interval algebra.
func NewAlgebra() Algebra {
	return Algebra{}
}

// True returns the predicate satisfied by every rune.
func (Algebra) True() CharPred {
	return Any()
}

// False returns the unsatisfiable predicate.
func (Algebra) False() CharPred {
	return Empty()
}

// And returns the conjunction of two predicates.
func (Algebra) And(p, q CharPred) CharPred {
	return p.Intersect(q)
}

// AndAll returns the conjunction of all predicates in ps.
func (a Algebra) AndAll(ps []CharPred) CharPred {
	acc := Any()
	for _, p := range ps {
		acc = acc.Intersect(p)
	}
	return acc
}

// Or returns the disjunction of two predicates.
func (Algebra) Or(p, q CharPred) CharPred {
	return p.Union(q)
}

// Not returns the negation of a predicate.
func (Algebra) Not(p CharPred) CharPred {
	return p.Negate()
}

// Satisfiable reports whether some rune satisfies p.
func (Algebra) Satisfiable(p CharPred) (bool, error) {
	return !p.IsEmpty(), nil
}

// Models reports whether sym satisfies p.
func (Algebra) Models(p CharPred, sym rune) (bool, error) {
	return p.Contains(sym), nil
}

// Equivalent reports whether p and q denote the same rune set.
func (Algebra) Equivalent(p, q CharPred) (bool, error) {
	return p.Equal(q), nil
}

// Witness returns the smallest rune satisfying p.
func (Algebra) Witness(p CharPred) (rune, error) {
	r, ok := p.Min()
	if !ok {
		return 0, ErrNoWitness
	}
	return r, nil
}

// Apply evaluates a symbol function at the given rune.
func (Algebra) Apply(f CharFunc, sym rune) rune {
	return f.Eval(sym)
}

// Minterms returns the minterms of the given predicates by boundary
// splitting: the alphabet is cut at every range endpoint, each resulting
// segment has a uniform tag vector against the inputs, and segments with
// identical tags are merged back together so each minterm is maximal.
//
// The result is a satisfiable partition of the full alphabet, produced in
// ascending order of each minterm's smallest rune. Every segment is tested
// against every input predicate, so the cost is polynomial in the number
// of ranges and predicates, never 2^n.
func (a Algebra) Minterms(preds []CharPred, budget ba.Budget) ([]ba.Minterm[CharPred], error) {
	// Collect the cut points: the start of each range, and the position
	// just after each range.
	cuts := []rune{0}
	for _, p := range preds {
		for _, r := range p.ranges {
			cuts = append(cuts, r.Lo)
			if r.Hi < MaxRune {
				cuts = append(cuts, r.Hi+1)
			}
		}
	}
	sort.Slice(cuts, func(i, j int) bool { return cuts[i] < cuts[j] })

	// Walk the segments between consecutive cuts, grouping by tag vector.
	// Group order follows first appearance, which is ascending by the
	// group's smallest rune; that keeps the output deterministic.
	type group struct {
		pred CharPred
		tags *bitset.BitSet
	}
	var order []string
	groups := make(map[string]*group)

	for i := 0; i < len(cuts); i++ {
		if cuts[i] > MaxRune {
			continue
		}
		if i+1 < len(cuts) && cuts[i+1] == cuts[i] {
			continue // duplicate cut
		}
		if err := budget.Check("minterms"); err != nil {
			return nil, err
		}

		hi := MaxRune
		if i+1 < len(cuts) && cuts[i+1]-1 < hi {
			hi = cuts[i+1] - 1
		}
		seg := Range{cuts[i], hi}

		// Segments never straddle a range boundary, so membership of the
		// low end decides membership of the whole segment.
		tags := bitset.New(uint(len(preds)))
		for j, p := range preds {
			if p.Contains(seg.Lo) {
				tags.Set(uint(j))
			}
		}

		key := tags.String()
		g, ok := groups[key]
		if !ok {
			g = &group{pred: Empty(), tags: tags}
			groups[key] = g
			order = append(order, key)
		}
		g.pred = g.pred.Union(FromRange(seg.Lo, seg.Hi))
	}

	out := make([]ba.Minterm[CharPred], 0, len(order))
	for _, key := range order {
		g := groups[key]
		out = append(out, ba.Minterm[CharPred]{Predicate: g.pred, Tags: g.tags})
	}
	return out, nil
}
