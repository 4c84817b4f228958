package sfa

import (
	"github.com/coregx/symbolic/ba"
)

// MkTotal returns an equivalent total automaton: every state has outgoing
// guards covering the whole alphabet. The automaton is determinized first
// if needed; missing symbols are routed to a fresh non-final sink with a
// True self-loop.
func (a *SFA[P, S]) MkTotal(alg ba.Algebra[P, S], budget ba.Budget) (*SFA[P, S], error) {
	src := a
	if !src.deterministic {
		var err error
		src, err = src.Determinize(alg, budget)
		if err != nil {
			return nil, err
		}
	}
	if src.total {
		return src.Clone(), nil
	}

	sink := src.maxState + 1
	moves := src.Moves()
	needSink := false
	for _, q := range src.states {
		if err := budget.Check("mkTotal"); err != nil {
			return nil, err
		}
		cover := alg.False()
		for _, m := range src.inputFrom[q] {
			cover = alg.Or(cover, m.guard)
		}
		missing := alg.Not(cover)
		sat, err := alg.Satisfiable(missing)
		if err != nil {
			return nil, err
		}
		if sat {
			moves = append(moves, Input(q, sink, missing))
			needSink = true
		}
	}
	if needSink {
		moves = append(moves, Input(sink, sink, alg.True()))
	}

	// The sink is deliberately dead (non-final); trimming would drop it.
	out, err := New(alg, moves, src.initial, src.Finals(), BuildConfig{})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Complement returns the automaton accepting exactly the words a rejects:
// a is determinized and totalized, then the final-state set is inverted.
func (a *SFA[P, S]) Complement(alg ba.Algebra[P, S], budget ba.Budget) (*SFA[P, S], error) {
	total, err := a.MkTotal(alg, budget)
	if err != nil {
		return nil, err
	}
	var finals []int
	for _, q := range total.states {
		if !total.IsFinal(q) {
			finals = append(finals, q)
		}
	}
	return New(alg, total.Moves(), total.initial, finals, BuildConfig{TrimUnreachable: true})
}

// Intersect returns the automaton accepting the words accepted by both a
// and b. It is the synchronized product over pairs of epsilon closures; a
// pair is final iff both closures contain a final state, and a move exists
// for every pair of component moves whose guard conjunction is
// satisfiable.
func (a *SFA[P, S]) Intersect(alg ba.Algebra[P, S], b *SFA[P, S], budget ba.Budget) (*SFA[P, S], error) {
	if a.empty || b.empty {
		return NewEmpty[P, S](), nil
	}

	type pair struct {
		left  []int
		right []int
	}
	reached := make(map[string]int)
	var pairs []pair
	var worklist []int

	admit := func(left, right []int) int {
		l, r := sortedCopy(left), sortedCopy(right)
		key := subsetKey(l) + "|" + subsetKey(r)
		if id, ok := reached[key]; ok {
			return id
		}
		id := len(pairs)
		reached[key] = id
		pairs = append(pairs, pair{left: l, right: r})
		worklist = append(worklist, id)
		return id
	}

	initial := admit(a.epsilonClosure(a.initial), b.epsilonClosure(b.initial))

	var moves []Move[P]
	var finals []int
	for len(worklist) > 0 {
		if err := budget.Check("intersect"); err != nil {
			return nil, err
		}
		id := worklist[0]
		worklist = worklist[1:]
		pr := pairs[id]

		if a.anyFinal(pr.left) && b.anyFinal(pr.right) {
			finals = append(finals, id)
		}

		for _, ql := range pr.left {
			for _, t1 := range a.inputFrom[ql] {
				for _, qr := range pr.right {
					for _, t2 := range b.inputFrom[qr] {
						guard := alg.And(t1.guard, t2.guard)
						sat, err := alg.Satisfiable(guard)
						if err != nil {
							return nil, err
						}
						if !sat {
							continue
						}
						target := admit(a.epsilonClosure(t1.to), b.epsilonClosure(t2.to))
						moves = append(moves, Input(id, target, guard))
					}
				}
			}
		}
	}

	return New(alg, moves, initial, finals, DefaultBuildConfig())
}

// Union returns the automaton accepting the words accepted by a or b:
// a fresh initial state with epsilon moves to the two renumbered
// originals.
func (a *SFA[P, S]) Union(alg ba.Algebra[P, S], b *SFA[P, S]) (*SFA[P, S], error) {
	offA := 1
	offB := a.maxState + 2

	moves := []Move[P]{
		Epsilon[P](0, a.initial+offA),
		Epsilon[P](0, b.initial+offB),
	}
	for _, m := range a.Moves() {
		moves = append(moves, m.retarget(m.from+offA, m.to+offA))
	}
	for _, m := range b.Moves() {
		moves = append(moves, m.retarget(m.from+offB, m.to+offB))
	}

	var finals []int
	for _, q := range a.Finals() {
		finals = append(finals, q+offA)
	}
	for _, q := range b.Finals() {
		finals = append(finals, q+offB)
	}

	return New(alg, moves, 0, finals, BuildConfig{TrimUnreachable: true})
}

// Difference returns the automaton accepting the words accepted by a but
// not by b.
func (a *SFA[P, S]) Difference(alg ba.Algebra[P, S], b *SFA[P, S], budget ba.Budget) (*SFA[P, S], error) {
	if a.empty {
		return NewEmpty[P, S](), nil
	}
	notB, err := b.Complement(alg, budget)
	if err != nil {
		return nil, err
	}
	return a.Intersect(alg, notB, budget)
}
