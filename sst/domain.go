package sst

import (
	"github.com/coregx/symbolic/ba"
	"github.com/coregx/symbolic/sfa"
)

// Domain projects the transducer to the symbolic finite automaton
// accepting exactly its domain: register updates are forgotten on every
// move and the output function's keys become the final states.
func (t *SST[P, F, S]) Domain(alg ba.Algebra[P, S]) (*sfa.SFA[P, S], error) {
	var moves []sfa.Move[P]
	for _, m := range t.Moves() {
		if m.IsEpsilon() {
			moves = append(moves, sfa.Epsilon[P](m.From(), m.To()))
		} else {
			moves = append(moves, sfa.Input(m.From(), m.To(), m.Guard()))
		}
	}
	return sfa.New(alg, moves, t.initial, t.Finals(), sfa.BuildConfig{})
}
