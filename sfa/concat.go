package sfa

import (
	"github.com/coregx/symbolic/ba"
)

// Concat returns the automaton accepting u·v for every u accepted by a and
// v accepted by b: epsilon moves connect each final of a to the initial of
// the renumbered b, and only b's finals remain final.
func (a *SFA[P, S]) Concat(alg ba.Algebra[P, S], b *SFA[P, S]) (*SFA[P, S], error) {
	offB := a.maxState + 1

	moves := a.Moves()
	for _, m := range b.Moves() {
		moves = append(moves, m.retarget(m.from+offB, m.to+offB))
	}
	for _, q := range a.Finals() {
		moves = append(moves, Epsilon[P](q, b.initial+offB))
	}

	var finals []int
	for _, q := range b.Finals() {
		finals = append(finals, q+offB)
	}

	return New(alg, moves, a.initial, finals, BuildConfig{TrimUnreachable: true})
}

// Star returns the automaton accepting zero or more repetitions of a's
// language. A fresh state is both the initial and the sole final state,
// with an epsilon edge to the old initial and one back from every old
// final.
func (a *SFA[P, S]) Star(alg ba.Algebra[P, S]) (*SFA[P, S], error) {
	off := 1

	moves := []Move[P]{Epsilon[P](0, a.initial+off)}
	for _, m := range a.Moves() {
		moves = append(moves, m.retarget(m.from+off, m.to+off))
	}
	for _, q := range a.Finals() {
		moves = append(moves, Epsilon[P](q+off, 0))
	}

	return New(alg, moves, 0, []int{0}, BuildConfig{TrimUnreachable: true})
}
