package sst

import (
	"fmt"

	"github.com/coregx/symbolic/ba"
)

// renameByIndex maps each register name to a canonical name derived from
// its index, e.g. format "x%d" sends the i-th register to x<i>.
func renameByIndex(vars []string, format string) map[string]string {
	m := make(map[string]string, len(vars))
	for i, name := range vars {
		m[name] = fmt.Sprintf(format, i)
	}
	return m
}

// accRegister is the accumulator register introduced by the sequencing
// constructions. The canonical register names are x<i>, so the name
// cannot collide.
const accRegister = "xacc"

// Combine returns the synchronized product of two transducers with
// concatenated outputs: on every input word accepted by both, the result
// outputs A's output followed by B's.
//
// The registers of the two transducers coexist under fresh names. Both
// inputs must be single-valued; the construction does not check
// functionality.
func Combine[P, F, S any](alg ba.FuncAlgebra[P, F, S], a, b *SST[P, F, S], budget ba.Budget) (*SST[P, F, S], error) {
	a2, err := a.RemoveEpsilons(alg)
	if err != nil {
		return nil, err
	}
	b2, err := b.RemoveEpsilons(alg)
	if err != nil {
		return nil, err
	}

	renA := renameByIndex(a2.regs.Names(), "x%d")
	renB := renameByIndex(b2.regs.Names(), "y%d")
	arity := a2.regs.Len() + b2.regs.Len()
	variables := make([]string, 0, arity)
	for i := 0; i < a2.regs.Len(); i++ {
		variables = append(variables, fmt.Sprintf("x%d", i))
	}
	for j := 0; j < b2.regs.Len(); j++ {
		variables = append(variables, fmt.Sprintf("y%d", j))
	}

	type pairKey struct{ p, q int }
	reached := make(map[pairKey]int)
	var pairs []pairKey
	var worklist []int
	admit := func(p, q int) int {
		key := pairKey{p, q}
		if id, ok := reached[key]; ok {
			return id
		}
		id := len(pairs)
		reached[key] = id
		pairs = append(pairs, key)
		worklist = append(worklist, id)
		return id
	}

	initial := admit(a2.initial, b2.initial)

	var moves []Move[P, F, S]
	output := make(map[int]SimpleUpdate[F, S])
	for len(worklist) > 0 {
		if err := budget.Check("combine"); err != nil {
			return nil, err
		}
		id := worklist[0]
		worklist = worklist[1:]
		pr := pairs[id]

		outA, finalA := a2.output[pr.p]
		outB, finalB := b2.output[pr.q]
		if finalA && finalB {
			output[id] = CombineOutputUpdates(renA, renB, outA, outB, arity)
		}

		for _, t1 := range a2.inputFrom[pr.p] {
			for _, t2 := range b2.inputFrom[pr.q] {
				guard := alg.And(t1.guard, t2.guard)
				sat, err := alg.Satisfiable(guard)
				if err != nil {
					return nil, err
				}
				if !sat {
					continue
				}
				update := CombineUpdates(renA, renB, t1.update, t2.update)
				moves = append(moves, Input(id, admit(t1.to, t2.to), guard, update))
			}
		}
	}

	return New(alg, moves, initial, variables, output, DefaultBuildConfig())
}

// Union returns the transducer realizing A's relation on A's domain and
// B's on B's: a fresh initial state with epsilon moves, carrying all-empty
// updates, into the two renumbered originals over a shared register set.
func Union[P, F, S any](alg ba.FuncAlgebra[P, F, S], a, b *SST[P, F, S]) (*SST[P, F, S], error) {
	n := a.regs.Len()
	if b.regs.Len() > n {
		n = b.regs.Len()
	}
	variables := canonicalRegisters(n).Names()
	renA := renameByIndex(a.regs.Names(), "x%d")
	renB := renameByIndex(b.regs.Names(), "x%d")

	offA := 1
	offB := a.maxState + 2

	moves := []Move[P, F, S]{
		Epsilon[P](0, a.initial+offA, EmptyUpdate[F, S](n)),
		Epsilon[P](0, b.initial+offB, EmptyUpdate[F, S](n)),
	}
	for _, m := range a.Moves() {
		m = m.retarget(m.from+offA, m.to+offA)
		moves = append(moves, m.mapUpdate(func(rows [][]Token[F, S]) [][]Token[F, S] {
			return liftRows(renameRows(rows, renA), n)
		}))
	}
	for _, m := range b.Moves() {
		m = m.retarget(m.from+offB, m.to+offB)
		moves = append(moves, m.mapUpdate(func(rows [][]Token[F, S]) [][]Token[F, S] {
			return liftRows(renameRows(rows, renB), n)
		}))
	}

	output := make(map[int]SimpleUpdate[F, S])
	for q, u := range a.output {
		output[q+offA] = u.RenameVars(renA).LiftToNVars(n)
	}
	for q, u := range b.output {
		output[q+offB] = u.RenameVars(renB).LiftToNVars(n)
	}

	return New(alg, moves, 0, variables, output, BuildConfig{TrimUnreachable: true})
}

// Concat returns the transducer mapping u·v to A(u)·B(v) for every split
// with u in A's domain and v in B's.
//
// Both transducers are renamed onto a shared register set extended with
// one accumulator. At each final state of A an epsilon move hands off to
// B's initial state, saving A's output into the accumulator; B's moves
// thread the accumulator through, and B's finals emit it before their own
// output.
func Concat[P, F, S any](alg ba.FuncAlgebra[P, F, S], a, b *SST[P, F, S]) (*SST[P, F, S], error) {
	n := a.regs.Len()
	if b.regs.Len() > n {
		n = b.regs.Len()
	}
	regs := canonicalRegisters(n, accRegister)
	arity := n + 1
	renA := renameByIndex(a.regs.Names(), "x%d")
	renB := renameByIndex(b.regs.Names(), "x%d")

	offB := a.maxState + 1

	var moves []Move[P, F, S]
	for _, m := range a.Moves() {
		moves = append(moves, m.mapUpdate(func(rows [][]Token[F, S]) [][]Token[F, S] {
			return liftRows(renameRows(rows, renA), arity)
		}))
	}
	preserveAcc := func(rows [][]Token[F, S]) [][]Token[F, S] {
		out := liftRows(renameRows(rows, renB), arity)
		out[arity-1] = []Token[F, S]{Var[F, S](accRegister)}
		return out
	}
	for _, m := range b.Moves() {
		m = m.retarget(m.from+offB, m.to+offB)
		moves = append(moves, m.mapUpdate(preserveAcc))
	}

	// Hand-off: save A's output into the accumulator, clear the rest.
	for _, q := range a.Finals() {
		outA := a.output[q].RenameVars(renA)
		handoff := EmptyUpdate[F, S](arity)
		handoff[arity-1] = outA[0]
		moves = append(moves, Epsilon[P](q, b.initial+offB, handoff))
	}

	output := make(map[int]SimpleUpdate[F, S])
	for q, u := range b.output {
		outB := u.RenameVars(renB)
		final := EmptyUpdate[F, S](arity)
		final[0] = append([]Token[F, S]{Var[F, S](accRegister)}, outB[0]...)
		output[q+offB] = final
	}

	return New(alg, moves, a.initial, regs.Names(), output, BuildConfig{TrimUnreachable: true})
}

// Star returns the transducer mapping w = w_1…w_k (each w_i in A's
// domain) to A(w_1)·…·A(w_k), iterations emitted left to right.
func Star[P, F, S any](alg ba.FuncAlgebra[P, F, S], a *SST[P, F, S]) (*SST[P, F, S], error) {
	return star(alg, a, false)
}

// LeftStar is Star with the reversed emission order: the transducer maps
// w = w_1…w_k to A(w_k)·…·A(w_1).
func LeftStar[P, F, S any](alg ba.FuncAlgebra[P, F, S], a *SST[P, F, S]) (*SST[P, F, S], error) {
	return star(alg, a, true)
}

func star[P, F, S any](alg ba.FuncAlgebra[P, F, S], a *SST[P, F, S], left bool) (*SST[P, F, S], error) {
	n := a.regs.Len()
	regs := canonicalRegisters(n, accRegister)
	arity := n + 1
	ren := renameByIndex(a.regs.Names(), "x%d")

	off := 1
	preserveAcc := func(rows [][]Token[F, S]) [][]Token[F, S] {
		out := liftRows(renameRows(rows, ren), arity)
		out[arity-1] = []Token[F, S]{Var[F, S](accRegister)}
		return out
	}

	// Entering an iteration clears A's registers and keeps the
	// accumulator.
	enter := EmptyUpdate[F, S](arity)
	enter[arity-1] = []Token[F, S]{Var[F, S](accRegister)}
	moves := []Move[P, F, S]{Epsilon[P](0, a.initial+off, enter)}

	for _, m := range a.Moves() {
		m = m.retarget(m.from+off, m.to+off)
		moves = append(moves, m.mapUpdate(preserveAcc))
	}

	// Leaving an iteration folds A's output into the accumulator.
	for _, q := range a.Finals() {
		outA := a.output[q].RenameVars(ren)
		fold := EmptyUpdate[F, S](arity)
		if left {
			fold[arity-1] = append(append([]Token[F, S](nil), outA[0]...), Var[F, S](accRegister))
		} else {
			fold[arity-1] = append([]Token[F, S]{Var[F, S](accRegister)}, outA[0]...)
		}
		moves = append(moves, Epsilon[P](q+off, 0, fold))
	}

	output := map[int]SimpleUpdate[F, S]{}
	final := EmptyUpdate[F, S](arity)
	final[0] = []Token[F, S]{Var[F, S](accRegister)}
	output[0] = final

	return New(alg, moves, 0, regs.Names(), output, BuildConfig{TrimUnreachable: true})
}
