package sst

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coregx/symbolic/ba"
)

// ShufflePair is one component of the shuffle construction: a pair of
// transducers over the same input domain whose outputs are interleaved.
type ShufflePair[P, F, S any] struct {
	First  *SST[P, F, S]
	Second *SST[P, F, S]
}

// ComputeShuffle builds the shuffled iteration of the given pairs: the
// input is consumed as consecutive segments, each read synchronously by
// every component, and the output interleaves each segment's
// first-component outputs (held in one buffer register per pair) with the
// following segment's second-component outputs, folded into a shared
// accumulator.
//
// Three synchronized copies of the full product are built. Copy 1 handles
// the first segment, which only charges the buffers; copies 2 and 3
// alternate for the following segments, because the fold-and-recharge
// epsilon move cannot be a self-loop. With left set, the accumulator
// token is placed on the opposite side of the fold.
func ComputeShuffle[P, F, S any](alg ba.FuncAlgebra[P, F, S], pairs []ShufflePair[P, F, S], left bool, budget ba.Budget) (*SST[P, F, S], error) {
	if len(pairs) == 0 {
		return NewEmpty(alg), nil
	}

	// Epsilon-free components: firsts at even slots, seconds at odd.
	comps := make([]*SST[P, F, S], 0, 2*len(pairs))
	for _, pr := range pairs {
		first, err := pr.First.RemoveEpsilons(alg)
		if err != nil {
			return nil, err
		}
		second, err := pr.Second.RemoveEpsilons(alg)
		if err != nil {
			return nil, err
		}
		comps = append(comps, first, second)
	}

	// Register space: renamed component registers, one buffer per pair,
	// one accumulator.
	renames := make([]map[string]string, len(comps))
	var variables []string
	for c, comp := range comps {
		ren := make(map[string]string, comp.regs.Len())
		for j, name := range comp.regs.Names() {
			fresh := fmt.Sprintf("c%dx%d", c, j)
			ren[name] = fresh
			variables = append(variables, fresh)
		}
		renames[c] = ren
	}
	bufName := func(i int) string { return fmt.Sprintf("buf%d", i) }
	for i := range pairs {
		variables = append(variables, bufName(i))
	}
	variables = append(variables, accRegister)
	arity := len(variables)

	type node struct {
		copyNo int
		tuple  []int
	}
	key := func(n node) string {
		var sb strings.Builder
		sb.WriteString(strconv.Itoa(n.copyNo))
		for _, q := range n.tuple {
			sb.WriteByte('|')
			sb.WriteString(strconv.Itoa(q))
		}
		return sb.String()
	}
	reached := make(map[string]int)
	var nodes []node
	var worklist []int
	admit := func(n node) int {
		k := key(n)
		if id, ok := reached[k]; ok {
			return id
		}
		id := len(nodes)
		reached[k] = id
		nodes = append(nodes, n)
		worklist = append(worklist, id)
		return id
	}

	initTuple := make([]int, len(comps))
	for c, comp := range comps {
		initTuple[c] = comp.initial
	}
	initial := admit(node{copyNo: 1, tuple: initTuple})

	// charge fills the buffers from the first components' outputs and
	// clears every component register; fold additionally accumulates the
	// buffered firsts interleaved with the second components' outputs.
	charge := func(tuple []int, fold bool) SimpleUpdate[F, S] {
		u := EmptyUpdate[F, S](arity)
		accIdx := arity - 1
		bufBase := arity - 1 - len(pairs)
		for i := range pairs {
			outFirst := comps[2*i].output[tuple[2*i]].RenameVars(renames[2*i])
			u[bufBase+i] = outFirst[0]
		}
		if !fold {
			u[accIdx] = []Token[F, S]{Var[F, S](accRegister)}
			return u
		}
		var woven []Token[F, S]
		for i := range pairs {
			woven = append(woven, Var[F, S](bufName(i)))
			outSecond := comps[2*i+1].output[tuple[2*i+1]].RenameVars(renames[2*i+1])
			woven = append(woven, outSecond[0]...)
		}
		if left {
			u[accIdx] = append(woven, Var[F, S](accRegister))
		} else {
			u[accIdx] = append([]Token[F, S]{Var[F, S](accRegister)}, woven...)
		}
		return u
	}

	allFinal := func(tuple []int) bool {
		for c, comp := range comps {
			if !comp.IsFinal(tuple[c]) {
				return false
			}
		}
		return true
	}

	var moves []Move[P, F, S]
	output := make(map[int]SimpleUpdate[F, S])
	for len(worklist) > 0 {
		if err := budget.Check("shuffle"); err != nil {
			return nil, err
		}
		id := worklist[0]
		worklist = worklist[1:]
		n := nodes[id]

		if allFinal(n.tuple) {
			switch n.copyNo {
			case 1:
				// First segment only charges buffers.
				moves = append(moves, Epsilon[P](id, admit(node{copyNo: 2, tuple: initTuple}), charge(n.tuple, false)))
			default:
				other := 2
				if n.copyNo == 2 {
					other = 3
				}
				moves = append(moves, Epsilon[P](id, admit(node{copyNo: other, tuple: initTuple}), charge(n.tuple, true)))

				// Ending here emits the pending fold into register 0.
				fold := charge(n.tuple, true)
				final := EmptyUpdate[F, S](arity)
				final[0] = fold[arity-1]
				output[id] = final
			}
		}

		// Synchronized product step: one input move per component.
		lists := make([][]Move[P, F, S], len(comps))
		for c := range comps {
			lists[c] = comps[c].inputFrom[n.tuple[c]]
		}
		choice := make([]int, len(comps))
		for {
			ok := true
			for c := range comps {
				if len(lists[c]) == 0 {
					ok = false
					break
				}
			}
			if !ok {
				break
			}

			guards := make([]P, len(comps))
			for c := range comps {
				guards[c] = lists[c][choice[c]].guard
			}
			guard := alg.AndAll(guards)
			sat, err := alg.Satisfiable(guard)
			if err != nil {
				return nil, err
			}
			if sat {
				update := make(FunctionalUpdate[F, S], 0, arity)
				tuple := make([]int, len(comps))
				for c := range comps {
					mv := lists[c][choice[c]]
					update = append(update, renameRows(mv.update, renames[c])...)
					tuple[c] = mv.to
				}
				for i := range pairs {
					update = append(update, []Token[F, S]{Var[F, S](bufName(i))})
				}
				update = append(update, []Token[F, S]{Var[F, S](accRegister)})
				moves = append(moves, Input(id, admit(node{copyNo: n.copyNo, tuple: tuple}), guard, update))
			}

			// Advance the choice vector (odometer order).
			c := len(comps) - 1
			for c >= 0 {
				choice[c]++
				if choice[c] < len(lists[c]) {
					break
				}
				choice[c] = 0
				c--
			}
			if c < 0 {
				break
			}
		}
	}

	return New(alg, moves, initial, variables, output, DefaultBuildConfig())
}
