package sst

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coregx/symbolic/ba"
)

// closure is the decorated epsilon closure of one state: the reachable
// states in discovery order, each bound to the simple update composed
// along its (unique) epsilon path from the source.
type closure[F, S any] struct {
	members []int
	update  map[int]SimpleUpdate[F, S]
	final   int  // the unique final member, if any
	isFinal bool // whether a final member exists
}

// epsilonClosure computes the decorated closure of q. The epsilon graph
// out of q must be tree-shaped: reaching the same state along two
// distinct epsilon paths is a structure error, as are two distinct final
// states inside one closure.
func (t *SST[P, F, S]) epsilonClosure(q int) (*closure[F, S], error) {
	c := &closure[F, S]{
		members: []int{q},
		update:  map[int]SimpleUpdate[F, S]{q: Identity[F, S](t.regs)},
	}
	for i := 0; i < len(c.members); i++ {
		u := c.members[i]
		for _, m := range t.epsFrom[u] {
			if _, seen := c.update[m.to]; seen {
				return nil, &MalformedError{
					Kind:    EpsilonTree,
					Message: fmt.Sprintf("state %d reached by two distinct epsilon paths from %d", m.to, q),
				}
			}
			c.update[m.to] = ComposeSimple(t.regs, c.update[u], m.simple)
			c.members = append(c.members, m.to)
		}
	}
	for _, u := range c.members {
		if t.IsFinal(u) {
			if c.isFinal {
				return nil, &MalformedError{
					Kind:    EpsilonFinalConflict,
					Message: fmt.Sprintf("states %d and %d are both final in the epsilon closure of %d", c.final, u, q),
				}
			}
			c.final = u
			c.isFinal = true
		}
	}
	return c, nil
}

func (c *closure[F, S]) key() string {
	sorted := append([]int(nil), c.members...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	var sb strings.Builder
	for i, q := range sorted {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(q))
	}
	return sb.String()
}

// RemoveEpsilons returns an equivalent epsilon-free transducer.
//
// Each new state is the epsilon closure of an original state. For every
// input move out of a closure member q, the resulting move keeps the
// guard, composes the closure update of q with the move's functional
// update, and targets the closure of the move's destination. If a
// closure contains a final state, the new state's output composes the
// closure update of that member with its original output.
func (t *SST[P, F, S]) RemoveEpsilons(alg ba.FuncAlgebra[P, F, S]) (*SST[P, F, S], error) {
	if t.epsilonFree {
		return t.Clone(), nil
	}

	reached := make(map[string]int)
	var closures []*closure[F, S]
	var worklist []int

	admit := func(c *closure[F, S]) int {
		key := c.key()
		if id, ok := reached[key]; ok {
			return id
		}
		id := len(closures)
		reached[key] = id
		closures = append(closures, c)
		worklist = append(worklist, id)
		return id
	}

	initClosure, err := t.epsilonClosure(t.initial)
	if err != nil {
		return nil, err
	}
	initial := admit(initClosure)

	var moves []Move[P, F, S]
	output := make(map[int]SimpleUpdate[F, S])
	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]
		c := closures[id]

		if c.isFinal {
			out := t.output[c.final]
			output[id] = ComposeSimple(t.regs, c.update[c.final], out)
		}

		for _, q := range c.members {
			for _, m := range t.inputFrom[q] {
				target, err := t.epsilonClosure(m.to)
				if err != nil {
					return nil, err
				}
				update := ComposeFunctional(t.regs, c.update[q], m.update)
				moves = append(moves, Input(id, admit(target), m.guard, update))
			}
		}
	}

	return New(alg, moves, initial, t.regs.Names(), output, BuildConfig{TrimUnreachable: true})
}
