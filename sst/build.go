package sst

import (
	"fmt"
	"sort"

	"github.com/coregx/symbolic/ba"
)

// BuildConfig controls the construction passes applied by New.
type BuildConfig struct {
	// TrimUnreachable drops states that are not both reachable from the
	// initial state and able to reach a final state.
	TrimUnreachable bool
}

// DefaultBuildConfig returns the configuration used by the constructions
// in this package.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{TrimUnreachable: true}
}

// New constructs an SST from a collection of moves, an initial state, an
// ordered register declaration, and an output function mapping final
// states to simple updates.
//
// Construction validates the update algebra: every update vector must
// have one entry per declared register, register references must be
// declared, and epsilon moves and outputs must be simple (no function
// tokens). Input moves with unsatisfiable guards and epsilon self-loops
// are dropped.
func New[P, F, S any](alg ba.FuncAlgebra[P, F, S], moves []Move[P, F, S], initial int, variables []string, output map[int]SimpleUpdate[F, S], cfg BuildConfig) (*SST[P, F, S], error) {
	regs, err := NewRegisters(variables)
	if err != nil {
		return nil, err
	}
	if initial < 0 {
		return nil, &MalformedError{Kind: ArityMismatch, Message: "initial state must be nonnegative"}
	}

	stateSet := map[int]struct{}{initial: {}}
	outCopy := make(map[int]SimpleUpdate[F, S], len(output))
	for q, u := range output {
		if err := validateSimple(regs, u, fmt.Sprintf("output of state %d", q)); err != nil {
			return nil, err
		}
		outCopy[q] = u.Clone()
		stateSet[q] = struct{}{}
	}

	inputFrom := make(map[int][]Move[P, F, S])
	epsFrom := make(map[int][]Move[P, F, S])
	for _, m := range moves {
		stateSet[m.from] = struct{}{}
		stateSet[m.to] = struct{}{}
		switch m.kind {
		case MoveEpsilon:
			if m.from == m.to {
				continue // self-epsilon is a no-op
			}
			if err := validateSimple(regs, m.simple, fmt.Sprintf("epsilon move %d->%d", m.from, m.to)); err != nil {
				return nil, err
			}
			epsFrom[m.from] = append(epsFrom[m.from], m)
		default:
			if err := validateFunctional(regs, m.update, fmt.Sprintf("input move %d->%d", m.from, m.to)); err != nil {
				return nil, err
			}
			sat, err := alg.Satisfiable(m.guard)
			if err != nil {
				return nil, err
			}
			if !sat {
				continue
			}
			inputFrom[m.from] = append(inputFrom[m.from], m)
		}
	}

	t := assemble(stateSet, initial, regs, outCopy, inputFrom, epsFrom)
	if cfg.TrimUnreachable {
		t = t.trim()
	}
	return t, nil
}

// NewEmpty returns the transducer defined on no input at all.
func NewEmpty[P, F, S any](alg ba.FuncAlgebra[P, F, S]) *SST[P, F, S] {
	regs, _ := NewRegisters([]string{"x0"})
	return &SST[P, F, S]{
		states:      []int{0},
		stateSet:    map[int]struct{}{0: {}},
		initial:     0,
		regs:        regs,
		output:      map[int]SimpleUpdate[F, S]{},
		inputFrom:   map[int][]Move[P, F, S]{},
		epsFrom:     map[int][]Move[P, F, S]{},
		epsilonFree: true,
		empty:       true,
		maxState:    0,
	}
}

// NewConstOutput returns the transducer accepting only the empty input
// and producing the given constant word.
func NewConstOutput[P, F, S any](alg ba.FuncAlgebra[P, F, S], word []S) (*SST[P, F, S], error) {
	output := map[int]SimpleUpdate[F, S]{
		0: {Consts[F](word)},
	}
	return New(alg, nil, 0, []string{"x0"}, output, BuildConfig{})
}

// NewBase returns the transducer accepting a single symbol satisfying
// guard and producing the given functions of it, in order.
func NewBase[P, F, S any](alg ba.FuncAlgebra[P, F, S], guard P, fns []F) (*SST[P, F, S], error) {
	row := make([]Token[F, S], len(fns))
	for i, fn := range fns {
		row[i] = Func[F, S](fn)
	}
	moves := []Move[P, F, S]{
		Input(0, 1, guard, FunctionalUpdate[F, S]{row}),
	}
	output := map[int]SimpleUpdate[F, S]{
		1: Identity[F, S](canonicalRegisters(1)),
	}
	return New(alg, moves, 0, []string{"x0"}, output, BuildConfig{})
}

// RemoveUnreachable returns a copy without the states that are not both
// reachable from the initial state and able to reach a final state.
func (t *SST[P, F, S]) RemoveUnreachable() *SST[P, F, S] {
	return t.trim()
}

func validateSimple[F, S any](regs Registers, u SimpleUpdate[F, S], where string) error {
	if len(u) != regs.Len() {
		return arityError(len(u), regs.Len(), where)
	}
	for _, row := range u {
		for _, tok := range row {
			switch tok.kind {
			case TokenFunc:
				return &MalformedError{
					Kind:    FunctionToken,
					Message: fmt.Sprintf("function token in %s", where),
				}
			case TokenVar:
				if _, ok := regs.Index(tok.name); !ok {
					return undeclared(tok.name)
				}
			}
		}
	}
	return nil
}

func validateFunctional[F, S any](regs Registers, u FunctionalUpdate[F, S], where string) error {
	if len(u) != regs.Len() {
		return arityError(len(u), regs.Len(), where)
	}
	for _, row := range u {
		for _, tok := range row {
			if tok.kind == TokenVar {
				if _, ok := regs.Index(tok.name); !ok {
					return undeclared(tok.name)
				}
			}
		}
	}
	return nil
}

func arityError(got, want int, where string) error {
	return &MalformedError{
		Kind:    ArityMismatch,
		Message: fmt.Sprintf("%s has %d register entries, want %d", where, got, want),
	}
}

func assemble[P, F, S any](stateSet map[int]struct{}, initial int, regs Registers, output map[int]SimpleUpdate[F, S], inputFrom, epsFrom map[int][]Move[P, F, S]) *SST[P, F, S] {
	states := make([]int, 0, len(stateSet))
	maxState := 0
	for q := range stateSet {
		states = append(states, q)
		if q > maxState {
			maxState = q
		}
	}
	sort.Ints(states)

	t := &SST[P, F, S]{
		states:    states,
		stateSet:  stateSet,
		initial:   initial,
		regs:      regs,
		output:    output,
		inputFrom: inputFrom,
		epsFrom:   epsFrom,
		maxState:  maxState,
	}

	t.epsilonFree = true
	for _, ms := range epsFrom {
		if len(ms) > 0 {
			t.epsilonFree = false
			break
		}
	}
	t.empty = true
	for q := range t.forwardReachable() {
		if t.IsFinal(q) {
			t.empty = false
			break
		}
	}
	return t
}

// trim keeps only alive states; when nothing alive remains final, the
// result is the canonical empty transducer shape over the same registers.
func (t *SST[P, F, S]) trim() *SST[P, F, S] {
	fwd := t.forwardReachable()
	bwd := t.backwardReachable()

	alive := make(map[int]struct{})
	for q := range fwd {
		if _, ok := bwd[q]; ok {
			alive[q] = struct{}{}
		}
	}
	if _, ok := alive[t.initial]; !ok {
		return &SST[P, F, S]{
			states:      []int{0},
			stateSet:    map[int]struct{}{0: {}},
			initial:     0,
			regs:        t.regs,
			output:      map[int]SimpleUpdate[F, S]{},
			inputFrom:   map[int][]Move[P, F, S]{},
			epsFrom:     map[int][]Move[P, F, S]{},
			epsilonFree: true,
			empty:       true,
			maxState:    0,
		}
	}

	output := make(map[int]SimpleUpdate[F, S])
	for q, u := range t.output {
		if _, ok := alive[q]; ok {
			output[q] = u.Clone()
		}
	}
	inputFrom := make(map[int][]Move[P, F, S])
	epsFrom := make(map[int][]Move[P, F, S])
	for q := range alive {
		for _, m := range t.inputFrom[q] {
			if _, ok := alive[m.to]; ok {
				inputFrom[q] = append(inputFrom[q], m)
			}
		}
		for _, m := range t.epsFrom[q] {
			if _, ok := alive[m.to]; ok {
				epsFrom[q] = append(epsFrom[q], m)
			}
		}
	}
	return assemble(alive, t.initial, t.regs, output, inputFrom, epsFrom)
}
