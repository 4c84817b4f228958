package sst

import (
	"github.com/coregx/symbolic/ba"
)

// OutputOn runs the transducer on an input word and returns the produced
// output word. The second result is false when no final state is reached
// — absence of a result, not an error.
//
// The simulation keeps a frontier of (state, register assignment)
// configurations, starting from the initial state with all registers
// empty. Each input symbol advances every configuration along every
// input move whose guard it satisfies. After the input is exhausted, the
// first final configuration (in state order) has its output update
// applied, and register 0 is the result.
func (t *SST[P, F, S]) OutputOn(alg ba.FuncAlgebra[P, F, S], word []S) ([]S, bool, error) {
	src := t
	if !src.epsilonFree {
		var err error
		src, err = src.RemoveEpsilons(alg)
		if err != nil {
			return nil, false, err
		}
	}

	type config struct {
		state int
		asg   Assignment[S]
	}
	frontier := []config{{
		state: src.initial,
		asg:   make(Assignment[S], src.regs.Len()),
	}}

	for _, sym := range word {
		var next []config
		for _, cfg := range frontier {
			for _, m := range src.inputFrom[cfg.state] {
				models, err := alg.Models(m.guard, sym)
				if err != nil {
					return nil, false, err
				}
				if !models {
					continue
				}
				asg, err := m.update.ApplyTo(alg, src.regs, cfg.asg, sym)
				if err != nil {
					return nil, false, err
				}
				next = append(next, config{state: m.to, asg: asg})
			}
		}
		if len(next) == 0 {
			return nil, false, nil
		}
		frontier = next
	}

	for _, q := range src.Finals() {
		for _, cfg := range frontier {
			if cfg.state != q {
				continue
			}
			final, err := src.output[q].ApplyTo(src.regs, cfg.asg)
			if err != nil {
				return nil, false, err
			}
			return final[0], true, nil
		}
	}
	return nil, false, nil
}
