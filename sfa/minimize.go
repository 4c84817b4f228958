package sfa

import (
	"sort"

	"github.com/coregx/symbolic/ba"
)

// Minimize returns the minimal total deterministic automaton accepting
// a's language: no equivalent total deterministic SFA over the same
// algebra has fewer states.
//
// The automaton is determinized, totalized and normalized first, then a
// block-refinement runs in the symbolic setting: popping a splitter block
// R, each predecessor state s gets π(s), the disjunction of its guards
// entering R, and a block is split wherever two members' π predicates
// differ on some symbol. Predicate comparison uses only And/Not
// satisfiability queries, never structural equality.
func (a *SFA[P, S]) Minimize(alg ba.Algebra[P, S], budget ba.Budget) (*SFA[P, S], error) {
	total, err := prepare(a, alg, budget)
	if err != nil {
		return nil, err
	}
	if total.empty {
		return NewEmpty[P, S](), nil
	}

	// Initial partition: finals vs non-finals.
	var fin, nonfin []int
	for _, q := range total.states {
		if total.IsFinal(q) {
			fin = append(fin, q)
		} else {
			nonfin = append(nonfin, q)
		}
	}

	blocks := make(map[int][]int) // block id -> sorted members
	blockOf := make(map[int]int)  // state -> block id
	nextBlock := 0
	addBlock := func(members []int) int {
		id := nextBlock
		nextBlock++
		blocks[id] = members
		for _, q := range members {
			blockOf[q] = id
		}
		return id
	}

	finBlock := addBlock(fin)
	var worklist []int
	inWork := make(map[int]bool)
	push := func(id int) {
		if !inWork[id] {
			inWork[id] = true
			worklist = append(worklist, id)
		}
	}
	if len(nonfin) > 0 {
		nonfinBlock := addBlock(nonfin)
		if len(fin) <= len(nonfin) {
			push(finBlock)
		} else {
			push(nonfinBlock)
		}
	} else {
		push(finBlock)
	}

	for len(worklist) > 0 {
		if err := budget.Check("minimize"); err != nil {
			return nil, err
		}
		splitter := worklist[0]
		worklist = worklist[1:]
		inWork[splitter] = false

		inSplitter := make(map[int]struct{}, len(blocks[splitter]))
		for _, q := range blocks[splitter] {
			inSplitter[q] = struct{}{}
		}

		// π(s): disjunction of guards from s into the splitter.
		pi := make(map[int]P)
		var preds []int
		for _, s := range total.states {
			for _, m := range total.inputFrom[s] {
				if _, ok := inSplitter[m.to]; ok {
					if cur, seen := pi[s]; seen {
						pi[s] = alg.Or(cur, m.guard)
					} else {
						pi[s] = m.guard
						preds = append(preds, s)
					}
				}
			}
		}

		// Blocks containing a predecessor, in ascending id order.
		affectedSet := make(map[int]struct{})
		var affected []int
		for _, s := range preds {
			if _, ok := affectedSet[blockOf[s]]; !ok {
				affectedSet[blockOf[s]] = struct{}{}
				affected = append(affected, blockOf[s])
			}
		}
		sort.Ints(affected)

		for _, cid := range affected {
			members := blocks[cid]
			if len(members) < 2 {
				continue
			}

			// Group members by π-compatibility: states whose π predicates
			// agree on every symbol stay together.
			var groups [][]int
			var reps []P
			for _, s := range members {
				ps, ok := pi[s]
				if !ok {
					ps = alg.False()
				}
				placed := false
				for gi := range groups {
					eq, err := refinementEquivalent(alg, ps, reps[gi])
					if err != nil {
						return nil, err
					}
					if eq {
						groups[gi] = append(groups[gi], s)
						placed = true
						break
					}
				}
				if !placed {
					groups = append(groups, []int{s})
					reps = append(reps, ps)
				}
			}
			if len(groups) < 2 {
				continue
			}

			// Replace cid with the first group; allocate ids for the rest.
			ids := make([]int, len(groups))
			blocks[cid] = groups[0]
			ids[0] = cid
			for gi := 1; gi < len(groups); gi++ {
				ids[gi] = addBlock(groups[gi])
			}

			if inWork[cid] {
				// The split block was queued: queue every part.
				for _, id := range ids[1:] {
					push(id)
				}
			} else {
				// Queue all parts but the largest.
				largest := 0
				for gi := 1; gi < len(groups); gi++ {
					if len(groups[gi]) > len(groups[largest]) {
						largest = gi
					}
				}
				for gi, id := range ids {
					if gi != largest {
						push(id)
					}
				}
			}
		}
	}

	return total.quotient(alg, blocks, blockOf)
}

// refinementEquivalent reports whether two predicates are satisfied by the
// same symbols, using satisfiability of the two differences.
func refinementEquivalent[P, S any](alg ba.Algebra[P, S], p, q P) (bool, error) {
	sat, err := alg.Satisfiable(alg.And(p, alg.Not(q)))
	if err != nil || sat {
		return false, err
	}
	sat, err = alg.Satisfiable(alg.And(alg.Not(p), q))
	if err != nil || sat {
		return false, err
	}
	return true, nil
}

// quotient collapses each block to a single state. New ids follow the
// order of each block's smallest member, so the result is stable.
func (a *SFA[P, S]) quotient(alg ba.Algebra[P, S], blocks map[int][]int, blockOf map[int]int) (*SFA[P, S], error) {
	ids := make([]int, 0, len(blocks))
	for id, members := range blocks {
		if len(members) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return blocks[ids[i]][0] < blocks[ids[j]][0]
	})
	newID := make(map[int]int, len(ids))
	for i, id := range ids {
		newID[id] = i
	}

	var moves []Move[P]
	var finals []int
	for _, id := range ids {
		rep := blocks[id][0]
		for _, m := range a.inputFrom[rep] {
			moves = append(moves, Input(newID[id], newID[blockOf[m.to]], m.guard))
		}
		if a.IsFinal(rep) {
			finals = append(finals, newID[id])
		}
	}

	return New(alg, moves, newID[blockOf[a.initial]], finals, BuildConfig{Normalize: true})
}
