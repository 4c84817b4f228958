package sfa

import (
	"errors"
	"testing"
	"time"

	"github.com/coregx/symbolic/ba"
	"github.com/coregx/symbolic/intervals"
)

type charSFA = SFA[intervals.CharPred, rune]

var alg = intervals.NewAlgebra()

// accepts runs the automaton on a word, following epsilon closures.
// Test-only membership check; the library itself decides languages
// through the closure algorithms.
func accepts(a *charSFA, word string) bool {
	current := map[int]struct{}{}
	for _, q := range a.epsilonClosure(a.Initial()) {
		current[q] = struct{}{}
	}
	for _, r := range word {
		next := map[int]struct{}{}
		for q := range current {
			for _, m := range a.InputMovesFrom(q) {
				if !m.Guard().Contains(r) {
					continue
				}
				for _, c := range a.epsilonClosure(m.To()) {
					next[c] = struct{}{}
				}
			}
		}
		current = next
	}
	for q := range current {
		if a.IsFinal(q) {
			return true
		}
	}
	return false
}

func mustSFA(t *testing.T, moves []Move[intervals.CharPred], initial int, finals []int, cfg BuildConfig) *charSFA {
	t.Helper()
	a, err := New[intervals.CharPred, rune](alg, moves, initial, finals, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return a
}

// aThenBCStarNFA builds a(b|c)* with epsilon moves.
func aThenBCStarNFA(t *testing.T) *charSFA {
	t.Helper()
	moves := []Move[intervals.CharPred]{
		Input(0, 1, intervals.Char('a')),
		Epsilon[intervals.CharPred](1, 2),
		Input(2, 3, intervals.Char('b')),
		Input(2, 4, intervals.Char('c')),
		Epsilon[intervals.CharPred](3, 2),
		Epsilon[intervals.CharPred](4, 2),
	}
	return mustSFA(t, moves, 0, []int{2}, BuildConfig{TrimUnreachable: true})
}

// aThenBCStarDFA builds the deterministic version of a(b|c)*.
func aThenBCStarDFA(t *testing.T) *charSFA {
	t.Helper()
	moves := []Move[intervals.CharPred]{
		Input(0, 1, intervals.Char('a')),
		Input(1, 1, intervals.FromRange('b', 'c')),
	}
	return mustSFA(t, moves, 0, []int{1}, DefaultBuildConfig())
}

func TestNew_DropsUnsatGuardsAndSelfEpsilons(t *testing.T) {
	moves := []Move[intervals.CharPred]{
		Input(0, 1, intervals.Char('a')),
		Input(0, 1, intervals.Empty()),
		Epsilon[intervals.CharPred](0, 0),
	}
	a := mustSFA(t, moves, 0, []int{1}, BuildConfig{})

	if got := a.TransitionCount(); got != 1 {
		t.Errorf("expected 1 move after filtering, got %d", got)
	}
	if !a.EpsilonFree() {
		t.Error("self-epsilon should be dropped, leaving an epsilon-free automaton")
	}
}

func TestNew_NormalizeMergesParallelMoves(t *testing.T) {
	moves := []Move[intervals.CharPred]{
		Input(0, 1, intervals.FromRange('a', 'c')),
		Input(0, 1, intervals.FromRange('c', 'f')),
	}
	a := mustSFA(t, moves, 0, []int{1}, BuildConfig{Normalize: true})

	if got := a.TransitionCount(); got != 1 {
		t.Fatalf("expected parallel moves merged into 1, got %d", got)
	}
	guard := a.InputMovesFrom(0)[0].Guard()
	if !guard.Equal(intervals.FromRange('a', 'f')) {
		t.Errorf("merged guard = %v, want [a-f]", guard)
	}
}

func TestNew_TrimUnreachable(t *testing.T) {
	moves := []Move[intervals.CharPred]{
		Input(0, 1, intervals.Char('a')),
		Input(2, 3, intervals.Char('b')), // disconnected
		Input(0, 4, intervals.Char('c')), // dead end
	}
	a := mustSFA(t, moves, 0, []int{1}, BuildConfig{TrimUnreachable: true})

	if got := a.StateCount(); got != 2 {
		t.Errorf("expected 2 alive states, got %d", got)
	}

	// No surviving final state collapses to the canonical empty SFA.
	b := mustSFA(t, moves, 0, []int{3}, BuildConfig{TrimUnreachable: true})
	if !b.Empty() {
		t.Error("automaton without alive finals should be empty")
	}
	if got := b.StateCount(); got != 1 {
		t.Errorf("canonical empty SFA has 1 state, got %d", got)
	}
}

func TestFactories(t *testing.T) {
	tests := []struct {
		name   string
		sfa    *charSFA
		accept []string
		reject []string
	}{
		{"empty", NewEmpty[intervals.CharPred, rune](), nil, []string{"", "a"}},
		{"full", NewFull[intervals.CharPred, rune](alg), []string{"", "a", "xyz"}, nil},
		{"epsilon", NewEpsilon[intervals.CharPred, rune](), []string{""}, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, w := range tt.accept {
				if !accepts(tt.sfa, w) {
					t.Errorf("%s should accept %q", tt.name, w)
				}
			}
			for _, w := range tt.reject {
				if accepts(tt.sfa, w) {
					t.Errorf("%s should reject %q", tt.name, w)
				}
			}
		})
	}

	pred, err := NewPred[intervals.CharPred, rune](alg, intervals.Digits())
	if err != nil {
		t.Fatal(err)
	}
	if !accepts(pred, "7") || accepts(pred, "77") || accepts(pred, "") || accepts(pred, "x") {
		t.Error("NewPred should accept exactly single digits")
	}
}

func TestRemoveEpsilons(t *testing.T) {
	nfa := aThenBCStarNFA(t)
	free, err := nfa.RemoveEpsilons(alg)
	if err != nil {
		t.Fatal(err)
	}

	if !free.EpsilonFree() {
		t.Error("result must be epsilon-free")
	}
	for _, w := range []string{"a", "ab", "ac", "abcbc"} {
		if !accepts(free, w) {
			t.Errorf("should accept %q", w)
		}
	}
	for _, w := range []string{"", "b", "aa", "abd"} {
		if accepts(free, w) {
			t.Errorf("should reject %q", w)
		}
	}

	eq, err := free.Equivalent(alg, nfa, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Error("epsilon elimination must preserve the language")
	}
}

func TestDeterminize_Minterms(t *testing.T) {
	// Two overlapping guards out of the initial state.
	moves := []Move[intervals.CharPred]{
		Input(0, 1, intervals.FromRange('a', 'm')),
		Input(0, 2, intervals.FromRange('k', 'z')),
	}
	a := mustSFA(t, moves, 0, []int{1, 2}, BuildConfig{TrimUnreachable: true})
	if a.Deterministic() {
		t.Fatal("input should be nondeterministic")
	}

	det, err := a.Determinize(alg, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if !det.Deterministic() {
		t.Error("result must be deterministic")
	}

	eq, err := det.Equivalent(alg, a, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Error("determinization must preserve the language")
	}

	min, err := a.Minimize(alg, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if got := min.StateCount(); got != 3 {
		t.Errorf("minimized automaton should have 3 states, got %d", got)
	}
	want, err := NewPred[intervals.CharPred, rune](alg, intervals.FromRange('a', 'z'))
	if err != nil {
		t.Fatal(err)
	}
	eq, err = min.Equivalent(alg, want, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Error("language must be exactly the single symbols in [a-z]")
	}
}

func TestMkTotal(t *testing.T) {
	a := aThenBCStarDFA(t)
	total, err := a.MkTotal(alg, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if !total.Total() {
		t.Error("result must be total")
	}
	eq, err := total.Equivalent(alg, a, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Error("totalization must preserve the language")
	}
}

func TestComplementLaws(t *testing.T) {
	a := aThenBCStarNFA(t)

	na, err := a.Complement(alg, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if accepts(na, "ab") || !accepts(na, "b") || !accepts(na, "") {
		t.Error("complement accepts exactly the rejected words")
	}

	nna, err := na.Complement(alg, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	eq, err := nna.Equivalent(alg, a, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Error("double complement must be the original language")
	}

	meet, err := a.Intersect(alg, na, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if !meet.Empty() {
		t.Error("A ∩ ¬A must be empty")
	}

	join, err := a.Union(alg, na)
	if err != nil {
		t.Fatal(err)
	}
	full := NewFull[intervals.CharPred, rune](alg)
	eq, err = join.Equivalent(alg, full, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Error("A ∪ ¬A must accept every word")
	}
}

func TestUnionIntersectLaws(t *testing.T) {
	mk := func(p intervals.CharPred) *charSFA {
		a, err := NewPred[intervals.CharPred, rune](alg, p)
		if err != nil {
			t.Fatal(err)
		}
		return a
	}
	a := mk(intervals.FromRange('a', 'f'))
	b := mk(intervals.FromRange('d', 'k'))
	c := mk(intervals.FromRange('j', 'z'))

	assertEquivalent := func(name string, x, y *charSFA) {
		t.Helper()
		eq, err := x.Equivalent(alg, y, ba.Forever())
		if err != nil {
			t.Fatal(err)
		}
		if !eq {
			t.Errorf("%s: expected equivalent automata", name)
		}
	}

	ab, err := a.Union(alg, b)
	if err != nil {
		t.Fatal(err)
	}
	ba2, err := b.Union(alg, a)
	if err != nil {
		t.Fatal(err)
	}
	assertEquivalent("union commutes", ab, ba2)

	abc, err := ab.Union(alg, c)
	if err != nil {
		t.Fatal(err)
	}
	bc, err := b.Union(alg, c)
	if err != nil {
		t.Fatal(err)
	}
	abc2, err := a.Union(alg, bc)
	if err != nil {
		t.Fatal(err)
	}
	assertEquivalent("union associates", abc, abc2)

	iab, err := a.Intersect(alg, b, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	iba, err := b.Intersect(alg, a, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	assertEquivalent("intersection commutes", iab, iba)

	if !accepts(iab, "d") || !accepts(iab, "f") || accepts(iab, "g") || accepts(iab, "c") {
		t.Error("a ∩ b should accept exactly [d-f]")
	}
}

func TestDifference(t *testing.T) {
	a := aThenBCStarNFA(t)

	diff, err := a.Difference(alg, a, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if !diff.Empty() {
		t.Error("A \\ A must be empty")
	}

	b := aThenBCStarDFA(t)
	onlyA, err := a.Difference(alg, b, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if !onlyA.Empty() {
		t.Error("difference of equivalent automata must be empty")
	}
}

func TestBoundaryCases(t *testing.T) {
	empty := NewEmpty[intervals.CharPred, rune]()
	full := NewFull[intervals.CharPred, rune](alg)
	a := aThenBCStarDFA(t)

	meet, err := empty.Intersect(alg, a, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if !meet.Empty() {
		t.Error("∅ ∩ A must be empty")
	}

	diff, err := empty.Difference(alg, a, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if !diff.Empty() {
		t.Error("∅ \\ A must be empty")
	}

	withFull, err := a.Intersect(alg, full, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	eq, err := withFull.Equivalent(alg, a, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Error("A ∩ Σ* must be A")
	}
}

func TestConcatStar(t *testing.T) {
	mk := func(r rune) *charSFA {
		a, err := NewPred[intervals.CharPred, rune](alg, intervals.Char(r))
		if err != nil {
			t.Fatal(err)
		}
		return a
	}

	ab, err := mk('a').Concat(alg, mk('b'))
	if err != nil {
		t.Fatal(err)
	}
	if !accepts(ab, "ab") {
		t.Error("concat should accept \"ab\"")
	}
	for _, w := range []string{"", "a", "b", "ba", "abb"} {
		if accepts(ab, w) {
			t.Errorf("concat should reject %q", w)
		}
	}

	astar, err := mk('a').Star(alg)
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range []string{"", "a", "aaa"} {
		if !accepts(astar, w) {
			t.Errorf("star should accept %q", w)
		}
	}
	if accepts(astar, "ab") {
		t.Error("star should reject \"ab\"")
	}
}

func TestHopcroftKarpEquivalent(t *testing.T) {
	nfa := aThenBCStarNFA(t)
	dfa := aThenBCStarDFA(t)

	eq, cex, err := nfa.HopcroftKarpEquivalent(alg, dfa, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Errorf("expected equivalent, got counterexample %q", string(cex))
	}
	if cex != nil {
		t.Errorf("equivalent automata must yield a nil counterexample, got %q", string(cex))
	}

	alsoEq, err := nfa.Equivalent(alg, dfa, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if !alsoEq {
		t.Error("difference-based equivalence must agree")
	}
}

func TestHopcroftKarpCounterexample(t *testing.T) {
	aStar, err := NewPred[intervals.CharPred, rune](alg, intervals.Char('a'))
	if err != nil {
		t.Fatal(err)
	}
	aStar, err = aStar.Star(alg)
	if err != nil {
		t.Fatal(err)
	}
	aOnce, err := NewPred[intervals.CharPred, rune](alg, intervals.Char('a'))
	if err != nil {
		t.Fatal(err)
	}

	eq, cex, err := aStar.HopcroftKarpEquivalent(alg, aOnce, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if eq {
		t.Fatal("a* and a are not equivalent")
	}
	// The counterexample must distinguish the two languages.
	if accepts(aStar, string(cex)) == accepts(aOnce, string(cex)) {
		t.Errorf("counterexample %q does not distinguish the automata", string(cex))
	}

	// Both deciders must agree on inequivalence.
	alsoEq, err := aStar.Equivalent(alg, aOnce, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if alsoEq {
		t.Error("difference-based equivalence must also report inequivalent")
	}
}

func TestMinimizeLaws(t *testing.T) {
	a := aThenBCStarNFA(t)

	min, err := a.Minimize(alg, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	eq, err := min.Equivalent(alg, a, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Error("minimization must preserve the language")
	}

	total, err := a.MkTotal(alg, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if min.StateCount() > total.StateCount() {
		t.Errorf("minimized automaton has %d states, more than the total DFA's %d",
			min.StateCount(), total.StateCount())
	}
	// a(b|c)* needs: initial, accepting loop, sink.
	if got := min.StateCount(); got != 3 {
		t.Errorf("minimal total DFA for a(b|c)* has 3 states, got %d", got)
	}
}

func TestAmbiguousInput(t *testing.T) {
	// Two parallel moves from 0 to 2 over overlapping guards.
	moves := []Move[intervals.CharPred]{
		Input(0, 2, intervals.FromRange('a', 'm')),
		Input(0, 2, intervals.FromRange('k', 'z')),
	}
	a := mustSFA(t, moves, 0, []int{2}, BuildConfig{TrimUnreachable: true})

	word, ambiguous, err := a.AmbiguousInput(alg, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if !ambiguous {
		t.Fatal("parallel overlapping moves must be ambiguous")
	}
	if len(word) != 1 {
		t.Fatalf("expected a single-symbol witness, got %q", string(word))
	}
	if r := word[0]; r < 'k' || r > 'm' {
		t.Errorf("witness %q must satisfy both guards", r)
	}

	// Two disjoint paths through distinct intermediate states.
	moves = []Move[intervals.CharPred]{
		Input(0, 1, intervals.Char('a')),
		Input(0, 2, intervals.Char('a')),
		Input(1, 3, intervals.Char('b')),
		Input(2, 3, intervals.Char('b')),
	}
	b := mustSFA(t, moves, 0, []int{3}, BuildConfig{TrimUnreachable: true})
	word, ambiguous, err = b.AmbiguousInput(alg, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if !ambiguous || string(word) != "ab" {
		t.Errorf("expected ambiguous witness \"ab\", got %q (%v)", string(word), ambiguous)
	}

	// A deterministic automaton is never ambiguous.
	_, ambiguous, err = aThenBCStarDFA(t).AmbiguousInput(alg, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if ambiguous {
		t.Error("deterministic automaton reported ambiguous")
	}
}

func TestDeterminizeTimeout(t *testing.T) {
	moves := []Move[intervals.CharPred]{
		Input(0, 1, intervals.FromRange('a', 'm')),
		Input(0, 2, intervals.FromRange('k', 'z')),
	}
	a := mustSFA(t, moves, 0, []int{1, 2}, BuildConfig{TrimUnreachable: true})

	_, err := a.Determinize(alg, ba.NewBudget(-time.Second))
	if !errors.Is(err, ba.ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}

	_, err = a.Minimize(alg, ba.NewBudget(-time.Second))
	if !errors.Is(err, ba.ErrTimeout) {
		t.Errorf("expected ErrTimeout from minimize, got %v", err)
	}
}

func TestClone(t *testing.T) {
	a := aThenBCStarNFA(t)
	c := a.Clone()

	if c == a {
		t.Fatal("clone must be a distinct value")
	}
	if c.StateCount() != a.StateCount() || c.TransitionCount() != a.TransitionCount() {
		t.Error("clone must preserve shape")
	}
	eq, err := c.Equivalent(alg, a, ba.Forever())
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Error("clone must preserve the language")
	}
}
