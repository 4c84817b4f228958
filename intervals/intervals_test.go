package intervals

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coregx/symbolic/ba"
)

func TestCharPredCanonical(t *testing.T) {
	p := FromRanges(Range{'a', 'm'}, Range{'k', 'z'})
	require.Equal(t, []Range{{'a', 'z'}}, p.Ranges(), "overlapping ranges must merge")

	q := FromRanges(Range{'a', 'c'}, Range{'d', 'f'})
	require.Equal(t, []Range{{'a', 'f'}}, q.Ranges(), "adjacent ranges must merge")

	require.True(t, FromRange('z', 'a').IsEmpty(), "inverted range is empty")
}

func TestCharPredContains(t *testing.T) {
	p := FromRanges(Range{'a', 'f'}, Range{'x', 'z'})

	require.True(t, p.Contains('a'))
	require.True(t, p.Contains('f'))
	require.True(t, p.Contains('y'))
	require.False(t, p.Contains('g'))
	require.False(t, p.Contains('A'))
}

func TestCharPredBooleanOps(t *testing.T) {
	a := FromRange('a', 'm')
	b := FromRange('k', 'z')

	require.Equal(t, []Range{{'k', 'm'}}, a.Intersect(b).Ranges())
	require.Equal(t, []Range{{'a', 'z'}}, a.Union(b).Ranges())

	na := a.Negate()
	require.False(t, na.Contains('a'))
	require.False(t, na.Contains('m'))
	require.True(t, na.Contains('n'))
	require.True(t, na.Contains(0))
	require.True(t, na.Contains(MaxRune))

	require.True(t, a.Negate().Negate().Equal(a), "double negation is identity")
	require.True(t, a.Intersect(a.Negate()).IsEmpty())
	require.True(t, a.Union(a.Negate()).Equal(Any()))
}

func TestAlgebraWitness(t *testing.T) {
	alg := NewAlgebra()

	w, err := alg.Witness(FromRange('k', 'z'))
	require.NoError(t, err)
	require.Equal(t, 'k', w)

	_, err = alg.Witness(Empty())
	require.ErrorIs(t, err, ErrNoWitness)
}

func TestAlgebraModels(t *testing.T) {
	alg := NewAlgebra()

	ok, err := alg.Models(Digits(), '7')
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = alg.Models(Digits(), 'x')
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMintermsPartition(t *testing.T) {
	alg := NewAlgebra()
	preds := []CharPred{FromRange('a', 'm'), FromRange('k', 'z')}

	minterms, err := alg.Minterms(preds, ba.Forever())
	require.NoError(t, err)

	// [a-j] entails only the first, [k-m] both, [n-z] only the second,
	// and the complement of [a-z] neither.
	require.Len(t, minterms, 4)

	// Every minterm is satisfiable and the tags match actual entailment.
	for _, mt := range minterms {
		require.False(t, mt.Predicate.IsEmpty())
		for i, p := range preds {
			entails := mt.Predicate.Intersect(p.Negate()).IsEmpty()
			require.Equal(t, entails, mt.Tags.Test(uint(i)),
				"tag %d of minterm %v", i, mt.Predicate)
		}
	}

	// Pairwise disjoint and jointly exhaustive.
	union := Empty()
	for i, mt := range minterms {
		for j := i + 1; j < len(minterms); j++ {
			require.True(t, mt.Predicate.Intersect(minterms[j].Predicate).IsEmpty())
		}
		union = union.Union(mt.Predicate)
	}
	require.True(t, union.Equal(Any()), "minterms must partition the alphabet")
}

func TestMintermsNoPredicates(t *testing.T) {
	alg := NewAlgebra()

	minterms, err := alg.Minterms(nil, ba.Forever())
	require.NoError(t, err)
	require.Len(t, minterms, 1)
	require.True(t, minterms[0].Predicate.Equal(Any()))
}

func TestCharFuncEval(t *testing.T) {
	require.Equal(t, 'q', Identity().Eval('q'))
	require.Equal(t, '!', Const('!').Eval('q'))
	require.Equal(t, 'b', Offset(1).Eval('a'))
	require.Equal(t, 'A', Offset(-32).Eval('a'))
}
