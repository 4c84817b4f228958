package sst

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coregx/symbolic/intervals"
)

type charToken = Token[intervals.CharFunc, rune]
type charSimple = SimpleUpdate[intervals.CharFunc, rune]
type charFunctional = FunctionalUpdate[intervals.CharFunc, rune]

func mustRegs(t *testing.T, names ...string) Registers {
	t.Helper()
	regs, err := NewRegisters(names)
	require.NoError(t, err)
	return regs
}

func cst(r rune) charToken   { return Const[intervals.CharFunc, rune](r) }
func ref(n string) charToken { return Var[intervals.CharFunc, rune](n) }
func fn(f intervals.CharFunc) charToken {
	return Func[intervals.CharFunc, rune](f)
}

func TestRegistersBinding(t *testing.T) {
	regs := mustRegs(t, "x0", "x1")
	require.Equal(t, 2, regs.Len())
	require.Equal(t, "x0", regs.Name(0))

	i, ok := regs.Index("x1")
	require.True(t, ok)
	require.Equal(t, 1, i)

	_, ok = regs.Index("nope")
	require.False(t, ok)

	_, err := NewRegisters([]string{"x0", "x0"})
	require.ErrorIs(t, err, ErrMalformed)
}

func TestIdentityIsCompositionIdentity(t *testing.T) {
	regs := mustRegs(t, "x0", "x1")
	id := Identity[intervals.CharFunc, rune](regs)

	u := charSimple{
		{cst('a'), ref("x1")},
		{ref("x0"), cst('b')},
	}

	require.Equal(t, u, ComposeSimple(regs, id, u), "identity is a left identity")
	require.Equal(t, u, ComposeSimple(regs, u, id), "identity is a right identity")
}

func TestComposeSimpleSubstitutes(t *testing.T) {
	regs := mustRegs(t, "x0", "x1")

	first := charSimple{
		{ref("x0"), cst('a')}, // x0 := x0 a
		{},                    // x1 := ε
	}
	next := charSimple{
		{ref("x0"), ref("x1"), cst('z')}, // x0 := x0 x1 z
		{ref("x0")},                      // x1 := x0
	}

	got := ComposeSimple(regs, first, next)
	require.Equal(t, charSimple{
		{ref("x0"), cst('a'), cst('z')},
		{ref("x0"), cst('a')},
	}, got)
}

func TestComposeFunctionalPreservesFunctions(t *testing.T) {
	regs := mustRegs(t, "x0")

	first := charSimple{{ref("x0"), cst('!')}}
	next := charFunctional{{ref("x0"), fn(intervals.Identity())}}

	got := ComposeFunctional(regs, first, next)
	require.Equal(t, charFunctional{
		{ref("x0"), cst('!'), fn(intervals.Identity())},
	}, got)
}

func TestRenameAndLift(t *testing.T) {
	u := charSimple{{ref("a"), cst('c')}}

	renamed := u.RenameVars(map[string]string{"a": "x0"})
	require.Equal(t, charSimple{{ref("x0"), cst('c')}}, renamed)

	lifted := renamed.LiftToNVars(3)
	require.Equal(t, 3, lifted.Arity())
	require.Empty(t, lifted[1])
	require.Empty(t, lifted[2])
}

func TestCombineUpdates(t *testing.T) {
	renA := map[string]string{"x0": "x0"}
	renB := map[string]string{"x0": "y0"}

	uA := charFunctional{{fn(intervals.Identity())}}
	uB := charFunctional{{ref("x0"), cst('!')}}

	got := CombineUpdates(renA, renB, uA, uB)
	require.Equal(t, charFunctional{
		{fn(intervals.Identity())},
		{ref("y0"), cst('!')},
	}, got)

	out := CombineOutputUpdates(renA, renB,
		charSimple{{ref("x0")}}, charSimple{{ref("x0")}}, 2)
	require.Equal(t, charSimple{
		{ref("x0"), ref("y0")},
		nil,
	}, out)
}

func TestApplySimultaneous(t *testing.T) {
	alg := intervals.NewAlgebra()
	regs := mustRegs(t, "x0", "x1")

	// Swap must read the pre-update values on both sides.
	swap := charFunctional{
		{ref("x1")},
		{ref("x0")},
	}
	asg := Assignment[rune]{[]rune("ab"), []rune("cd")}

	got, err := swap.ApplyTo(alg, regs, asg, 'z')
	require.NoError(t, err)
	require.Equal(t, Assignment[rune]{[]rune("cd"), []rune("ab")}, got)
}

func TestApplyFunctionTokens(t *testing.T) {
	alg := intervals.NewAlgebra()
	regs := mustRegs(t, "x0")

	u := charFunctional{
		{ref("x0"), fn(intervals.Identity()), fn(intervals.Offset(-32))},
	}
	asg := Assignment[rune]{[]rune("q")}

	got, err := u.ApplyTo(alg, regs, asg, 'a')
	require.NoError(t, err)
	require.Equal(t, []rune("qaA"), got[0])
}

func TestSimpleApplyRejectsFunctionTokens(t *testing.T) {
	regs := mustRegs(t, "x0")
	u := charSimple{{fn(intervals.Identity())}}

	_, err := u.ApplyTo(regs, Assignment[rune]{nil})
	require.ErrorIs(t, err, ErrMalformed)
}
