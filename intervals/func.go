package intervals

import "fmt"

// funcKind identifies the shape of a CharFunc.
type funcKind uint8

const (
	funcIdentity funcKind = iota
	funcConst
	funcOffset
)

// CharFunc is a deferred rune function for transducer function tokens.
// It is evaluated against the input rune being consumed by a move.
type CharFunc struct {
	kind  funcKind
	c     rune
	delta int32
}

// Identity returns the function x ↦ x: the move copies its input rune.
func Identity() CharFunc {
	return CharFunc{kind: funcIdentity}
}

// Const returns the function x ↦ c regardless of the input rune.
func Const(c rune) CharFunc {
	return CharFunc{kind: funcConst, c: c}
}

// Offset returns the function x ↦ x+n, e.g. Offset(1) maps 'a' to 'b'.
func Offset(n int32) CharFunc {
	return CharFunc{kind: funcOffset, delta: n}
}

// Eval evaluates the function at the given rune.
func (f CharFunc) Eval(sym rune) rune {
	switch f.kind {
	case funcConst:
		return f.c
	case funcOffset:
		return sym + rune(f.delta)
	default:
		return sym
	}
}

// String returns a diagnostic rendering of the function.
func (f CharFunc) String() string {
	switch f.kind {
	case funcConst:
		return fmt.Sprintf("const(%s)", renderRune(f.c))
	case funcOffset:
		return fmt.Sprintf("x%+d", f.delta)
	default:
		return "x"
	}
}
