package numeric

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZLinearExpr_AddSub(t *testing.T) {
	t.Parallel()

	x, y := ZVariable(1), ZVariable(2)
	e := NewZVarExpr(x).Add(NewZVarExpr(y)).Add(NewZLinearExpr(3))
	require.Equal(t, int64(1), e.Terms[x])
	require.Equal(t, int64(1), e.Terms[y])
	require.Equal(t, int64(3), e.Constant)

	diff := e.Sub(NewZVarExpr(y))
	require.NotContains(t, diff.Terms, y, "subtracting a term to zero must remove it from Terms")
	require.Equal(t, int64(1), diff.Terms[x])
}

func TestZLinearExpr_ScaleConst(t *testing.T) {
	t.Parallel()

	x := ZVariable(1)
	e := NewZVarExpr(x).Add(NewZLinearExpr(2)).ScaleConst(3)
	require.Equal(t, int64(3), e.Terms[x])
	require.Equal(t, int64(6), e.Constant)
}

func TestZLinearExpr_AsSingleVariable(t *testing.T) {
	t.Parallel()

	x, y := ZVariable(1), ZVariable(2)

	v, ok := NewZVarExpr(x).AsSingleVariable()
	require.True(t, ok)
	require.Equal(t, x, v)

	_, ok = NewZLinearExpr(5).AsSingleVariable()
	require.False(t, ok, "a pure constant is not a single variable")

	_, ok = NewZVarExpr(x).Add(NewZVarExpr(y)).AsSingleVariable()
	require.False(t, ok, "two terms is not a single variable")

	_, ok = NewZVarExpr(x).ScaleConst(2).AsSingleVariable()
	require.False(t, ok, "coefficient != 1 is not a single variable")
}

func TestZConstraintOp_Negate(t *testing.T) {
	t.Parallel()

	cases := map[ZConstraintOp]ZConstraintOp{
		OpEQ: OpNE, OpNE: OpEQ, OpLT: OpGE, OpGE: OpLT, OpLE: OpGT, OpGT: OpLE,
	}
	for op, want := range cases {
		require.Equal(t, want, op.Negate())
		require.Equal(t, op, op.Negate().Negate(), "double negation must round-trip")
	}
}

func TestNewZLinearConstraint_NormalizesToExprOpZero(t *testing.T) {
	t.Parallel()

	x := ZVariable(1)
	// x <= 5  =>  (x - 5) <= 0
	c := NewZLinearConstraint(NewZVarExpr(x), NewZLinearExpr(5), OpLE)
	require.Equal(t, int64(1), c.Expr.Terms[x])
	require.Equal(t, int64(-5), c.Expr.Constant)
	require.Equal(t, OpLE, c.Op)
}

func TestZLinearConstraint_Negate(t *testing.T) {
	t.Parallel()

	x := ZVariable(1)
	c := NewZLinearConstraint(NewZVarExpr(x), NewZLinearExpr(5), OpLE)
	neg := c.Negate()
	require.Equal(t, OpGT, neg.Op)
	require.Equal(t, c.Expr, neg.Expr)
}
