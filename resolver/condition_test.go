package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/knightfall/knightfall/frontend"
	"github.com/knightfall/knightfall/internal/testutil"
	"github.com/knightfall/knightfall/numeric"
)

func TestEvalConditional_JoinsBothArmsIntervalHull(t *testing.T) {
	t.Parallel()

	r, ctx := newTestContext()
	trueLit := testutil.NewIntLiteral(3, testutil.IntType)
	falseLit := testutil.NewIntLiteral(9, testutil.IntType)
	cond := testutil.NewConditional(testutil.NewIntLiteral(1, testutil.BoolType), trueLit, falseLit, testutil.IntType)

	v, ctx2 := r.Eval(ctx, cond)
	require.NotNil(t, v)
	x, ok := AsZVariable(v)
	require.True(t, ok)
	require.Equal(t, numeric.Interval{Lo: 3, Hi: 9}, ctx2.State.NumDomain().Interval(x))
}

func TestEvalConditional_NonIntegralTypeIsUnresolvable(t *testing.T) {
	t.Parallel()

	r, ctx := newTestContext()
	cond := testutil.NewConditional(testutil.NewIntLiteral(1, testutil.BoolType), testutil.NewIntLiteral(1, testutil.PtrType), testutil.NewIntLiteral(0, testutil.PtrType), testutil.PtrType)

	v, ctx2 := r.Eval(ctx, cond)
	require.Nil(t, v)
	require.Same(t, ctx, ctx2)
}

func TestFilterCondition_ZVariableVsZero_NarrowsToNonZeroOnTrueBranch(t *testing.T) {
	t.Parallel()

	r, ctx := newTestContext()
	call := testutil.NewCall("foo", testutil.IntType)
	v, ctx2 := r.Eval(ctx, call)
	x, ok := AsZVariable(v)
	require.True(t, ok)

	ctx3 := r.FilterCondition(ctx2, call, true)

	want := numeric.NewZLinearConstraint(numeric.NewZVarExpr(x), numeric.NewZLinearExpr(0), numeric.OpNE)
	onlyWant := numeric.TopDomain().AddConstraint(want)
	require.True(t, ctx3.State.NumDomain().Leq(onlyWant))

	boolVal, _ := ctx3.State.GetStmtSexpr(call, ctx3.Frame)
	n, ok := AsZNum(boolVal)
	require.True(t, ok)
	require.Equal(t, int64(1), n)
}

func TestFilterCondition_ConstantContradictsBranch_BecomesBottom(t *testing.T) {
	t.Parallel()

	r, ctx := newTestContext()
	zero := testutil.NewIntLiteral(0, testutil.IntType)

	ctx2 := r.FilterCondition(ctx, zero, true) // asserting zero is truthy is a contradiction
	require.True(t, ctx2.State.IsBottom())
}

func TestFilterCondition_ConstantConsistentWithBranch_StaysFeasible(t *testing.T) {
	t.Parallel()

	r, ctx := newTestContext()
	zero := testutil.NewIntLiteral(0, testutil.IntType)

	ctx2 := r.FilterCondition(ctx, zero, false) // asserting zero is falsy is consistent
	require.False(t, ctx2.State.IsBottom())
}

func TestFilterCondition_Comparison_FoldsLinearConstraintAgainstConstant(t *testing.T) {
	t.Parallel()

	r, ctx := newTestContext()
	call := testutil.NewCall("foo", testutil.IntType)
	lit := testutil.NewIntLiteral(5, testutil.IntType)
	bin := testutil.NewBinary(frontend.BinaryLT, call, lit, testutil.BoolType)

	v, ctx2 := r.Eval(ctx, call)
	x, ok := AsZVariable(v)
	require.True(t, ok)

	ctx3 := r.FilterCondition(ctx2, bin, true)

	want := numeric.NewZLinearConstraint(numeric.NewZVarExpr(x), numeric.NewZLinearExpr(5), numeric.OpLT)
	onlyWant := numeric.TopDomain().AddConstraint(want)
	require.True(t, ctx3.State.NumDomain().Leq(onlyWant))
}

func TestFilterCondition_Comparison_FalseBranchNegatesOperator(t *testing.T) {
	t.Parallel()

	r, ctx := newTestContext()
	call := testutil.NewCall("foo", testutil.IntType)
	lit := testutil.NewIntLiteral(5, testutil.IntType)
	bin := testutil.NewBinary(frontend.BinaryLT, call, lit, testutil.BoolType)

	v, ctx2 := r.Eval(ctx, call)
	x, ok := AsZVariable(v)
	require.True(t, ok)

	ctx3 := r.FilterCondition(ctx2, bin, false)

	want := numeric.NewZLinearConstraint(numeric.NewZVarExpr(x), numeric.NewZLinearExpr(5), numeric.OpGE)
	onlyWant := numeric.TopDomain().AddConstraint(want)
	require.True(t, ctx3.State.NumDomain().Leq(onlyWant))
}
