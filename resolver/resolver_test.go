package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/knightfall/knightfall/internal/testutil"
	"github.com/knightfall/knightfall/numeric"
	"github.com/knightfall/knightfall/registry"
	"github.com/knightfall/knightfall/state"
	"github.com/knightfall/knightfall/symbolic"
)

func newTestContext() (*Resolver, *registry.Context) {
	mgr := symbolic.NewManager()
	frame := mgr.GetStackFrame(&testutil.Decl{NameVal: "f"}, nil, nil)
	locCtx := mgr.GetLocationContext(frame, nil, 0)
	ctx := registry.NewContext(mgr, frame, locCtx, state.New(), nil)
	return New(mgr), ctx
}

func TestEval_IntLiteral_MemoizesScalarInt(t *testing.T) {
	t.Parallel()

	r, ctx := newTestContext()
	lit := testutil.NewIntLiteral(42, testutil.IntType)

	v, ctx2 := r.Eval(ctx, lit)
	require.NotNil(t, v)
	n, ok := AsZNum(v)
	require.True(t, ok)
	require.Equal(t, int64(42), n)

	again, _ := ctx2.State.GetStmtSexpr(lit, ctx2.Frame)
	require.Same(t, v, again, "a second lookup must return the memoized value")
}

func TestEval_IsMemoizedAcrossCalls(t *testing.T) {
	t.Parallel()

	r, ctx := newTestContext()
	lit := testutil.NewIntLiteral(7, testutil.IntType)

	v1, ctx1 := r.Eval(ctx, lit)
	v2, ctx2 := r.Eval(ctx1, lit)
	require.Same(t, v1, v2)
	require.Same(t, ctx1, ctx2, "re-evaluating an already-memoized stmt must short-circuit without allocating a new context")
}

func TestEval_DeclRefExpr_IsNeverItselfMemoized(t *testing.T) {
	t.Parallel()

	r, ctx := newTestContext()
	ref := testutil.NewDeclRef("x", testutil.IntType)

	v, ctx2 := r.Eval(ctx, ref)
	require.Nil(t, v)
	_, ok := ctx2.State.GetStmtSexpr(ref, ctx2.Frame)
	require.False(t, ok)
}

func TestEval_Call_ConjuresFreshResult(t *testing.T) {
	t.Parallel()

	r, ctx := newTestContext()
	call := testutil.NewCall("foo", testutil.IntType)

	v, ctx2 := r.Eval(ctx, call)
	require.NotNil(t, v)
	_, ok := AsZVariable(v)
	require.True(t, ok, "a conjured call result must be liftable to a ZVariable")

	again, _ := ctx2.State.GetStmtSexpr(call, ctx2.Frame)
	require.Same(t, v, again)
}

func TestEvalOrConjure_FallsBackWhenUnresolvable(t *testing.T) {
	t.Parallel()

	r, ctx := newTestContext()
	ref := testutil.NewDeclRef("x", testutil.IntType) // Eval returns nil for a bare DeclRefExpr

	v, ctx2 := r.EvalOrConjure(ctx, ref, "tag")
	require.NotNil(t, v)
	again, ok := ctx2.State.GetStmtSexpr(ref, ctx2.Frame)
	require.True(t, ok)
	require.Same(t, v, again)
}

func TestEvalDeclStmt_FoldsEqualityConstraint(t *testing.T) {
	t.Parallel()

	r, ctx := newTestContext()
	initLit := testutil.NewIntLiteral(5, testutil.IntType)
	varRef := testutil.NewDeclRef("x", testutil.IntType)
	decl := testutil.NewDeclStmt(varRef, initLit, true)

	v, ctx2 := r.Eval(ctx, decl)
	require.NotNil(t, v)
	n, ok := AsZNum(v)
	require.True(t, ok)
	require.Equal(t, int64(5), n)

	region := r.mgr.GetRegion(symbolic.RegionStack, nil, "x", testutil.IntType)
	def, ok := ctx2.State.GetRegionDef(region, ctx2.Frame)
	require.True(t, ok)

	x, ok := AsZVariable(def.Value)
	require.True(t, ok)
	require.Equal(t, numeric.Single(5), ctx2.State.NumDomain().Interval(x), "the assigned region's fresh symbol must be constrained to the initializer's value")
}

func TestAsZVariable_AndAsZNum(t *testing.T) {
	t.Parallel()

	mgr := symbolic.NewManager()
	scalar := mgr.GetScalarInt(3, testutil.IntType)
	n, ok := AsZNum(scalar)
	require.True(t, ok)
	require.Equal(t, int64(3), n)
	_, ok = AsZVariable(scalar)
	require.False(t, ok, "a plain scalar constant is never a ZVariable")

	conj := mgr.GetSymbolConjured(testutil.NewIntLiteral(1, testutil.IntType), testutil.IntType, nil, "tag")
	_, ok = AsZVariable(conj)
	require.True(t, ok)
	_, ok = AsZNum(conj)
	require.False(t, ok)
}
