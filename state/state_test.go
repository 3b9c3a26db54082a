package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/knightfall/knightfall/internal/testutil"
	"github.com/knightfall/knightfall/numeric"
	"github.com/knightfall/knightfall/symbolic"
)

func TestNew_IsTop(t *testing.T) {
	t.Parallel()

	s := New()
	require.True(t, s.IsTop())
	require.False(t, s.IsBottom())
}

func TestBottom_IsBottom(t *testing.T) {
	t.Parallel()

	b := Bottom()
	require.True(t, b.IsBottom())
	require.False(t, b.IsTop())
}

func TestSetStmtSexpr_DoesNotMutateReceiver(t *testing.T) {
	t.Parallel()

	s := New()
	mgr := symbolic.NewManager()
	stmt := testutil.NewIntLiteral(1, testutil.IntType)
	val := mgr.GetScalarInt(1, testutil.IntType)

	updated := s.SetStmtSexpr(stmt, nil, val)

	_, okOnOriginal := s.GetStmtSexpr(stmt, nil)
	require.False(t, okOnOriginal, "State.Set* must not mutate the receiver")

	got, ok := updated.GetStmtSexpr(stmt, nil)
	require.True(t, ok)
	require.Same(t, val, got)
}

func TestSetStmtSexpr_OnBottomIsNoop(t *testing.T) {
	t.Parallel()

	b := Bottom()
	mgr := symbolic.NewManager()
	stmt := testutil.NewIntLiteral(1, testutil.IntType)
	val := mgr.GetScalarInt(1, testutil.IntType)

	require.True(t, b.SetStmtSexpr(stmt, nil, val).IsBottom())
}

func TestGetStmtSexprOrConjured_ConjuresOnceThenMemoizes(t *testing.T) {
	t.Parallel()

	s := New()
	mgr := symbolic.NewManager()
	frame := mgr.GetStackFrame(&testutil.Decl{NameVal: "f"}, nil, nil)
	locCtx := mgr.GetLocationContext(frame, nil, 0)
	expr := testutil.NewIntLiteral(9, testutil.IntType)

	v1, s1 := s.GetStmtSexprOrConjured(mgr, expr, locCtx, testutil.IntType, "tag")
	v2, s2 := s1.GetStmtSexprOrConjured(mgr, expr, locCtx, testutil.IntType, "tag")

	require.Same(t, v1, v2, "a second lookup must return the already-memoized symbol")
	require.Same(t, s1, s2, "a second lookup with an already-present value must not clone the state")
}

func TestSetRegionDef_IncompatibleTypePanics(t *testing.T) {
	t.Parallel()

	s := New()
	mgr := symbolic.NewManager()
	region := mgr.GetRegion(symbolic.RegionStack, nil, "x", testutil.IntType)
	val := mgr.GetScalarInt(1, testutil.BoolType)

	require.Panics(t, func() {
		s.SetRegionDef(region, nil, RegionDef{Value: val})
	})
}

func TestAddZLinearConstraint_InfeasibleBecomesBottom(t *testing.T) {
	t.Parallel()

	s := New()
	x := numeric.ZVariable(1)
	s = s.WithNumDomain(s.NumDomain().WithInterval(x, numeric.Interval{Lo: 10, Hi: 20}))

	c := numeric.NewZLinearConstraint(numeric.NewZVarExpr(x), numeric.NewZLinearExpr(5), numeric.OpLE)
	require.True(t, s.AddZLinearConstraint(c).IsBottom())
}
