package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/knightfall/knightfall/numeric"
)

func withInterval(x numeric.ZVariable, iv numeric.Interval) *State {
	return New().WithNumDomain(New().NumDomain().WithInterval(x, iv))
}

func TestState_Leq(t *testing.T) {
	t.Parallel()

	x := numeric.ZVariable(1)
	wide := withInterval(x, numeric.Interval{Lo: 0, Hi: 100})
	narrow := withInterval(x, numeric.Interval{Lo: 10, Hi: 20})

	require.True(t, narrow.Leq(wide))
	require.False(t, wide.Leq(narrow))
	require.True(t, Bottom().Leq(narrow))
	require.False(t, narrow.Leq(Bottom()))
}

func TestState_Join(t *testing.T) {
	t.Parallel()

	x := numeric.ZVariable(1)
	a := withInterval(x, numeric.Interval{Lo: 0, Hi: 5})
	b := withInterval(x, numeric.Interval{Lo: 3, Hi: 10})

	joined := a.Join(b, nil)
	require.Equal(t, numeric.Interval{Lo: 0, Hi: 10}, joined.NumDomain().Interval(x))

	require.Same(t, b, Bottom().Join(b, nil))
	require.Same(t, a, a.Join(Bottom(), nil))
}

func TestState_WidenJumpsToInfinityOnGrowth(t *testing.T) {
	t.Parallel()

	x := numeric.ZVariable(1)
	a := withInterval(x, numeric.Interval{Lo: 0, Hi: 5})
	b := withInterval(x, numeric.Interval{Lo: 0, Hi: 6})

	widened := a.Widen(b, nil)
	require.Equal(t, numeric.Top.Hi, widened.NumDomain().Interval(x).Hi)
}

func TestState_MeetInfeasibleBecomesBottom(t *testing.T) {
	t.Parallel()

	x := numeric.ZVariable(1)
	a := withInterval(x, numeric.Interval{Lo: 0, Hi: 5})
	b := withInterval(x, numeric.Interval{Lo: 100, Hi: 200})

	require.True(t, a.Meet(b).IsBottom())
}

func TestState_NarrowRefinesInfiniteBound(t *testing.T) {
	t.Parallel()

	x := numeric.ZVariable(1)
	wide := New() // numeric domain is Top: [-inf, +inf] for x
	precise := withInterval(x, numeric.Interval{Lo: 2, Hi: 7})

	narrowed := wide.Narrow(precise)
	require.Equal(t, numeric.Interval{Lo: 2, Hi: 7}, narrowed.NumDomain().Interval(x))
}

func TestState_NarrowWithBottomOtherIsBottom(t *testing.T) {
	t.Parallel()

	require.True(t, New().Narrow(Bottom()).IsBottom())
}

func TestState_Normalize_Idempotent(t *testing.T) {
	t.Parallel()

	x := numeric.ZVariable(1)
	s := withInterval(x, numeric.Interval{Lo: 0, Hi: 5})

	once := s.Normalize()
	twice := once.Normalize()
	require.Equal(t, once.NumDomain().Interval(x), twice.NumDomain().Interval(x))
}
