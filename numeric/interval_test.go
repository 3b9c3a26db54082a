package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInterval_IsBottomIsTop(t *testing.T) {
	t.Parallel()

	require.True(t, Bottom.IsBottom())
	require.False(t, Top.IsBottom())
	require.True(t, Top.IsTop())
	require.False(t, Single(3).IsTop())
}

func TestInterval_Leq(t *testing.T) {
	t.Parallel()

	require.True(t, Bottom.Leq(Single(3)))
	require.False(t, Single(3).Leq(Bottom))
	require.True(t, Interval{Lo: 2, Hi: 4}.Leq(Interval{Lo: 0, Hi: 10}))
	require.False(t, Interval{Lo: 0, Hi: 10}.Leq(Interval{Lo: 2, Hi: 4}))
}

func TestInterval_JoinMeet(t *testing.T) {
	t.Parallel()

	a := Interval{Lo: 0, Hi: 5}
	b := Interval{Lo: 3, Hi: 10}
	require.Equal(t, Interval{Lo: 0, Hi: 10}, a.Join(b))
	require.Equal(t, Interval{Lo: 3, Hi: 5}, a.Meet(b))

	disjoint := Interval{Lo: 100, Hi: 200}
	require.True(t, a.Meet(disjoint).IsBottom())

	require.Equal(t, a, a.Join(Bottom))
	require.Equal(t, a, Bottom.Join(a))
}

func TestInterval_Widen(t *testing.T) {
	t.Parallel()

	a := Interval{Lo: 0, Hi: 5}
	grown := Interval{Lo: 0, Hi: 6}
	widened := a.Widen(grown)
	require.Equal(t, int64(0), widened.Lo)
	require.Equal(t, int64(math.MaxInt64), widened.Hi, "an increasing Hi must jump straight to +inf")

	require.Equal(t, grown, Bottom.Widen(grown))
	require.Equal(t, a, a.Widen(Bottom))
}

func TestInterval_WidenWithThreshold(t *testing.T) {
	t.Parallel()

	a := Interval{Lo: 0, Hi: 5}
	grown := Interval{Lo: 0, Hi: 8}
	widened := a.WidenWithThreshold(grown, 10)
	require.Equal(t, int64(10), widened.Hi, "threshold 10 still soundly contains next.Hi=8")

	tooSmallThreshold := a.WidenWithThreshold(grown, 6)
	require.Equal(t, int64(math.MaxInt64), tooSmallThreshold.Hi, "threshold 6 does not contain next.Hi=8, must fall back to +inf")
}

func TestInterval_NarrowAndNarrowWithThreshold(t *testing.T) {
	t.Parallel()

	wide := Interval{Lo: math.MinInt64, Hi: math.MaxInt64}
	precise := Interval{Lo: 2, Hi: 7}
	require.Equal(t, precise, wide.Narrow(precise))

	require.True(t, wide.Narrow(Bottom).IsBottom())

	narrowed := wide.NarrowWithThreshold(precise, 4)
	require.Equal(t, int64(4), narrowed.Lo, "threshold 4 > next.Lo=2, narrowing must stop at the threshold")
	require.Equal(t, int64(4), narrowed.Hi, "threshold 4 < next.Hi=7, narrowing must stop at the threshold")
}
