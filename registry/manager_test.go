package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/knightfall/knightfall/diagnostic"
)

// fakeChecker is a minimal Checker for exercising Manager without a real frontend/resolver.
type fakeChecker struct {
	BaseChecker
	name     string
	requires []Kind
}

func (f fakeChecker) Kind() Kind        { return KindDebugInspection }
func (f fakeChecker) Name() string      { return f.name }
func (f fakeChecker) Requires() []Kind { return f.requires }

func TestFilterByGlob_IncludeExclude(t *testing.T) {
	t.Parallel()

	mgr := NewManager(diagnostic.NewSink())
	mgr.RegisterChecker(fakeChecker{name: "nil-deref"})
	mgr.RegisterChecker(fakeChecker{name: "nil-compare"})
	mgr.RegisterChecker(fakeChecker{name: "oob-access"})

	err := mgr.FilterByGlob([]string{"nil-*"}, []string{"nil-compare"})
	require.NoError(t, err)

	names := checkerNames(mgr)
	require.Equal(t, []string{"nil-deref"}, names)
}

func TestFilterByGlob_NilIncludeKeepsEverything(t *testing.T) {
	t.Parallel()

	mgr := NewManager(diagnostic.NewSink())
	mgr.RegisterChecker(fakeChecker{name: "a"})
	mgr.RegisterChecker(fakeChecker{name: "b"})

	require.NoError(t, mgr.FilterByGlob(nil, nil))
	require.Equal(t, []string{"a", "b"}, checkerNames(mgr))
}

func TestFilterByGlob_BadPatternErrors(t *testing.T) {
	t.Parallel()

	mgr := NewManager(diagnostic.NewSink())
	err := mgr.FilterByGlob([]string{"[unclosed"}, nil)
	require.Error(t, err)
}

func TestResolveDependencies_MissingAnalysisErrors(t *testing.T) {
	t.Parallel()

	mgr := NewManager(diagnostic.NewSink())
	mgr.RegisterChecker(fakeChecker{name: "needs-numerical", requires: []Kind{KindNumerical}})

	err := mgr.ResolveDependencies()
	require.Error(t, err)
	require.Contains(t, err.Error(), "needs-numerical")
}

func TestResolveDependencies_SatisfiedSucceeds(t *testing.T) {
	t.Parallel()

	mgr := NewManager(diagnostic.NewSink())
	mgr.RegisterAnalysis(NumericalAnalysis{})
	mgr.RegisterChecker(fakeChecker{name: "needs-numerical", requires: []Kind{KindNumerical}})

	require.NoError(t, mgr.ResolveDependencies())
}

func TestAnalyses_DeterministicOrder(t *testing.T) {
	t.Parallel()

	mgr := NewManager(diagnostic.NewSink())
	mgr.RegisterAnalysis(PointerAnalysis{})
	mgr.RegisterAnalysis(NumericalAnalysis{})

	got := mgr.Analyses()
	require.Len(t, got, 2)
	require.Equal(t, KindNumerical, got[0].Kind())
	require.Equal(t, KindPointer, got[1].Kind())
}

func TestDescribeKind(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, DescribeKind(KindNumerical))
	require.NotEmpty(t, DescribeKind(KindPointer))
	require.Empty(t, DescribeKind(KindInvalid))
}

func checkerNames(mgr *Manager) []string {
	out := make([]string, 0, len(mgr.Checkers()))
	for _, c := range mgr.Checkers() {
		out = append(out, c.Name())
	}
	return out
}
