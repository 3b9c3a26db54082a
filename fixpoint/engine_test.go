package fixpoint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/knightfall/knightfall/frontend"
	"github.com/knightfall/knightfall/internal/testutil"
	"github.com/knightfall/knightfall/numeric"
	"github.com/knightfall/knightfall/state"
)

const counterVar = numeric.ZVariable(1)

// linearCFG builds entry -> a -> exit, with no cycles.
func linearCFG() *testutil.CFG {
	entry := testutil.NewNode(0)
	a := testutil.NewNode(1)
	exit := testutil.NewNode(2)
	entry.LinkTo(a)
	a.LinkTo(exit)
	return &testutil.CFG{EntryNode: entry, ExitNode: exit, AllNodes: []*testutil.Node{entry, a, exit}}
}

// loopCFG builds entry -> head -> body -> head (back edge), head -> exit.
func loopCFG() (*testutil.CFG, *testutil.Node) {
	entry := testutil.NewNode(0)
	head := testutil.NewNode(1)
	body := testutil.NewNode(2)
	exit := testutil.NewNode(3)
	entry.LinkTo(head)
	head.LinkTo(body)
	head.LinkTo(exit)
	body.LinkTo(head)
	return &testutil.CFG{EntryNode: entry, ExitNode: exit, AllNodes: []*testutil.Node{entry, head, body, exit}}, head
}

// identityTransfer passes its pre-state through unchanged, recording which nodes it visited.
func identityTransfer(visited *[]frontend.Node) Transfer {
	return func(node frontend.Node, pre *state.State) *state.State {
		*visited = append(*visited, node)
		return pre
	}
}

func passEdge(_, _ frontend.Node, postPred *state.State) *state.State { return postPred }

// satAdd adds 1 to v, saturating at math.MaxInt64 rather than overflowing.
func satAdd1(v int64) int64 {
	if v == math.MaxInt64 || v == math.MinInt64 {
		return v
	}
	return v + 1
}

// incrementTransfer increments counterVar's interval by one on every visit to the body node, and
// seeds it to [0,0] on the entry node; every other node passes its pre-state through.
func incrementTransfer(entry, body frontend.Node) Transfer {
	return func(node frontend.Node, pre *state.State) *state.State {
		switch node {
		case entry:
			return pre.WithNumDomain(pre.NumDomain().WithInterval(counterVar, numeric.Single(0)))
		case body:
			iv := pre.NumDomain().Interval(counterVar)
			next := numeric.Interval{Lo: satAdd1(iv.Lo), Hi: satAdd1(iv.Hi)}
			return pre.WithNumDomain(pre.NumDomain().WithInterval(counterVar, next))
		default:
			return pre
		}
	}
}

func noThreshold(frontend.Node, *state.State) (map[numeric.ZVariable]int64, bool) { return nil, false }

func TestRun_Linear_VisitsEveryNodeInOrderAndConvergesNonBottom(t *testing.T) {
	t.Parallel()

	cfg := linearCFG()
	var visited []frontend.Node
	e := New(cfg, state.Bottom(), DefaultOptions(), identityTransfer(&visited), passEdge, noThreshold, nil)
	e.Run()

	require.Equal(t, []frontend.Node{cfg.Entry(), cfg.Nodes()[1], cfg.Exit()}, visited)
	require.False(t, e.Post(cfg.Exit()).IsBottom(), "a reachable linear CFG's exit must not remain bottom")
}

func TestJoinPreds_EntryNodeStartsFromTopNotBottom(t *testing.T) {
	t.Parallel()

	cfg := linearCFG()
	var gotPre *state.State
	transfer := func(node frontend.Node, pre *state.State) *state.State {
		if node == cfg.Entry() {
			gotPre = pre
		}
		return pre
	}
	e := New(cfg, state.Bottom(), DefaultOptions(), transfer, passEdge, noThreshold, nil)
	e.Run()

	require.NotNil(t, gotPre)
	require.False(t, gotPre.IsBottom(), "the CFG entry node has no predecessors, so its pre-state must be the unconstrained state.New(), not the bottom join identity")
}

func TestRun_Loop_NoThreshold_WidensUpperBoundToInfinity(t *testing.T) {
	t.Parallel()

	cfg, head := loopCFG()
	body := cfg.AllNodes[2]
	e := New(cfg, state.Bottom(), DefaultOptions(), incrementTransfer(cfg.Entry(), body), passEdge, noThreshold, nil)
	e.Run()

	iv := e.Pre(head).NumDomain().Interval(counterVar)
	require.Equal(t, int64(0), iv.Lo, "the lower bound never decreases across iterations, so widening must leave it at 0")
	require.Equal(t, int64(math.MaxInt64), iv.Hi, "an ever-increasing counter with no threshold must widen its upper bound to +inf")
}

func TestRun_Loop_WithThreshold_NarrowsUpperBoundDownToThreshold(t *testing.T) {
	t.Parallel()

	cfg, head := loopCFG()
	body := cfg.AllNodes[2]
	threshold := func(n frontend.Node, _ *state.State) (map[numeric.ZVariable]int64, bool) {
		if n == head {
			return map[numeric.ZVariable]int64{counterVar: 10}, true
		}
		return nil, false
	}
	e := New(cfg, state.Bottom(), DefaultOptions(), incrementTransfer(cfg.Entry(), body), passEdge, threshold, nil)
	e.Run()

	iv := e.Pre(head).NumDomain().Interval(counterVar)
	require.Equal(t, int64(0), iv.Lo)
	require.Equal(t, int64(10), iv.Hi, "threshold-guided widening jumps to the supplied bound instead of +inf, and narrowing converges exactly at it")
}

func TestRun_Loop_MaxWideningIterationsBoundsTheIncreasingPhase(t *testing.T) {
	t.Parallel()

	cfg, _ := loopCFG()
	body := cfg.AllNodes[2]
	opts := DefaultOptions()
	opts.WideningDelay = 0
	opts.MaxWideningIterations = 1

	var notified []int
	notifier := countingNotifier{iters: &notified}
	e := New(cfg, state.Bottom(), opts, incrementTransfer(cfg.Entry(), body), passEdge, noThreshold, notifier)
	e.Run()

	require.Len(t, notified, 1, "iterating must stop after MaxWideningIterations even without convergence")
}

type countingNotifier struct {
	iters *[]int
}

func (countingNotifier) NotifyEnterCycle(frontend.Node) {}
func (n countingNotifier) NotifyEachCycleIteration(_ frontend.Node, iter int, increasing bool) {
	if increasing {
		*n.iters = append(*n.iters, iter)
	}
}
func (countingNotifier) NotifyExitCycle(frontend.Node) {}

func TestPre_Post_UnreachableNodeReturnsBottom(t *testing.T) {
	t.Parallel()

	cfg := linearCFG()
	unreached := testutil.NewNode(99)
	e := New(cfg, state.Bottom(), DefaultOptions(), identityTransfer(&[]frontend.Node{}), passEdge, noThreshold, nil)
	e.Run()

	require.True(t, e.Pre(unreached).IsBottom())
	require.True(t, e.Post(unreached).IsBottom())
}

func TestWTO_ExposesComputedWTO(t *testing.T) {
	t.Parallel()

	cfg := linearCFG()
	e := New(cfg, state.Bottom(), DefaultOptions(), identityTransfer(&[]frontend.Node{}), passEdge, noThreshold, nil)
	require.NotNil(t, e.WTO())
	require.Len(t, e.WTO().Components, 3)
}
