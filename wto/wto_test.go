package wto

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/knightfall/knightfall/frontend"
	"github.com/knightfall/knightfall/internal/testutil"
)

// linearCFG builds entry -> a -> exit, with no cycles.
func linearCFG() *testutil.CFG {
	entry := testutil.NewNode(0)
	a := testutil.NewNode(1)
	exit := testutil.NewNode(2)
	entry.LinkTo(a)
	a.LinkTo(exit)
	return &testutil.CFG{EntryNode: entry, ExitNode: exit, AllNodes: []*testutil.Node{entry, a, exit}}
}

// loopCFG builds entry -> head -> body -> head (back edge), head -> exit: a single while-loop.
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

func TestBuild_Linear_NoCycles(t *testing.T) {
	t.Parallel()

	cfg := linearCFG()
	w := Build(cfg)

	require.Len(t, w.Components, 3)
	for _, c := range w.Components {
		_, isCycle := c.(Cycle)
		require.False(t, isCycle, "a linear CFG must produce no cycle components")
	}
	require.False(t, w.IsHead(cfg.Entry()))
}

func TestBuild_Loop_HeadDetectedAndBodyNested(t *testing.T) {
	t.Parallel()

	cfg, head := loopCFG()
	w := Build(cfg)

	require.True(t, w.IsHead(frontend.Node(head)), "the loop head must be recognized as a WTO head")

	var found *Cycle
	for _, c := range w.Components {
		if cyc, ok := c.(Cycle); ok {
			found = &cyc
		}
	}
	require.NotNil(t, found, "WTO must contain a cycle component for the loop")
	require.Equal(t, frontend.Node(head), found.Head())
	require.NotEmpty(t, found.Body, "the loop body node must be nested inside the cycle")
}

func TestBuild_Nesting_BodyNodeNestedUnderHead(t *testing.T) {
	t.Parallel()

	cfg, head := loopCFG()
	w := Build(cfg)

	body := cfg.AllNodes[2]
	nesting := w.Nesting(frontend.Node(body))
	require.Equal(t, []frontend.Node{frontend.Node(head)}, nesting)

	// entry is outside any cycle.
	require.Empty(t, w.Nesting(cfg.Entry()))
}

func TestBuild_UnreachableNodeExcluded(t *testing.T) {
	t.Parallel()

	cfg := linearCFG()
	unreachable := testutil.NewNode(99)
	cfg.AllNodes = append(cfg.AllNodes, unreachable)

	w := Build(cfg)
	require.Nil(t, w.Nesting(frontend.Node(unreachable)))
	require.False(t, w.IsHead(frontend.Node(unreachable)))
}
