package cfgdump

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/knightfall/knightfall/frontend"
	"github.com/knightfall/knightfall/internal/testutil"
)

func diamondCFG() *testutil.CFG {
	entry := testutil.NewNode(0)
	cond := testutil.NewNode(1)
	thenB := testutil.NewNode(2)
	elseB := testutil.NewNode(3)
	exit := testutil.NewNode(4)

	condStmt := testutil.NewIntLiteral(1, testutil.BoolType)
	cond.Cond, cond.HasCond = condStmt, true
	cond.AddStmt(condStmt)

	entry.LinkTo(cond)
	cond.LinkTo(thenB)
	cond.LinkTo(elseB)
	thenB.LinkTo(exit)
	elseB.LinkTo(exit)

	return &testutil.CFG{
		EntryNode: entry,
		ExitNode:  exit,
		AllNodes:  []*testutil.Node{entry, cond, thenB, elseB, exit},
	}
}

func TestDumpDOT_Diamond(t *testing.T) {
	t.Parallel()

	cfg := diamondCFG()
	out, err := DumpDOT("f", cfg)
	require.NoError(t, err)
	require.Contains(t, out, `digraph "f"`)
	require.Contains(t, out, "N1 -> N2")
	require.Contains(t, out, `[label="true"]`)
	require.Contains(t, out, `[label="false"]`)
}

func TestDumpText_Diamond(t *testing.T) {
	t.Parallel()

	cfg := diamondCFG()
	out := DumpText("f", cfg)
	require.Contains(t, out, "CFG for f (entry=B0, exit=B4)")
	require.Contains(t, out, "-> B2")
	require.Contains(t, out, "-> B3")
}

func TestDumpDOT_EmptyNode(t *testing.T) {
	t.Parallel()

	n := testutil.NewNode(0)
	cfg := &testutil.CFG{EntryNode: n, ExitNode: n, AllNodes: []*testutil.Node{n}}
	out, err := DumpDOT("empty", cfg)
	require.NoError(t, err)
	require.Contains(t, out, "B0 (empty)")
	_ = frontend.Node(n) // sanity: *testutil.Node satisfies frontend.Node
}
