package symbolic

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/knightfall/knightfall/internal/testutil"
)

func TestStackFrame_TopFrame(t *testing.T) {
	t.Parallel()

	m := NewManager()
	top := m.GetStackFrame(&testutil.Decl{NameVal: "main"}, nil, nil)
	require.True(t, top.TopFrame())

	callee := m.GetStackFrame(&testutil.Decl{NameVal: "callee"}, top, &CallSiteInfo{ElementIndex: 3})
	require.False(t, callee.TopFrame())
}

func TestStackFrame_IsAncestorOf(t *testing.T) {
	t.Parallel()

	m := NewManager()
	top := m.GetStackFrame(&testutil.Decl{NameVal: "main"}, nil, nil)
	mid := m.GetStackFrame(&testutil.Decl{NameVal: "mid"}, top, &CallSiteInfo{ElementIndex: 1})
	leaf := m.GetStackFrame(&testutil.Decl{NameVal: "leaf"}, mid, &CallSiteInfo{ElementIndex: 2})

	require.True(t, top.IsAncestorOf(leaf))
	require.True(t, mid.IsAncestorOf(leaf))
	require.True(t, leaf.IsAncestorOf(leaf), "a frame is its own non-strict ancestor")
	require.False(t, leaf.IsAncestorOf(top))

	unrelated := m.GetStackFrame(&testutil.Decl{NameVal: "other"}, nil, nil)
	require.False(t, unrelated.IsAncestorOf(leaf))
}

func TestManager_GetStackFrame_DistinctCallSitesProduceDistinctFrames(t *testing.T) {
	t.Parallel()

	m := NewManager()
	decl := &testutil.Decl{NameVal: "f"}
	parent := m.GetStackFrame(&testutil.Decl{NameVal: "caller"}, nil, nil)

	a := m.GetStackFrame(decl, parent, &CallSiteInfo{ElementIndex: 1})
	b := m.GetStackFrame(decl, parent, &CallSiteInfo{ElementIndex: 2})
	require.NotSame(t, a, b, "call sites differing in ElementIndex must not collapse to the same frame")

	c := m.GetStackFrame(decl, parent, &CallSiteInfo{ElementIndex: 1})
	require.Same(t, a, c, "identical call-site info must re-use the interned frame")
}

func TestLocationContext_AtBlockStart(t *testing.T) {
	t.Parallel()

	m := NewManager()
	frame := m.GetStackFrame(&testutil.Decl{NameVal: "f"}, nil, nil)
	node := testutil.NewNode(0)

	start := m.GetLocationContext(frame, node, -1)
	require.True(t, start.AtBlockStart())

	mid := m.GetLocationContext(frame, node, 0)
	require.False(t, mid.AtBlockStart())
}

func TestManager_GetLocationContext_Interns(t *testing.T) {
	t.Parallel()

	m := NewManager()
	frame := m.GetStackFrame(&testutil.Decl{NameVal: "f"}, nil, nil)
	node := testutil.NewNode(0)

	a := m.GetLocationContext(frame, node, 2)
	b := m.GetLocationContext(frame, node, 2)
	require.Same(t, a, b)

	c := m.GetLocationContext(frame, node, 3)
	require.NotSame(t, a, c, "a different element index must not collapse to the same location context")
}
