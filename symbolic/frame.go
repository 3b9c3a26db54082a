package symbolic

import "github.com/knightfall/knightfall/frontend"

// CallSiteInfo identifies the call that created a (non-top) stack frame, per §3: the call
// expression, the CFG node it appears in, and the element index within that node.
type CallSiteInfo struct {
	CallExpr      frontend.Stmt
	Node          frontend.Node
	ElementIndex  int
}

// StackFrame identifies a single function activation. Frames are hash-consed by Manager on
// (Decl, Parent, CallSiteInfo).
type StackFrame struct {
	Decl         frontend.Decl
	Parent       *StackFrame // nil for the top frame
	CallSiteInfo *CallSiteInfo
}

// TopFrame reports whether this frame has no parent.
func (f *StackFrame) TopFrame() bool { return f.Parent == nil }

// IsAncestorOf reports whether f is a (non-strict) ancestor of other: the transitive closure of
// the Parent relation, including f == other.
func (f *StackFrame) IsAncestorOf(other *StackFrame) bool {
	for cur := other; cur != nil; cur = cur.Parent {
		if cur == f {
			return true
		}
	}
	return false
}

// frameProfile is the structural key used to intern StackFrames.
type frameProfile struct {
	decl   frontend.Decl
	parent *StackFrame
	call   CallSiteInfo
}

// LocationContext is a hash-consed (frame, block, element index) triple. ElementIndex == -1
// denotes "block start"; ElementIndex >= 0 denotes a specific CFG element within Block.
type LocationContext struct {
	Frame        *StackFrame
	Block        frontend.Node
	ElementIndex int
}

// AtBlockStart reports whether this location context denotes the start of Block.
func (l *LocationContext) AtBlockStart() bool { return l.ElementIndex == -1 }

type locCtxProfile struct {
	frame *StackFrame
	block frontend.Node
	index int
}
