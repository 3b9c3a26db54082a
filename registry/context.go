package registry

import (
	"github.com/knightfall/knightfall/diagnostic"
	"github.com/knightfall/knightfall/frontend"
	"github.com/knightfall/knightfall/state"
	"github.com/knightfall/knightfall/symbolic"
)

// Context is the per-statement handle analyses (C7 callbacks) and checkers receive: the current
// program state, the symbol manager owning the TU's intern pools, the active stack frame and
// location context, and the event dispatcher to raise through. Grounded on
// original_source/analyzer/include/analyzer/core/checker_context.hpp, generalized from a single
// CheckerContext class into a shared Context embedded by both analysis and checker call sites
// (the C++ source keeps an analogous but separate AnalysisContext the pack's distillation folded
// into one shape).
type Context struct {
	Mgr    *symbolic.Manager
	Frame  *symbolic.StackFrame
	LocCtx *symbolic.LocationContext
	State  *state.State

	dispatcher *Dispatcher
}

// NewContext constructs a Context for a single statement evaluation.
func NewContext(mgr *symbolic.Manager, frame *symbolic.StackFrame, locCtx *symbolic.LocationContext, st *state.State, d *Dispatcher) *Context {
	return &Context{Mgr: mgr, Frame: frame, LocCtx: locCtx, State: st, dispatcher: d}
}

// WithState returns a shallow copy of ctx carrying st as its current state -- used by the resolver
// to thread an updated state through a chain of sub-expression evaluations without mutating the
// caller's Context.
func (ctx *Context) WithState(st *state.State) *Context {
	cp := *ctx
	cp.State = st
	return &cp
}

// WithLocation returns a shallow copy of ctx at a new location context (e.g. stepping to the next
// element within a block).
func (ctx *Context) WithLocation(locCtx *symbolic.LocationContext) *Context {
	cp := *ctx
	cp.LocCtx = locCtx
	return &cp
}

// Raise dispatches ev to every analysis/checker subscribed to its kind.
func (ctx *Context) Raise(ev Event) {
	if ctx.dispatcher != nil {
		ctx.dispatcher.Dispatch(ev)
	}
}

// CheckerContext extends Context with the diagnostic sink a checker reports findings into, per
// checker_context.hpp generalized beyond a single get_state()/get_location_context() accessor
// pair to also own the reporting surface (the C++ source reports through a separate
// BugReporter owned by KnightContext; here it is folded directly into CheckerContext for a
// smaller surface).
type CheckerContext struct {
	*Context
	CheckerName string
	Sink        *diagnostic.Sink
}

// NewCheckerContext constructs a CheckerContext wrapping ctx for the named checker.
func NewCheckerContext(ctx *Context, checkerName string, sink *diagnostic.Sink) *CheckerContext {
	return &CheckerContext{Context: ctx, CheckerName: checkerName, Sink: sink}
}

// Diagnose reports a finding at rng with the given name/message/level, tagged with this checker's
// name, into the shared Sink (which de-duplicates per §6/§8).
func (cc *CheckerContext) Diagnose(level diagnostic.Level, name, message string, rng diagnostic.Range, fixIts ...diagnostic.FixIt) {
	cc.Sink.Add(diagnostic.Diagnostic{
		Level:   level,
		Checker: cc.CheckerName,
		Name:    name,
		Message: message,
		Range:   rng,
		FixIts:  fixIts,
	})
}

// CurrentStmt identifies the statement ctx.LocCtx currently points at, within node's element
// list, or (nil, false) if ctx.LocCtx denotes block-start.
func CurrentStmt(node frontend.Node, locCtx *symbolic.LocationContext) (frontend.Stmt, bool) {
	if locCtx.AtBlockStart() {
		return nil, false
	}
	elems := node.Elements()
	if locCtx.ElementIndex < 0 || locCtx.ElementIndex >= len(elems) {
		return nil, false
	}
	el := elems[locCtx.ElementIndex]
	if el.Kind != frontend.ElementStmt {
		return nil, false
	}
	return el.Stmt, true
}
